package transport

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype this package's codec registers
// under. Clients select it with grpc.CallContentSubtype(CodecName); the
// server looks it up by the same name to decode incoming messages.
const CodecName = "json"

// jsonCodec marshals the plain Go structs in wire.go with encoding/json,
// standing in for a protobuf codec so this package can use grpc-go's
// server/client machinery without generated message types.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
