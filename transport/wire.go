// Package transport binds the engine and replay RPC surfaces (§6) to gRPC
// using hand-written service descriptors rather than protoc-generated
// stubs — the original specification explicitly places build-time
// transport code generation out of scope. Payloads are plain Go structs
// marshaled with the package's own JSON codec (see codec.go), so the usual
// grpc-go server/client machinery works without a .proto file.
package transport

import "github.com/gocnn/cartridge/env"

// GetCapabilitiesRequest is the wire request for Engine.GetCapabilities.
type GetCapabilitiesRequest struct {
	ID env.EngineId
}

// GetCapabilitiesResponse is the wire response for Engine.GetCapabilities.
type GetCapabilitiesResponse struct {
	Capabilities env.Capabilities
}

// ResetRequest is the wire request for Engine.Reset.
type ResetRequest struct {
	ID   env.EngineId
	Seed uint64
	Hint []byte
}

// ResetResponse is the wire response for Engine.Reset.
type ResetResponse struct {
	State []byte
	Obs   []byte
}

// StepRequest is the wire request for Engine.Step.
type StepRequest struct {
	ID     env.EngineId
	State  []byte
	Action []byte
}

// StepResponse is the wire response for Engine.Step. Info is the opaque
// side-channel described in §6 (the reference environment's legal-moves
// bitmask).
type StepResponse struct {
	State  []byte
	Obs    []byte
	Reward float32
	Done   bool
	Info   uint64
}

// Transition is the wire shape of one experience record, produced by the
// actor and consumed by the replay service.
type Transition struct {
	ID                string
	EnvID             string
	EpisodeID         string
	StepNumber        uint32
	State             []byte
	Action            []byte
	NextState         []byte
	Observation       []byte
	NextObservation   []byte
	Reward            float32
	Done              bool
	Priority          float32
	TimestampUnixNano int64
	Metadata          map[string]string
}

// StoreBatchRequest is the wire request for Replay.StoreBatch.
type StoreBatchRequest struct {
	Transitions []Transition
}

// StoreBatchResponse is the wire response for Replay.StoreBatch.
type StoreBatchResponse struct {
	StoredCount uint32
}
