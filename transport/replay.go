package transport

import (
	"context"

	"google.golang.org/grpc"
)

const replayServiceName = "cartridge.replay.v1.Replay"

// ReplayClient is a hand-written client for the single replay RPC method
// the actor consumes. The replay service's own implementation is out of
// scope for this repository; only this client-side interface is needed.
type ReplayClient struct {
	cc grpc.ClientConnInterface
}

// NewReplayClient wraps cc for calling the Replay service.
func NewReplayClient(cc grpc.ClientConnInterface) *ReplayClient {
	return &ReplayClient{cc: cc}
}

func (c *ReplayClient) StoreBatch(ctx context.Context, req *StoreBatchRequest, opts ...grpc.CallOption) (*StoreBatchResponse, error) {
	out := new(StoreBatchResponse)
	if err := c.cc.Invoke(ctx, "/"+replayServiceName+"/StoreBatch", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
