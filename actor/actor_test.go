package actor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/gocnn/cartridge/transport"
)

// fakeReplayConn implements grpc.ClientConnInterface against a single
// in-memory StoreBatch handler, so flush behaviour can be exercised without
// a real network connection.
type fakeReplayConn struct {
	calls   int32
	lastReq *transport.StoreBatchRequest
	err     error
}

func (f *fakeReplayConn) Invoke(_ context.Context, _ string, args, reply interface{}, _ ...grpc.CallOption) error {
	atomic.AddInt32(&f.calls, 1)
	req := args.(*transport.StoreBatchRequest)
	f.lastReq = req
	if f.err != nil {
		return f.err
	}
	out := reply.(*transport.StoreBatchResponse)
	out.StoredCount = uint32(len(req.Transitions))
	return nil
}

func (f *fakeReplayConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streaming not supported by fake")
}

func newTestActor(conn *fakeReplayConn) *Actor {
	cfg := validConfig()
	cfg.BatchSize = 4
	a := New(cfg, zap.NewNop(), nil)
	a.replay = transport.NewReplayClient(conn)
	return a
}

func TestOutcomeForDeadlineExceeded(t *testing.T) {
	require.Equal(t, "timeout", outcomeFor(context.DeadlineExceeded))
	require.Equal(t, "error", outcomeFor(errors.New("boom")))
}

func TestPushTransitionTriggersFlushAtBatchSize(t *testing.T) {
	conn := &fakeReplayConn{}
	a := newTestActor(conn)

	for i := 0; i < int(a.cfg.BatchSize); i++ {
		a.pushTransition(context.Background(), transport.Transition{ID: "t"})
	}

	require.Equal(t, int32(1), atomic.LoadInt32(&conn.calls))
	require.Len(t, conn.lastReq.Transitions, int(a.cfg.BatchSize))
	require.Empty(t, a.buffer)
}

func TestPushTransitionBelowBatchSizeDoesNotFlush(t *testing.T) {
	conn := &fakeReplayConn{}
	a := newTestActor(conn)

	a.pushTransition(context.Background(), transport.Transition{ID: "t"})
	require.Equal(t, int32(0), atomic.LoadInt32(&conn.calls))
	require.Len(t, a.buffer, 1)
}

func TestFlushIfNonEmptyNoOpOnEmptyBuffer(t *testing.T) {
	conn := &fakeReplayConn{}
	a := newTestActor(conn)

	a.flushIfNonEmpty(context.Background())
	require.Equal(t, int32(0), atomic.LoadInt32(&conn.calls))
}

func TestFlushFailureDiscardsBatchWithoutRestoring(t *testing.T) {
	conn := &fakeReplayConn{err: errors.New("replay unavailable")}
	a := newTestActor(conn)

	a.pushTransition(context.Background(), transport.Transition{ID: "t1"})
	a.flushIfNonEmpty(context.Background())

	require.Equal(t, int32(1), atomic.LoadInt32(&conn.calls))
	require.Empty(t, a.buffer)
}

func TestShutdownSetsFlag(t *testing.T) {
	a := newTestActor(&fakeReplayConn{})
	require.False(t, a.shuttingDown.Load())
	a.Shutdown()
	require.True(t, a.shuttingDown.Load())
}
