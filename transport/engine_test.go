package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gocnn/cartridge/bufferpool"
	"github.com/gocnn/cartridge/engine"
	"github.com/gocnn/cartridge/env"
	"github.com/gocnn/cartridge/registry"
)

func TestToStatusMapsKnownKinds(t *testing.T) {
	cases := map[engine.ErrorKind]codes.Code{
		engine.NotFound:           codes.NotFound,
		engine.InvalidArgument:    codes.InvalidArgument,
		engine.FailedPrecondition: codes.FailedPrecondition,
		engine.Internal:           codes.Internal,
	}
	for kind, code := range cases {
		err := toStatus(&engine.Error{Kind: kind, Message: "boom"})
		st, ok := status.FromError(err)
		require.True(t, ok)
		require.Equal(t, code, st.Code())
	}
}

func TestToStatusWrapsUnknownErrorAsInternal(t *testing.T) {
	err := toStatus(errors.New("plain error"))
	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.Internal, st.Code())
}

func TestEngineServiceAdapterGetCapabilitiesNotFound(t *testing.T) {
	reg := registry.New(nil)
	svc := engine.New(reg, bufferpool.New(), nil, nil)
	adapter := NewEngineServiceAdapter(svc)

	_, err := adapter.GetCapabilities(context.Background(), &GetCapabilitiesRequest{
		ID: env.EngineId{EnvID: "nope"},
	})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.NotFound, st.Code())
}
