package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gocnn/cartridge/engine"
)

const engineServiceName = "cartridge.engine.v1.Engine"

// EngineServer is the gRPC-facing shape of the three engine RPC methods.
type EngineServer interface {
	GetCapabilities(ctx context.Context, req *GetCapabilitiesRequest) (*GetCapabilitiesResponse, error)
	Reset(ctx context.Context, req *ResetRequest) (*ResetResponse, error)
	Step(ctx context.Context, req *StepRequest) (*StepResponse, error)
}

// EngineServiceAdapter implements EngineServer over an *engine.Service,
// translating engine.Error's RPC-surface kind into the matching gRPC
// status code.
type EngineServiceAdapter struct {
	svc *engine.Service
}

// NewEngineServiceAdapter wraps svc for gRPC registration.
func NewEngineServiceAdapter(svc *engine.Service) *EngineServiceAdapter {
	return &EngineServiceAdapter{svc: svc}
}

func (a *EngineServiceAdapter) GetCapabilities(_ context.Context, req *GetCapabilitiesRequest) (*GetCapabilitiesResponse, error) {
	caps, err := a.svc.GetCapabilities(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetCapabilitiesResponse{Capabilities: caps}, nil
}

func (a *EngineServiceAdapter) Reset(_ context.Context, req *ResetRequest) (*ResetResponse, error) {
	state, obs, err := a.svc.Reset(req.ID, req.Seed, req.Hint)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ResetResponse{State: state, Obs: obs}, nil
}

func (a *EngineServiceAdapter) Step(_ context.Context, req *StepRequest) (*StepResponse, error) {
	state, obs, reward, done, info, err := a.svc.Step(req.ID, req.State, req.Action)
	if err != nil {
		return nil, toStatus(err)
	}
	return &StepResponse{State: state, Obs: obs, Reward: reward, Done: done, Info: info}, nil
}

func toStatus(err error) error {
	rpcErr, ok := err.(*engine.Error)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	switch rpcErr.Kind {
	case engine.NotFound:
		return status.Error(codes.NotFound, rpcErr.Message)
	case engine.InvalidArgument:
		return status.Error(codes.InvalidArgument, rpcErr.Message)
	case engine.FailedPrecondition:
		return status.Error(codes.FailedPrecondition, rpcErr.Message)
	default:
		return status.Error(codes.Internal, rpcErr.Message)
	}
}

func _Engine_GetCapabilities_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCapabilitiesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).GetCapabilities(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + engineServiceName + "/GetCapabilities"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).GetCapabilities(ctx, req.(*GetCapabilitiesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Engine_Reset_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ResetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Reset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + engineServiceName + "/Reset"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).Reset(ctx, req.(*ResetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Engine_Step_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StepRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Step(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + engineServiceName + "/Step"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).Step(ctx, req.(*StepRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// EngineServiceDesc is the hand-written equivalent of what
// protoc-gen-go-grpc would generate from an engine.proto file.
var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: engineServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCapabilities", Handler: _Engine_GetCapabilities_Handler},
		{MethodName: "Reset", Handler: _Engine_Reset_Handler},
		{MethodName: "Step", Handler: _Engine_Step_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "engine.go",
}

// RegisterEngineServer registers srv's RPC methods on s. The server decodes
// each call with the codec named by the client's content-subtype, so
// clients select the package json codec through CallOptions.
func RegisterEngineServer(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&EngineServiceDesc, srv)
}

// EngineClient is a thin hand-written client for the Engine service.
type EngineClient struct {
	cc grpc.ClientConnInterface
}

// NewEngineClient wraps cc for calling the Engine service.
func NewEngineClient(cc grpc.ClientConnInterface) *EngineClient {
	return &EngineClient{cc: cc}
}

func (c *EngineClient) GetCapabilities(ctx context.Context, req *GetCapabilitiesRequest, opts ...grpc.CallOption) (*GetCapabilitiesResponse, error) {
	out := new(GetCapabilitiesResponse)
	if err := c.cc.Invoke(ctx, "/"+engineServiceName+"/GetCapabilities", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) Reset(ctx context.Context, req *ResetRequest, opts ...grpc.CallOption) (*ResetResponse, error) {
	out := new(ResetResponse)
	if err := c.cc.Invoke(ctx, "/"+engineServiceName+"/Reset", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) Step(ctx context.Context, req *StepRequest, opts ...grpc.CallOption) (*StepResponse, error) {
	out := new(StepResponse)
	if err := c.cc.Invoke(ctx, "/"+engineServiceName+"/Step", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CallOptions returns the dial/call options that select this package's
// JSON codec as the gRPC content-subtype.
func CallOptions() []grpc.CallOption {
	return []grpc.CallOption{grpc.CallContentSubtype(CodecName)}
}
