package executor

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
)

// #region server
// ExecutorServer is the bridge side of the Execute RPC.
type ExecutorServer interface {
	Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the Execute service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ExecutorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mmf/executor/v1/executor.proto",
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExecutorServer).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExecuteMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExecutorServer).Execute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Register installs srv on s.
func Register(s *grpc.Server, srv ExecutorServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// #endregion server

// #region handler-server

// HandlerFunc executes one decoded command on the bridge side.
type HandlerFunc func(ctx context.Context, cmd device.Command) error

// HandlerServer adapts a HandlerFunc to ExecutorServer. Handler errors are
// answered with ok=false rather than a gRPC error.
type HandlerServer struct {
	Handle HandlerFunc
}

func (h HandlerServer) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := h.Handle(ctx, DecodeCommand(req)); err != nil {
		return structpb.NewStruct(map[string]any{"ok": false, "error": err.Error()})
	}
	return structpb.NewStruct(map[string]any{"ok": true})
}

// LogHandler is a simulated bridge that only logs the commands it gets.
func LogHandler(logger *zap.Logger) HandlerFunc {
	return func(_ context.Context, cmd device.Command) error {
		logger.Info("execute",
			zap.String("device", cmd.Device),
			zap.String("modality", string(cmd.Modality)),
			zap.Any("content", cmd.Content),
		)
		return nil
	}
}

// #endregion handler-server
