package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)
	elapsed := time.Since(start)

	code := status.Code(err)
	if s.observer != nil {
		s.observer.ObserveRPC(info.FullMethod, code.String(), elapsed)
	}
	s.logger.Debug(ctx, "rpc", "method", info.FullMethod, "code", code.String(), "duration", elapsed)

	return resp, err
}
