package grpc

import (
	"context"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/wire"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Authorize hands the request to the console and blocks until the user
// approves or denies it. There is no server-side timeout.
func (s *GRPCServer) Authorize(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Authorization request", "action", common.ActionAuthLogin)

	res, err := s.inbox.Submit(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// caller went away; the request was resolved as denied
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		s.logger.Warn(ctx, "authorization not answered", "error", err)
	}

	return wire.EncodeResult(res), nil
}
