// Package client is the requester's gRPC client for the identity holder.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      wire.IdentityHolderClient
	health      healthpb.HealthClient
}

// NewIdentityHolderClient prepares a client for the holder at endpointURL.
// No connection is made until the first call.
func NewIdentityHolderClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = wire.NewIdentityHolderClient(conn)
	s.health = healthpb.NewHealthClient(conn)
	return nil
}

// Authorize asks the holder to vouch for the signed-in user and waits for
// the user's decision.
func (s *GRPCClient) Authorize(ctx context.Context) (assertion.Result, error) {

	resp, err := s.client.Authorize(ctx, &emptypb.Empty{})
	if err != nil {
		return assertion.Result{}, s.mapError(err)
	}

	return wire.DecodeResult(resp)
}

// Ping checks that the holder is up and serving the authorization service.
func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: wire.ServiceName})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return common.ErrUnreachablePeer
	}

	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Unimplemented:
		return common.ErrUnreachablePeer
	case codes.Canceled:
		return context.Canceled
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
