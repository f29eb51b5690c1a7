package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/logging"
	"github.com/dmitrijs2005/quickauth/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Authorizer queues an authorization request and waits for its outcome.
type Authorizer interface {
	Submit(ctx context.Context) (assertion.Result, error)
}

type RPCObserver interface {
	ObserveRPC(method, code string, d time.Duration)
}

type GRPCServer struct {
	wire.UnimplementedIdentityHolderServer
	address  string
	inbox    Authorizer
	observer RPCObserver
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, in Authorizer, obs RPCObserver) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		inbox:    in,
		observer: obs,
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.observeInterceptor))

	wire.RegisterIdentityHolderServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(wire.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
