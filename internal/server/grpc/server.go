// Package grpc runs the gRPC endpoint: the standard health service, public,
// and server reflection, behind the authentication gate.
package grpc

import (
	"context"
	"net"

	"github.com/vivamos/vivamos/internal/logging"
	"github.com/vivamos/vivamos/internal/server/gate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// HealthGroup is the gate group of the health service.
const HealthGroup = "/grpc.health.v1.Health"

type GRPCServer struct {
	address string
	logger  logging.Logger
	gate    *gate.Gate
}

// NewGRPCServer prepares a server on address. The health service group is
// marked public on g; everything else stays protected.
func NewGRPCServer(address string, l logging.Logger, g *gate.Gate) *GRPCServer {
	g.Visibility().MarkGroup(HealthGroup, true)
	return &GRPCServer{
		address: address,
		logger:  l.With("module", "grpc_server"),
		gate:    g,
	}
}

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

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

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
