package rpc

import (
	"context"
	"errors"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/censudex/clients-service/internal/core/ports"
)

// Config configures the gRPC front-end.
type Config struct {
	Address string
	// JWTSecret enables bearer authentication when non-empty.
	JWTSecret string
}

// Server hosts clients.ClientService and the standard health service.
type Server struct {
	address string
	logger  zerolog.Logger
	grpc    *grpc.Server
	health  *health.Server
}

func NewServer(cfg Config, service ports.ClientService, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "grpc_server").Logger()

	interceptors := []grpc.UnaryServerInterceptor{
		recoveryInterceptor(logger),
		loggingInterceptor(logger),
	}
	if cfg.JWTSecret != "" {
		interceptors = append(interceptors, authInterceptor(cfg.JWTSecret))
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterClientServiceServer(srv, &clientServer{service: service, logger: logger})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{address: cfg.Address, logger: logger, grpc: srv, health: hs}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("stopping gRPC server")
			s.health.Shutdown()
			s.grpc.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info().Str("address", lis.Addr().String()).Msg("starting gRPC server")
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop closes every connection immediately.
func (s *Server) Stop() {
	s.grpc.Stop()
}
