package grpcx

import (
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// NewServer builds a gRPC server with tracing, request ids and access logs.
func NewServer(logger *slog.Logger, extra ...grpc.ServerOption) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			UnaryServerRequestIDInterceptor(),
			UnaryServerAccessLogInterceptor(logger),
		),
	}
	return grpc.NewServer(append(opts, extra...)...)
}

// Health wraps the standard health service so callers can flip every
// registered service name at once.
type Health struct {
	srv      *health.Server
	services []string
}

// RegisterHealth registers grpc.health.v1 and reflection on s and marks the
// overall server and each named service SERVING.
func RegisterHealth(s *grpc.Server, services ...string) *Health {
	h := &Health{srv: health.NewServer(), services: services}
	healthpb.RegisterHealthServer(s, h.srv)
	reflection.Register(s)
	h.SetServing(true)
	return h
}

func (h *Health) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus("", st)
	for _, name := range h.services {
		h.srv.SetServingStatus(name, st)
	}
}

// Shutdown marks everything NOT_SERVING and ignores further updates.
func (h *Health) Shutdown() {
	h.srv.Shutdown()
}
