package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"rentacar-backend/internal/api/grpc/interceptor"
	"rentacar-backend/internal/security"
)

// ReservationServiceName is the health-check name the reservation API reports under
const ReservationServiceName = "rentacar.v1.ReservationService"

// NewServer builds the gRPC server that carries the health and reflection
// services. Health is public; reflection requires a staff token. The returned
// health server lets the caller flip serving status during shutdown.
func NewServer(tm security.TokenManager) (*grpc.Server, *health.Server) {
	authInterceptor := interceptor.NewAuthInterceptor(tm)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptor.Logging(),
			authInterceptor.Unary(),
		),
		grpc.ChainStreamInterceptor(
			interceptor.StreamLogging(),
			authInterceptor.Stream(),
		),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ReservationServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	// Register reflection service for grpcurl (staff only)
	reflection.Register(s)

	return s, hs
}
