// Package probe serves the standard gRPC health protocol for orchestrators.
package probe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tair/empowhr-payroll/pkg/logger"
)

// Service names reported through the health protocol. The empty name is the
// overall status.
const (
	ServiceOverall  = ""
	ServiceDatabase = "payroll.database"
	ServiceGateway  = "payroll.gateway"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthServer runs dependency checks and publishes their results.
type HealthServer struct {
	health *health.Server
	checks map[string]Check
	// required services decide the overall status; others are informational
	required map[string]bool

	mu     sync.Mutex
	status map[string]healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthServer creates a health server. Every service starts NOT_SERVING
// until the first Refresh.
func NewHealthServer() *HealthServer {
	s := &HealthServer{
		health:   health.NewServer(),
		checks:   make(map[string]Check),
		required: make(map[string]bool),
		status:   make(map[string]healthpb.HealthCheckResponse_ServingStatus),
	}
	s.health.SetServingStatus(ServiceOverall, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// AddCheck registers a dependency. A failing required check takes the whole
// service out of rotation.
func (s *HealthServer) AddCheck(service string, required bool, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[service] = check
	s.required[service] = required
	s.health.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Refresh runs every check once.
func (s *HealthServer) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	overall := healthpb.HealthCheckResponse_SERVING
	for service, check := range s.checks {
		next := healthpb.HealthCheckResponse_SERVING
		if err := check(ctx); err != nil {
			next = healthpb.HealthCheckResponse_NOT_SERVING
			if s.required[service] {
				overall = healthpb.HealthCheckResponse_NOT_SERVING
			}
			if s.status[service] != next {
				logger.Warn(ctx).Err(err).Str("service", service).Msg("Dependency unhealthy")
			}
		} else if s.status[service] == healthpb.HealthCheckResponse_NOT_SERVING {
			logger.Info(ctx).Str("service", service).Msg("Dependency recovered")
		}
		s.status[service] = next
		s.health.SetServingStatus(service, next)
	}
	s.health.SetServingStatus(ServiceOverall, overall)
}

// Run refreshes on every tick until ctx is done.
func (s *HealthServer) Run(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Shutdown reports NOT_SERVING for everything so clients drain.
func (s *HealthServer) Shutdown() {
	s.health.Shutdown()
}

// NewServer builds a gRPC server exposing the health service.
func NewServer(hs *HealthServer) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor,
			MetricsInterceptor,
		),
	)
	healthpb.RegisterHealthServer(server, hs.health)
	reflection.Register(server)
	return server
}
