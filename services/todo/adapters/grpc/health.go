// Package grpc exposes the standard gRPC health service for the todo
// service, backed by the same database ping the HTTP /api/ping uses.
package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"smart-todo/services/todo/core"
)

// ServiceName is the name clients may pass in HealthCheckRequest.Service.
const ServiceName = "smarttodo.Todo"

// HealthServer answers Check by pinging the store on every call; nothing is
// cached between calls. Watch is left unimplemented.
type HealthServer struct {
	healthpb.UnimplementedHealthServer

	log    *slog.Logger
	pinger core.Pinger
}

func NewHealthServer(log *slog.Logger, pinger core.Pinger) *HealthServer {
	return &HealthServer{log: log, pinger: pinger}
}

// Register attaches the health and reflection services to s.
func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h)
	reflection.Register(s)
}

func (h *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if err := h.pinger.Ping(ctx); err != nil {
		h.log.Warn("health check failed", "error", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
