package tests

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	todogrpc "smart-todo/services/todo/adapters/grpc"
	"smart-todo/services/todo/core"
)

const bufConnSize = 1024 * 1024

func newHealthClient(t *testing.T, db core.DB) healthpb.HealthClient {
	t.Helper()

	listener := bufconn.Listen(bufConnSize)
	grpcServer := grpc.NewServer()

	svc := core.NewService(discardLogger(), db, nil)
	todogrpc.NewHealthServer(discardLogger(), svc).Register(grpcServer)

	go func() {
		_ = grpcServer.Serve(listener)
	}()

	dialCtx, cancelDial := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDial()

	conn, err := grpc.DialContext(
		dialCtx,
		"bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return listener.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		grpcServer.Stop()
		listener.Close()
		t.Fatalf("failed to dial bufconn server: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
		_ = listener.Close()
	})

	return healthpb.NewHealthClient(conn)
}

func TestGRPCHealth_Serving(t *testing.T) {
	client := newHealthClient(t, newFakeDB())

	for _, name := range []string{"", todogrpc.ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: name})
		if err != nil {
			t.Fatalf("Check(%q) returned error: %v", name, err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("Check(%q): expected SERVING, got %v", name, resp.GetStatus())
		}
	}
}

func TestGRPCHealth_NotServingWhenDBDown(t *testing.T) {
	db := newFakeDB()
	client := newHealthClient(t, db)

	db.setPingErr(errors.New("connection refused"))

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", resp.GetStatus())
	}

	db.setPingErr(nil)

	resp, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING after recovery, got %v", resp.GetStatus())
	}
}

func TestGRPCHealth_UnknownService(t *testing.T) {
	client := newHealthClient(t, newFakeDB())

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "billing.Invoices"})
	if err == nil {
		t.Fatal("expected NotFound error, got nil")
	}
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected %v, got %v (%v)", codes.NotFound, status.Code(err), err)
	}
}
