package main

import (
	"net"
	"testing"
	"time"

	"github.com/md-rashed-zaman/meetslots/libs/grpcx"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestProbe(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv, hs := grpcx.NewServer()
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	status, err := probe(lis.Addr().String(), "", 2*time.Second)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %s", status)
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	status, err = probe(lis.Addr().String(), "", 2*time.Second)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %s", status)
	}
}
