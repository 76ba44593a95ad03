package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/md-rashed-zaman/meetslots/libs/grpcx"
	"github.com/md-rashed-zaman/meetslots/libs/httpx"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// healthprobe asks a service's grpc.health.v1 endpoint for its status and exits non-zero
// unless it is SERVING. It is meant for container health checks.
func main() {
	var (
		addr    = flag.String("addr", getenv("GRPC_ADDR", "localhost:9090"), "grpc address")
		svc     = flag.String("service", "", "health service name (empty for overall)")
		timeout = flag.Duration("timeout", 3*time.Second, "probe timeout")
	)
	flag.Parse()

	status, err := probe(*addr, *svc, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println(status)
	if status != healthpb.HealthCheckResponse_SERVING {
		os.Exit(1)
	}
}

func probe(addr, service string, timeout time.Duration) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpcx.Dial(addr)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = httpx.ContextWithRequestID(ctx, fmt.Sprintf("healthprobe-%d", time.Now().UnixNano()))

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
