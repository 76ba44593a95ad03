package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/md-rashed-zaman/meetslots/libs/config"
	"github.com/md-rashed-zaman/meetslots/libs/grpcx"
)

// startGrpcServer exposes grpc.health.v1 when GRPC_PORT is set. Serving status tracks ready.
func startGrpcServer(ctx context.Context, logger *slog.Logger, ready func(context.Context) error) error {
	if config.String("GRPC_PORT", "") == "" {
		return nil
	}
	port, err := config.Port("GRPC_PORT", "")
	if err != nil {
		return err
	}
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	srv, hs := grpcx.NewServer()
	go grpcx.WatchHealth(ctx, hs, config.Seconds("GRPC_HEALTH_INTERVAL_SECONDS", 5*time.Second), ready)
	go grpcx.Serve(ctx, srv, lis, logger)
	return nil
}
