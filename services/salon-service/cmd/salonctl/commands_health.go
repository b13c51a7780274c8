package main

import (
	"context"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/salonbook/libs/grpcx"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const salonServiceName = "salonbook.SalonService"

func newHealthCmd() *cobra.Command {
	var (
		addr, service string
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health endpoint of a running salon-service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := grpcx.Dial(addr, grpcx.DialOptions{})
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer func() { _ = conn.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			status, err := checkHealth(ctx, healthpb.NewHealthClient(conn), service)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", addr, status)
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service %q is %s", service, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "gRPC address of salon-service")
	cmd.Flags().StringVar(&service, "service", salonServiceName, "Service name to check (empty for the whole server)")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "Call timeout")
	return cmd
}

func checkHealth(ctx context.Context, client healthpb.HealthClient, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check: %w", err)
	}
	return resp.GetStatus(), nil
}
