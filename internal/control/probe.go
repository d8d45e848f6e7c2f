package control

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
)

// Report is what a probe learned about a running client.
type Report struct {
	Health *healthpb.HealthCheckResponse
	State  string
}

// Probe asks the client listening on socketPath for its health.
func Probe(ctx context.Context, socketPath string) (*Report, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to client: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var header metadata.MD
	resp, err := healthpb.NewHealthClient(conn).Check(ctx,
		&healthpb.HealthCheckRequest{Service: ServiceName},
		grpc.Header(&header),
	)
	if err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	r := &Report{Health: resp}
	if v := header.Get(StateHeader); len(v) > 0 {
		r.State = v[0]
	}
	return r, nil
}
