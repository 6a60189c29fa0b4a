// Package health exposes ledger reachability over the standard gRPC health
// protocol so orchestrators can probe the service without HTTP.
package health

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	ServiceName     = "waitlist"
	DefaultInterval = 10 * time.Second
	pingTimeout     = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   zerolog.Logger
}

func NewChecker(pinger Pinger, interval time.Duration, logger zerolog.Logger) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{
		server:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

func (c *Checker) Server() *health.Server {
	return c.server
}

// Check pings the ledger once and publishes the result for both the overall
// server and the waitlist service name.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := c.pinger.Ping(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("ledger ping failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks immediately and then every interval until ctx is done.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Serve runs a gRPC server carrying only the health service until ctx is done.
func Serve(ctx context.Context, addr string, c *Checker) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, c.Server())

	go c.Run(ctx)
	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	c.logger.Info().Str("addr", addr).Msg("starting grpc health server")
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
