package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"

	"github.com/thankyoudiscord/waitlist/pkg/cache"
	"github.com/thankyoudiscord/waitlist/pkg/events"
	"github.com/thankyoudiscord/waitlist/pkg/health"
	"github.com/thankyoudiscord/waitlist/pkg/routes"
	"github.com/thankyoudiscord/waitlist/pkg/telemetry"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the waitlist HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	publisher, err := events.New(events.Config{
		Driver:       cfg.EventsDriver,
		NATSURL:      cfg.NATSURL,
		AMQPURL:      cfg.AMQPURL,
		AMQPExchange: cfg.AMQPExchange,
		KafkaBrokers: cfg.KafkaBrokers,
		KafkaTopic:   cfg.KafkaTopic,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("close events publisher")
		}
	}()

	svc, err := a.service(publisher)
	if err != nil {
		return err
	}

	var statsCache routes.StatsCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		statsCache = cache.NewStatsCache(redisClient, cfg.StatsCacheTTL)
	}

	if cfg.GRPCAddr != "" {
		checker := health.NewChecker(a.ledger, health.DefaultInterval, logger)
		go func() {
			if err := health.Serve(ctx, cfg.GRPCAddr, checker); err != nil {
				logger.Error().Err(err).Msg("grpc health server")
			}
		}()
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: routes.NewRouter(routes.RouterOptions{
			Service:        svc,
			Ledger:         a.ledger,
			StatsCache:     statsCache,
			PublicURL:      cfg.PublicURL,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting waitlist api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown server")
	}
	return nil
}
