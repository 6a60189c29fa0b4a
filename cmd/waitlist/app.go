package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/thankyoudiscord/waitlist/pkg/config"
	"github.com/thankyoudiscord/waitlist/pkg/database"
	"github.com/thankyoudiscord/waitlist/pkg/telemetry"
	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

type ledger interface {
	waitlist.Ledger
	Ping(ctx context.Context) error
}

type app struct {
	cfg    config.Config
	logger zerolog.Logger
	ledger ledger
	close  func()
}

// newApp loads config and opens the configured ledger. migrate forces the
// embedded migrations to run even when AUTO_MIGRATE is off.
func newApp(ctx context.Context, migrate bool) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, nil)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, close: func() {}}

	if cfg.DatabaseDriver == database.DriverMemory {
		logger.Warn().Msg("using in-memory ledger, signups will not survive a restart")
		a.ledger = database.NewMemoryLedger()
		return a, nil
	}

	d, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.close = func() {
		if err := database.Close(d); err != nil {
			logger.Error().Err(err).Msg("close database")
		}
	}

	if migrate || cfg.AutoMigrate {
		applied, err := database.Migrate(ctx, d)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		for _, res := range applied {
			logger.Info().
				Int64("version", res.Source.Version).
				Dur("duration", res.Duration).
				Msg("applied migration")
		}
	}

	a.ledger = database.NewLedger(d)
	return a, nil
}

func (a *app) service(publisher waitlist.Publisher) (*waitlist.Service, error) {
	return waitlist.NewService(a.ledger, waitlist.Options{
		LeaderboardSize: a.cfg.LeaderboardSize,
		StoreTimeout:    a.cfg.StoreTimeout,
		Logger:          &a.logger,
		Publisher:       publisher,
	})
}
