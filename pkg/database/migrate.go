package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending embedded migration and returns what ran.
func Migrate(ctx context.Context, d *gorm.DB) ([]*goose.MigrationResult, error) {
	var dialect goose.Dialect
	switch d.Dialector.Name() {
	case "postgres":
		dialect = goose.DialectPostgres
	case "sqlite":
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migration dialect for %q", d.Dialector.Name())
	}

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("apply migrations: %w", err)
	}
	return results, nil
}
