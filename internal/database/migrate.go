package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"influencer-platform/backend/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations exposes the embedded migration files.
func Migrations() embed.FS {
	return migrations
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, fmt.Errorf("constructing database migrator: %w", err)
	}
	return m, nil
}

// run executes fn against a fresh migrator, stopping it gracefully when ctx
// is cancelled.
func run(ctx context.Context, dsn string, fn func(m *migrate.Migrate) error) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	return fn(m)
}

// Migrate applies all pending migrations. Running it on an up-to-date
// schema is a no-op.
func Migrate(ctx context.Context, dsn string, log *logger.Logger) error {
	return run(ctx, dsn, func(m *migrate.Migrate) error {
		from, _, err := versionOf(m)
		if err != nil {
			return err
		}

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("database schema up to date", "version", from)
				return nil
			}
			return fmt.Errorf("applying migrations: %w", err)
		}

		to, _, err := versionOf(m)
		if err != nil {
			return err
		}
		log.Info("migrated database schema", "from", from, "to", to)
		return nil
	})
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(ctx context.Context, dsn string, steps int, log *logger.Logger) error {
	if steps < 1 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	return run(ctx, dsn, func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("nothing to roll back")
				return nil
			}
			return fmt.Errorf("rolling back migrations: %w", err)
		}
		to, _, err := versionOf(m)
		if err != nil {
			return err
		}
		log.Info("rolled back database schema", "steps", steps, "version", to)
		return nil
	})
}

// Version reports the applied schema version and whether the last
// migration left the schema dirty.
func Version(ctx context.Context, dsn string) (uint, bool, error) {
	var (
		version uint
		dirty   bool
	)
	err := run(ctx, dsn, func(m *migrate.Migrate) error {
		var err error
		version, dirty, err = versionOf(m)
		return err
	})
	return version, dirty, err
}

func versionOf(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading schema version: %w", err)
	}
	return version, dirty, nil
}
