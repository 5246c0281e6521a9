package config

import (
	"context"
	"fmt"
	"time"

	applog "influencer-platform/backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormWriter routes gorm's printf-style output into the application logger.
type gormWriter struct {
	log *applog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Debug(fmt.Sprintf(format, args...), "component", "gorm")
}

// GormLogger returns a gorm logger writing through log at a level matching
// the environment.
func GormLogger(cfg *Config, log *applog.Logger) logger.Interface {
	level := logger.Error
	if cfg.IsDevelopment() {
		level = logger.Info
	}
	return logger.New(gormWriter{log: log}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// NewDB creates a new database connection using configuration settings.
// Driver errors are translated so duplicate keys and foreign key violations
// surface as gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func NewDB(ctx context.Context, cfg *Config, log *applog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         GormLogger(cfg, log),
		TranslateError: true,
	}

	retries := cfg.Database.Retries
	if retries < 1 {
		retries = 1
	}

	var db *gorm.DB
	var err error
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			break
		}

		log.Warn("failed to connect to database, retrying",
			"attempt", i+1,
			"retries", retries,
			"delay", cfg.Database.RetryDelay.String(),
			"error", err.Error(),
		)
		if i == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to database: %w", ctx.Err())
		case <-time.After(cfg.Database.RetryDelay):
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d retries: %w", retries, err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}
