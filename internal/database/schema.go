package database

import (
	"context"

	"influencer-platform/backend/internal/models"
	apperrors "influencer-platform/backend/pkg/errors"

	"gorm.io/gorm"
)

// RequiredTables lists the tables the data layer reads and writes, in
// creation order.
var RequiredTables = []string{"influencers", "affiliate_links", "chat_interactions"}

// EnsureSchema verifies that every required table exists. It never creates
// anything; a missing table yields a SCHEMA_MISSING error naming it.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	migrator := db.WithContext(ctx).Migrator()

	var missing []string
	for _, table := range RequiredTables {
		if !migrator.HasTable(table) {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewSchemaMissingError(missing...)
	}
	return nil
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return apperrors.NewBackendUnavailableError("DATABASE_UNAVAILABLE", "database handle unavailable", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.NewBackendUnavailableError("DATABASE_UNAVAILABLE", "database ping failed", err)
	}
	return nil
}

// AutoMigrate creates the tables from the gorm models. Used for embedded
// databases in tests and local development; deployments use Migrate.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Influencer{}, &models.AffiliateLink{}, &models.ChatInteraction{})
}
