// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"testing"

	"influencer-platform/backend/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewEmptyDB opens an in-memory SQLite database with foreign keys enforced
// and no tables.
func NewEmptyDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewDB returns an in-memory database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := NewEmptyDB(t)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CloseDB closes the underlying connection pool so subsequent queries fail.
func CloseDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
