package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	apperrors "influencer-platform/backend/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE codes the data layer distinguishes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgUndefinedTable      = "42P01"
)

// constraint names follow <table>_<column>_key
var constraintColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

var sqliteMissingTable = regexp.MustCompile(`no such table: ([a-z_]+)`)

// sqlite reports "UNIQUE constraint failed: influencers.username"
var sqliteUniqueColumn = regexp.MustCompile(`UNIQUE constraint failed: [a-z_]+\.([a-z_]+)`)

// translateError maps a gorm, Postgres or SQLite error onto the application
// error taxonomy. entity is the upper-case singular name used in codes, for
// example "INFLUENCER".
func translateError(err error, entity string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFoundError(entity+"_NOT_FOUND", fmt.Sprintf("%s not found", humanize(entity)))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return conflictError(entity, "")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return influencerNotFound()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewBackendUnavailableError("DATABASE_TIMEOUT", "database call did not complete", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return conflictError(entity, columnFromConstraint(pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return influencerNotFound()
		case pgUndefinedTable:
			return apperrors.NewSchemaMissingError(pgErr.TableName)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		field := ""
		if m := sqliteUniqueColumn.FindStringSubmatch(msg); len(m) == 2 {
			field = m[1]
		}
		return conflictError(entity, field)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return influencerNotFound()
	case strings.Contains(msg, "no such table"):
		table := "unknown"
		if m := sqliteMissingTable.FindStringSubmatch(msg); len(m) == 2 {
			table = m[1]
		}
		return apperrors.NewSchemaMissingError(table)
	}

	return apperrors.NewBackendUnavailableError("DATABASE_UNAVAILABLE", "database operation failed", err)
}

func conflictError(entity, field string) *apperrors.AppError {
	e := apperrors.NewConflictError(entity+"_ALREADY_EXISTS", fmt.Sprintf("%s already exists", humanize(entity)))
	if field != "" {
		e.Message = fmt.Sprintf("%s with this %s already exists", humanize(entity), field)
		e.WithDetails(map[string]any{"field": field})
	}
	return e
}

func influencerNotFound() *apperrors.AppError {
	return apperrors.NewNotFoundError("INFLUENCER_NOT_FOUND", "influencer not found")
}

func columnFromConstraint(name string) string {
	if m := constraintColumn.FindStringSubmatch(name); len(m) == 2 {
		return m[1]
	}
	return ""
}

func humanize(entity string) string {
	return strings.ReplaceAll(strings.ToLower(entity), "_", " ")
}
