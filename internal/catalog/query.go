package catalog

import (
	"context"
	"database/sql"

	"github.com/pgschema/pgpostgis/internal/logger"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryWithLogging runs a query, logging the statement and its outcome when
// debug logging is enabled.
func queryWithLogging(ctx context.Context, q Querier, description, query string, args ...any) (*sql.Rows, error) {
	isDebug := logger.IsDebug()
	if isDebug {
		logger.Get().Debug("Executing SQL", "description", description, "sql", query, "args", args)
	}

	rows, err := q.QueryContext(ctx, query, args...)

	if isDebug {
		if err != nil {
			logger.Get().Debug("SQL execution failed", "description", description, "error", err)
		} else {
			logger.Get().Debug("SQL execution succeeded", "description", description)
		}
	}
	return rows, err
}

// scalar runs a single-value query.
func scalar[T any](ctx context.Context, q Querier, description, query string, args ...any) (T, error) {
	var v T
	if logger.IsDebug() {
		logger.Get().Debug("Executing SQL", "description", description, "sql", query, "args", args)
	}
	if err := q.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return v, err
	}
	return v, nil
}
