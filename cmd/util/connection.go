package util

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/pgschema/pgpostgis/internal/logger"
)

// ConnectionConfig holds database connection parameters
type ConnectionConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	ApplicationName string
}

// Connect opens a pgx-backed *sql.DB and verifies it with a ping.
func Connect(ctx context.Context, config *ConnectionConfig) (*sql.DB, error) {
	log := logger.Get()
	log.Debug("Attempting database connection",
		"host", config.Host,
		"port", config.Port,
		"database", config.Database,
		"user", config.User,
		"sslmode", config.SSLMode,
	)

	conn, err := sql.Open("pgx", buildDSN(config))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		log.Debug("Database ping failed", "error", err)
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug("Database connection established")
	return conn, nil
}

// buildDSN constructs a keyword/value connection string. Values containing
// spaces or quotes are single quoted.
func buildDSN(config *ConnectionConfig) string {
	parts := []string{
		"host=" + dsnValue(config.Host),
		fmt.Sprintf("port=%d", config.Port),
		"dbname=" + dsnValue(config.Database),
		"user=" + dsnValue(config.User),
	}
	if config.Password != "" {
		parts = append(parts, "password="+dsnValue(config.Password))
	}
	if config.SSLMode != "" {
		parts = append(parts, "sslmode="+config.SSLMode)
	}
	if config.ApplicationName != "" {
		parts = append(parts, "application_name="+dsnValue(config.ApplicationName))
	}
	return strings.Join(parts, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
