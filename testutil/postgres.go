// Package testutil provides shared test utilities for pgpostgis
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var suppressedLogger = log.New(io.Discard, "", 0)

// postgisImage returns the PostGIS image to test against. It reads the tag
// from PGPOSTGIS_IMAGE_TAG, defaulting to "17-3.5-alpine".
func postgisImage() string {
	tag := "17-3.5-alpine"
	if v := os.Getenv("PGPOSTGIS_IMAGE_TAG"); v != "" {
		tag = v
	}
	return "postgis/postgis:" + tag
}

// ContainerInfo holds PostgreSQL container connection details
type ContainerInfo struct {
	Container testcontainers.Container
	Host      string
	Port      int
	DSN       string
	Conn      *sql.DB
}

// SetupPostgisContainer starts a PostGIS container and connects to it. The
// container is terminated when the test finishes.
func SetupPostgisContainer(ctx context.Context, t *testing.T) *ContainerInfo {
	t.Helper()

	container, err := postgres.Run(ctx,
		postgisImage(),
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	info := &ContainerInfo{
		Container: container,
		Host:      host,
		Port:      port.Int(),
		DSN:       dsn,
		Conn:      conn,
	}
	t.Cleanup(func() { info.Terminate(context.Background(), t) })
	return info
}

// Terminate cleans up the container and connection
func (ci *ContainerInfo) Terminate(ctx context.Context, t *testing.T) {
	ci.Conn.Close()
	if err := ci.Container.Terminate(ctx); err != nil {
		t.Logf("Failed to terminate container: %v", err)
	}
}

// Exec runs setup statements, failing the test on the first error.
func (ci *ContainerInfo) Exec(ctx context.Context, t *testing.T, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := ci.Conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}
}
