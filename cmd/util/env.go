package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ConnectionFlags are the connection flags shared by commands that talk to a
// database.
type ConnectionFlags struct {
	Host     string
	Port     int
	DB       string
	User     string
	Password string
}

// Register adds the connection flags to cmd.
func (f *ConnectionFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Host, "host", "localhost", "Database server host (env: PGHOST)")
	cmd.Flags().IntVar(&f.Port, "port", 5432, "Database server port (env: PGPORT)")
	cmd.Flags().StringVar(&f.DB, "db", "", "Database name (required, env: PGDATABASE)")
	cmd.Flags().StringVar(&f.User, "user", "", "Database user name (required, env: PGUSER)")
	cmd.Flags().StringVar(&f.Password, "password", "", "Database password (env: PGPASSWORD)")
}

// PreRunE fills flags that were not set explicitly from the PG* environment
// variables and validates that the required ones are present.
func (f *ConnectionFlags) PreRunE(cmd *cobra.Command, args []string) error {
	if v := GetEnvWithDefault("PGDATABASE", ""); v != "" && !cmd.Flags().Changed("db") {
		f.DB = v
	}
	if v := GetEnvWithDefault("PGUSER", ""); v != "" && !cmd.Flags().Changed("user") {
		f.User = v
	}
	if v := GetEnvWithDefault("PGHOST", ""); v != "" && !cmd.Flags().Changed("host") {
		f.Host = v
	}
	if v := GetEnvIntWithDefault("PGPORT", 0); v != 0 && !cmd.Flags().Changed("port") {
		f.Port = v
	}
	if v := GetEnvWithDefault("PGPASSWORD", ""); v != "" && !cmd.Flags().Changed("password") {
		f.Password = v
	}

	if f.DB == "" {
		return fmt.Errorf("database name is required (use --db flag or PGDATABASE environment variable)")
	}
	if f.User == "" {
		return fmt.Errorf("database user is required (use --user flag or PGUSER environment variable)")
	}
	return nil
}

// Config returns the connection configuration for the flags.
func (f *ConnectionFlags) Config() *ConnectionConfig {
	return &ConnectionConfig{
		Host:            f.Host,
		Port:            f.Port,
		Database:        f.DB,
		User:            f.User,
		Password:        f.Password,
		SSLMode:         "prefer",
		ApplicationName: "pgpostgis",
	}
}
