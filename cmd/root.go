package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgpostgis/cmd/arraycodec"
	"github.com/pgschema/pgpostgis/cmd/columns"
	"github.com/pgschema/pgpostgis/cmd/extensions"
	"github.com/pgschema/pgpostgis/cmd/indexes"
	"github.com/pgschema/pgpostgis/internal/logger"
	"github.com/pgschema/pgpostgis/internal/version"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "pgpostgis",
	Short: "PostgreSQL array and PostGIS index metadata tool",
	Long: fmt.Sprintf(`pgpostgis reads PostgreSQL array literals and rebuilds index metadata
for array and PostGIS columns.

Version: %s

Commands:
  indexes     Reconstruct index metadata for tables
  columns     List column types with array dimensions
  extensions  Report server version and installed extensions
  decode      Decode an array literal to JSON
  encode      Encode a JSON array as an array literal

Use "pgpostgis [command] --help" for more information about a command.`, version.String()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Configure(os.Stderr, Debug)
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(indexes.IndexesCmd)
	RootCmd.AddCommand(columns.ColumnsCmd)
	RootCmd.AddCommand(extensions.ExtensionsCmd)
	RootCmd.AddCommand(arraycodec.DecodeCmd)
	RootCmd.AddCommand(arraycodec.EncodeCmd)
	RootCmd.AddCommand(VersionCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
