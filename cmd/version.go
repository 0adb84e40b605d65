package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgpostgis/internal/version"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of pgpostgis",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
