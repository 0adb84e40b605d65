package extensions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgpostgis/cmd/util"
	"github.com/pgschema/pgpostgis/ddl"
	"github.com/pgschema/pgpostgis/internal/catalog"
)

var (
	conn   util.ConnectionFlags
	create []string
	format string
)

var ExtensionsCmd = &cobra.Command{
	Use:   "extensions",
	Short: "Report server version and installed extensions",
	Long:  "Report the server version, encodings and installed extensions, and whether the server supports CREATE EXTENSION. With --create, print the statements that install the named extensions.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		switch format {
		case "text", "json":
		default:
			return fmt.Errorf("unsupported format %q (use text or json)", format)
		}
		return conn.PreRunE(cmd, args)
	},
	RunE: runExtensions,
}

func init() {
	conn.Register(ExtensionsCmd)
	ExtensionsCmd.Flags().StringSliceVar(&create, "create", nil, "Extension to print a CREATE EXTENSION statement for (repeatable)")
	ExtensionsCmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
}

// Report is the printed form of the server information.
type Report struct {
	ServerVersion      string   `json:"server_version"`
	ServerEncoding     string   `json:"server_encoding"`
	ClientEncoding     string   `json:"client_encoding"`
	SupportsExtensions bool     `json:"supports_extensions"`
	Installed          []string `json:"installed"`
	Statements         []string `json:"statements,omitempty"`
}

func runExtensions(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	db, err := util.Connect(ctx, conn.Config())
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := catalog.NewInspector(db, nil).Server(ctx)
	if err != nil {
		return err
	}
	report, err := Build(info, create)
	if err != nil {
		return err
	}
	return Write(cmd.OutOrStdout(), format, report)
}

// Build assembles the report. Extensions named in create that are not yet
// installed get a CREATE EXTENSION statement; it fails when the server is too
// old to install extensions.
func Build(info *catalog.ServerInfo, create []string) (*Report, error) {
	supported, err := ddl.SupportsExtensions(info.Version)
	if err != nil {
		return nil, err
	}
	report := &Report{
		ServerVersion:      info.Version,
		ServerEncoding:     info.ServerEncoding,
		ClientEncoding:     info.ClientEncoding,
		SupportsExtensions: supported,
		Installed:          info.Extensions,
	}
	if report.Installed == nil {
		report.Installed = []string{}
	}

	installed := make(map[string]bool, len(info.Extensions))
	for _, name := range info.Extensions {
		installed[name] = true
	}
	for _, name := range create {
		if installed[name] {
			continue
		}
		stmt, err := ddl.CreateExtension(name, info.Version)
		if err != nil {
			return nil, err
		}
		report.Statements = append(report.Statements, stmt)
	}
	return report, nil
}

// Write renders the report in the given format.
func Write(w io.Writer, format string, report *Report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	supported := "no"
	if report.SupportsExtensions {
		supported = "yes"
	}
	installed := strings.Join(report.Installed, ", ")
	if installed == "" {
		installed = "(none)"
	}
	fmt.Fprintf(w, "server version: %s\n", report.ServerVersion)
	fmt.Fprintf(w, "encoding: %s (client %s)\n", report.ServerEncoding, report.ClientEncoding)
	fmt.Fprintf(w, "extensions supported: %s\n", supported)
	fmt.Fprintf(w, "installed: %s\n", installed)
	for _, stmt := range report.Statements {
		fmt.Fprintf(w, "%s;\n", stmt)
	}
	return nil
}
