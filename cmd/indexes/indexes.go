package indexes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pgschema/pgpostgis/cmd/util"
	"github.com/pgschema/pgpostgis/ddl"
	"github.com/pgschema/pgpostgis/index"
	"github.com/pgschema/pgpostgis/internal/catalog"
	"github.com/pgschema/pgpostgis/internal/color"
	"github.com/pgschema/pgpostgis/internal/ignore"
	"github.com/pgschema/pgpostgis/internal/logger"
	identutil "github.com/pgschema/pgpostgis/internal/util"
)

var (
	conn       util.ConnectionFlags
	tables     []string
	format     string
	useAST     bool
	parallel   int
	noColor    bool
	ignoreFile string
)

var IndexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Reconstruct index metadata for tables",
	Long:  "Read index definitions from the catalog and print the reconstructed column list, sort orders, predicate, access method, operator class and spatial flag.",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		switch format {
		case "text", "json", "yaml", "sql":
		default:
			return fmt.Errorf("unsupported format %q (use text, json, yaml or sql)", format)
		}
		return conn.PreRunE(cmd, args)
	},
	RunE: runIndexes,
}

func init() {
	conn.Register(IndexesCmd)
	IndexesCmd.Flags().StringSliceVar(&tables, "table", nil, "Table to inspect (repeatable, required)")
	IndexesCmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, yaml or sql")
	IndexesCmd.Flags().BoolVar(&useAST, "ast", false, "Read definitions with the PostgreSQL parser instead of patterns")
	IndexesCmd.Flags().IntVar(&parallel, "parallel", catalog.DefaultConcurrency, "Number of tables inspected concurrently")
	IndexesCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored text output")
	IndexesCmd.Flags().StringVar(&ignoreFile, "ignore-file", ignore.FileName, "TOML file listing table and index patterns to skip")
	IndexesCmd.MarkFlagRequired("table")
}

func runIndexes(cmd *cobra.Command, args []string) error {
	ignoreConfig, err := ignore.LoadFromPath(ignoreFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", ignoreFile, err)
	}
	var selected []string
	for _, table := range tables {
		if ignoreConfig.ShouldIgnoreTable(table) {
			logger.Get().Debug("Skipping ignored table", "table", table)
			continue
		}
		selected = append(selected, table)
	}

	ctx := context.Background()
	db, err := util.Connect(ctx, conn.Config())
	if err != nil {
		return err
	}
	defer db.Close()

	var miner index.Miner
	if useAST {
		miner = index.ASTMiner{}
	}
	inspector := catalog.NewInspector(db, miner)
	inspector.Concurrency = parallel

	result, err := inspector.Tables(ctx, selected)
	if err != nil {
		return err
	}

	var descriptors []*index.Descriptor
	for _, table := range selected {
		for _, d := range result[table] {
			if ignoreConfig.ShouldIgnoreIndex(d.Name) {
				logger.Get().Debug("Skipping ignored index", "table", table, "index", d.Name)
				continue
			}
			descriptors = append(descriptors, d)
		}
	}
	return Write(cmd.OutOrStdout(), format, descriptors, color.New(!noColor))
}

// Write renders descriptors in the given format. c colors text output.
func Write(w io.Writer, format string, descriptors []*index.Descriptor, c *color.Color) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if descriptors == nil {
			descriptors = []*index.Descriptor{}
		}
		return enc.Encode(descriptors)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if descriptors == nil {
			descriptors = []*index.Descriptor{}
		}
		if err := enc.Encode(descriptors); err != nil {
			return err
		}
		return enc.Close()
	case "sql":
		for _, d := range descriptors {
			stmt, err := ddl.CreateIndex(ddl.FromDescriptor(d))
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s;\n", stmt)
		}
		return nil
	default:
		seen := make(map[string]bool)
		spatial := 0
		for _, d := range descriptors {
			fmt.Fprintln(w, formatText(d, c))
			seen[d.Table] = true
			if d.Spatial {
				spatial++
			}
		}
		fmt.Fprintln(w, c.FormatSummary(len(seen), len(descriptors), spatial))
		return nil
	}
}

func formatText(d *index.Descriptor, c *color.Color) string {
	var b strings.Builder
	b.WriteString(c.Name(identutil.QualifiedName(d.Table, d.Name)))

	cols := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		cols[i] = identutil.QuoteIdentifier(col)
		if d.OpClass != "" && col == d.OpClassColumn {
			cols[i] += " " + d.OpClass
		}
		if d.OrderOf(col) == index.Desc {
			cols[i] += " desc"
		}
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(cols, ", "))

	var attrs []string
	if d.Unique {
		attrs = append(attrs, "unique")
	}
	if d.Using != "" {
		attrs = append(attrs, "using="+d.Using)
	}
	if d.OpClass != "" && d.OpClassColumn == "" {
		attrs = append(attrs, "opclass="+d.OpClass)
	}
	if d.Where != "" {
		attrs = append(attrs, "where="+d.Where)
	}
	slices.Sort(attrs)
	if d.Spatial {
		b.WriteString(" " + c.Spatial("spatial"))
	}
	for _, a := range attrs {
		b.WriteString(" " + c.Attr(a))
	}
	return b.String()
}
