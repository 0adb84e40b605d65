package columns

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgschema/pgpostgis/array"
	"github.com/pgschema/pgpostgis/cast"
	"github.com/pgschema/pgpostgis/cmd/util"
	"github.com/pgschema/pgpostgis/internal/catalog"
	"github.com/pgschema/pgpostgis/internal/logger"
)

var (
	conn   util.ConnectionFlags
	table  string
	format string
)

var ColumnsCmd = &cobra.Command{
	Use:     "columns",
	Short:   "List column types of a table, with array dimensions",
	Long:    "List the columns of a table with their element type, array dimensions, nullability and decoded default value.",
	PreRunE: conn.PreRunE,
	RunE:    runColumns,
}

func init() {
	conn.Register(ColumnsCmd)
	ColumnsCmd.Flags().StringVar(&table, "table", "", "Table to inspect (required)")
	ColumnsCmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	ColumnsCmd.MarkFlagRequired("table")
}

// Column is the printed form of a column spec.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ElementType string `json:"element_type"`
	Dimensions  int    `json:"dimensions"`
	Nullable    bool   `json:"nullable"`
	Default     string `json:"default,omitempty"`
	// DefaultValue is set when the default is a literal the codec can read.
	DefaultValue any `json:"default_value,omitempty"`
}

func runColumns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	db, err := util.Connect(ctx, conn.Config())
	if err != nil {
		return err
	}
	defer db.Close()

	inspector := catalog.NewInspector(db, nil)
	specs, err := inspector.Columns(ctx, table)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("table %s not found", table)
	}

	// Defaults come back from pg_get_expr in server notation.
	c, err := inspector.ArrayContext(ctx)
	if err != nil {
		return err
	}
	return Write(cmd.OutOrStdout(), format, Describe(c, specs))
}

// Describe converts specs to their printed form.
func Describe(c *array.Context, specs []array.ColumnSpec) []Column {
	columns := make([]Column, 0, len(specs))
	for _, spec := range specs {
		col := Column{
			Name:        spec.Name,
			Type:        spec.SQLType(),
			ElementType: spec.ElementSQLType,
			Dimensions:  spec.Dimensions,
			Nullable:    spec.Nullable,
		}
		if spec.Default != nil {
			col.Default = *spec.Default
			decode, _ := cast.For(spec.ElementSQLType)
			v, ok, err := array.DefaultValue(c, spec, decode)
			if err != nil {
				logger.Get().Debug("Failed to decode column default", "column", spec.Name, "error", err)
			} else if ok {
				col.DefaultValue = v
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// Write renders columns in the given format.
func Write(w io.Writer, format string, columns []Column) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(columns)
	}

	for _, col := range columns {
		var attrs []string
		if col.Dimensions > 0 {
			attrs = append(attrs, fmt.Sprintf("array(%d)", col.Dimensions))
		}
		if !col.Nullable {
			attrs = append(attrs, "not null")
		}
		if col.Default != "" {
			attrs = append(attrs, "default "+col.Default)
		}
		line := fmt.Sprintf("%s %s", col.Name, col.ElementType)
		if len(attrs) > 0 {
			line += " " + strings.Join(attrs, ", ")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
