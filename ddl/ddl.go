// Package ddl renders the CREATE statements that pair with reconstructed
// index metadata: array-aware column types, index creation with operator
// classes and spatial access, and extension installation.
package ddl

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/lib/pq"

	"github.com/pgschema/pgpostgis/index"
)

// AlgorithmConcurrently builds the index without locking out writes.
const AlgorithmConcurrently = "concurrently"

// IndexOptions describes an index to create.
type IndexOptions struct {
	Name    string
	Table   string
	Columns []string
	// Orders holds the non-default sort directions keyed by column.
	Orders  map[string]index.Order
	Unique  bool
	Using   string
	Spatial bool
	Where   string
	// OpClass applies to OpClassColumn, or to the last column when that is
	// empty.
	OpClass string
	OpClassColumn string
	Algorithm     string
}

// CreateIndex renders a CREATE INDEX statement.
func CreateIndex(opts IndexOptions) (string, error) {
	switch strings.ToLower(opts.Algorithm) {
	case "", AlgorithmConcurrently:
	default:
		return "", &InvalidAlgorithmOptionError{Algorithm: opts.Algorithm}
	}
	if opts.Name == "" || opts.Table == "" {
		return "", fmt.Errorf("index name and table are required")
	}
	if len(opts.Columns) == 0 {
		return "", fmt.Errorf("index %s has no columns", opts.Name)
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if opts.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX")
	if opts.Algorithm != "" {
		b.WriteString(" CONCURRENTLY")
	}
	fmt.Fprintf(&b, " %s ON %s", pq.QuoteIdentifier(opts.Name), QuoteTable(opts.Table))

	using := opts.Using
	if opts.Spatial {
		using = "gist"
	}
	if using != "" {
		fmt.Fprintf(&b, " USING %s", using)
	}

	opclassColumn := opts.OpClassColumn
	if opclassColumn == "" {
		opclassColumn = opts.Columns[len(opts.Columns)-1]
	} else if opts.OpClass != "" && !slices.Contains(opts.Columns, opclassColumn) {
		return "", fmt.Errorf("operator class column %s is not indexed by %s", opclassColumn, opts.Name)
	}

	cols := make([]string, len(opts.Columns))
	for i, col := range opts.Columns {
		cols[i] = pq.QuoteIdentifier(col)
		if opts.OpClass != "" && col == opclassColumn {
			cols[i] += " " + opts.OpClass
		}
		if opts.Orders[col] == index.Desc {
			cols[i] += " DESC"
		}
	}
	fmt.Fprintf(&b, " (%s)", strings.Join(cols, ", "))

	if opts.Where != "" {
		fmt.Fprintf(&b, " WHERE %s", opts.Where)
	}
	return b.String(), nil
}

// FromDescriptor converts reconstructed metadata back into creation options.
func FromDescriptor(d *index.Descriptor) IndexOptions {
	return IndexOptions{
		Name:    d.Name,
		Table:   d.Table,
		Columns: d.Columns,
		Orders:  d.Orders,
		Unique:  d.Unique,
		Using:   d.Using,
		Spatial: d.Spatial,
		Where:   d.Where,
		OpClass:       d.OpClass,
		OpClassColumn: d.OpClassColumn,
	}
}

// QuoteTable quotes a table name, keeping an optional schema qualifier
// separate.
func QuoteTable(name string) string {
	if schema, table, ok := strings.Cut(name, "."); ok {
		return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(table)
	}
	return pq.QuoteIdentifier(name)
}

var (
	versionPattern      = regexp.MustCompile(`^\s*(\d+(?:\.\d+){0,2})`)
	extensionConstraint = mustConstraint(">= 9.1")
)

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// SupportsExtensions reports whether a server running serverVersion (the
// output of SHOW server_version) supports CREATE EXTENSION.
func SupportsExtensions(serverVersion string) (bool, error) {
	m := versionPattern.FindStringSubmatch(serverVersion)
	if m == nil {
		return false, fmt.Errorf("failed to parse server version %q", serverVersion)
	}
	v, err := semver.NewVersion(m[1])
	if err != nil {
		return false, fmt.Errorf("failed to parse server version %q: %w", serverVersion, err)
	}
	return extensionConstraint.Check(v), nil
}

// CreateExtension renders an idempotent CREATE EXTENSION statement.
func CreateExtension(name, serverVersion string) (string, error) {
	ok, err := SupportsExtensions(serverVersion)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &UnsupportedFeatureError{Feature: "extensions", ServerVersion: serverVersion}
	}
	return fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s", pq.QuoteIdentifier(name)), nil
}

// ArrayColumnType returns the column type for elementType, with the array
// suffix when array is set.
func ArrayColumnType(elementType string, array bool) string {
	if array && !strings.HasSuffix(elementType, "[]") {
		return elementType + "[]"
	}
	return elementType
}
