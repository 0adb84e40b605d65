// Package catalog reads the system catalogs that feed index reconstruction
// and array column casting.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/pgschema/pgpostgis/array"
	"github.com/pgschema/pgpostgis/index"
)

const indexRowsQuery = `
SELECT DISTINCT i.relname, d.indisunique, d.indkey::text, pg_get_indexdef(d.indexrelid), t.oid::int8
FROM pg_class t
INNER JOIN pg_index d ON t.oid = d.indrelid
INNER JOIN pg_class i ON d.indexrelid = i.oid
WHERE i.relkind = 'i'
  AND d.indisprimary = 'f'
  AND t.relname = $1
  AND i.relnamespace IN (SELECT oid FROM pg_namespace WHERE nspname = ANY (current_schemas(false)))
ORDER BY i.relname`

const columnLookupQuery = `
SELECT a.attnum::text, a.attname, t.typname
FROM pg_attribute a
INNER JOIN pg_type t ON a.atttypid = t.oid
WHERE a.attrelid = $1::int8::oid
  AND a.attnum = ANY (string_to_array($2, ' ')::int2[])`

const columnsQuery = `
SELECT a.attname, format_type(a.atttypid, a.atttypmod), NOT a.attnotnull, pg_get_expr(ad.adbin, ad.adrelid)
FROM pg_attribute a
INNER JOIN pg_class c ON a.attrelid = c.oid
LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
WHERE c.relname = $1
  AND c.relkind IN ('r', 'p', 'v', 'm')
  AND c.relnamespace IN (SELECT oid FROM pg_namespace WHERE nspname = ANY (current_schemas(false)))
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum`

// IndexRows returns the non-primary indexes of table in the current search
// path, ordered by index name.
func IndexRows(ctx context.Context, q Querier, table string) ([]index.RawRow, error) {
	rows, err := queryWithLogging(ctx, q, "index rows", indexRowsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes of %s: %w", table, err)
	}
	defer rows.Close()

	var result []index.RawRow
	for rows.Next() {
		var (
			row index.RawRow
			oid int64
		)
		if err := rows.Scan(&row.Name, &row.Unique, &row.ColumnNumbers, &row.Definition, &oid); err != nil {
			return nil, fmt.Errorf("failed to scan index row: %w", err)
		}
		row.Table = table
		row.TableOID = uint32(oid)
		result = append(result, row)
	}
	return result, rows.Err()
}

// ColumnLookup resolves the attribute numbers of an index row to column names
// and type names.
func ColumnLookup(ctx context.Context, q Querier, row index.RawRow) (index.ColumnLookup, error) {
	rows, err := queryWithLogging(ctx, q, "index columns", columnLookupQuery, int64(row.TableOID), row.ColumnNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of index %s: %w", row.Name, err)
	}
	defer rows.Close()

	lookup := make(index.ColumnLookup)
	for rows.Next() {
		var num string
		var col index.ColumnType
		if err := rows.Scan(&num, &col.Name, &col.TypeName); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		lookup[num] = col
	}
	return lookup, rows.Err()
}

// OpClassNames returns the operator class names known to the server.
func OpClassNames(ctx context.Context, q Querier) ([]string, error) {
	rows, err := queryWithLogging(ctx, q, "operator classes", "SELECT opcname FROM pg_opclass")
	if err != nil {
		return nil, fmt.Errorf("failed to query operator classes: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan operator class: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slices.Compact(slices.Sorted(slices.Values(names))), nil
}

// Extensions returns the installed extensions, excluding plpgsql. The names
// are aggregated server side and read back through the array decoder.
func Extensions(ctx context.Context, q Querier) ([]string, error) {
	literal, err := scalar[string](ctx, q, "extensions",
		"SELECT coalesce(array_agg(extname ORDER BY extname)::text, '{}') FROM pg_extension")
	if err != nil {
		return nil, fmt.Errorf("failed to query extensions: %w", err)
	}

	c, err := array.NewContext("UTF8", array.ServerQuoting)
	if err != nil {
		return nil, err
	}
	values, err := array.Decode(c, literal, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode extension list: %w", err)
	}

	var names []string
	for _, v := range values {
		if name, ok := v.(string); ok && name != "plpgsql" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ServerVersion returns the output of SHOW server_version.
func ServerVersion(ctx context.Context, q Querier) (string, error) {
	v, err := scalar[string](ctx, q, "server version", "SHOW server_version")
	if err != nil {
		return "", fmt.Errorf("failed to query server version: %w", err)
	}
	return v, nil
}

// ServerEncoding returns the output of SHOW server_encoding.
func ServerEncoding(ctx context.Context, q Querier) (string, error) {
	v, err := scalar[string](ctx, q, "server encoding", "SHOW server_encoding")
	if err != nil {
		return "", fmt.Errorf("failed to query server encoding: %w", err)
	}
	return v, nil
}

// ClientEncoding returns the output of SHOW client_encoding, the encoding
// text values arrive in.
func ClientEncoding(ctx context.Context, q Querier) (string, error) {
	v, err := scalar[string](ctx, q, "client encoding", "SHOW client_encoding")
	if err != nil {
		return "", fmt.Errorf("failed to query client encoding: %w", err)
	}
	return v, nil
}

// Columns returns the column specs of table in attribute order.
func Columns(ctx context.Context, q Querier, table string) ([]array.ColumnSpec, error) {
	rows, err := queryWithLogging(ctx, q, "columns", columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var specs []array.ColumnSpec
	for rows.Next() {
		var (
			name, sqlType string
			nullable      bool
			def           sql.NullString
		)
		if err := rows.Scan(&name, &sqlType, &nullable, &def); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		var defaultLiteral *string
		if def.Valid {
			defaultLiteral = &def.String
		}
		specs = append(specs, array.ParseColumnSpec(name, sqlType, nullable, defaultLiteral))
	}
	return specs, rows.Err()
}
