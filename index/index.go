// Package index rebuilds structured index definitions from PostgreSQL
// catalog rows.
//
// The catalog reports an index as free text (pg_get_indexdef). Reconstruct
// mines that text for sort orders, the partial-index predicate, the access
// method and the operator class. The mining is heuristic and tied to the
// output format of pg_get_indexdef; it sits behind the Miner interface so a
// different strategy can be swapped in without changing Descriptor.
package index

import (
	"slices"
	"strings"

	"github.com/pgschema/pgpostgis/internal/logger"
)

// Order is the sort direction of an index column.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// DefaultMethod is the access method PostgreSQL uses when none is given.
const DefaultMethod = "btree"

// Descriptor is a reconstructed index definition.
type Descriptor struct {
	Table         string           `json:"table" yaml:"table"`
	Name          string           `json:"name" yaml:"name"`
	Unique        bool             `json:"unique" yaml:"unique"`
	Columns       []string         `json:"columns" yaml:"columns"`
	Orders        map[string]Order `json:"orders,omitempty" yaml:"orders,omitempty"` // only DESC columns are listed
	Where         string           `json:"where,omitempty" yaml:"where,omitempty"`
	Using         string           `json:"using,omitempty" yaml:"using,omitempty"` // omitted for btree and spatial indexes
	OpClass       string           `json:"opclass,omitempty" yaml:"opclass,omitempty"`
	OpClassColumn string           `json:"opclass_column,omitempty" yaml:"opclass_column,omitempty"` // column carrying OpClass
	Spatial       bool             `json:"spatial" yaml:"spatial"`
}

// OrderOf returns the sort order of column, defaulting to Asc.
func (d *Descriptor) OrderOf(column string) Order {
	if o, ok := d.Orders[column]; ok {
		return o
	}
	return Asc
}

// RawRow is one index as returned by the catalog query.
type RawRow struct {
	Table         string
	Name          string
	Unique        bool
	ColumnNumbers string // pg_index.indkey, space separated attribute numbers
	Definition    string // pg_get_indexdef output
	TableOID      uint32
}

// ColumnType is the name and type name of a table attribute.
type ColumnType struct {
	Name     string
	TypeName string
}

// ColumnLookup maps attribute numbers, as they appear in RawRow.ColumnNumbers,
// to column names and types.
type ColumnLookup map[string]ColumnType

// Definition is what a Miner extracts from index definition text.
type Definition struct {
	Method        string
	DescColumns   []string
	Where         string
	OpClass       string
	// OpClassColumn is the column list element carrying OpClass. Empty when
	// the miner cannot tell.
	OpClassColumn string
}

// Miner extracts a Definition from pg_get_indexdef output. opclasses lists
// the operator class names known to the server.
type Miner interface {
	Mine(definition string, opclasses []string) (Definition, error)
}

// Reconstructor turns catalog rows into descriptors using Miner.
// The zero value uses PatternMiner.
type Reconstructor struct {
	Miner Miner
}

// Reconstruct builds a descriptor with the default pattern miner. It returns
// nil when none of the index columns resolve, as happens for expression
// indexes.
func Reconstruct(row RawRow, columns ColumnLookup, opclasses []string) *Descriptor {
	// PatternMiner never fails.
	d, _ := (&Reconstructor{}).Reconstruct(row, columns, opclasses)
	return d
}

// Reconstruct builds a descriptor for row. A nil descriptor with a nil error
// means the index has no resolvable columns and should be skipped.
func (r *Reconstructor) Reconstruct(row RawRow, columns ColumnLookup, opclasses []string) (*Descriptor, error) {
	var names, types []string
	for _, num := range strings.Fields(row.ColumnNumbers) {
		col, ok := columns[num]
		if !ok || col.Name == "" {
			continue
		}
		names = append(names, col.Name)
		types = append(types, col.TypeName)
	}
	if len(names) == 0 {
		logger.Get().Debug("Skipping index without resolvable columns", "index", row.Name, "table", row.Table)
		return nil, nil
	}

	def, err := r.miner().Mine(row.Definition, opclasses)
	if err != nil {
		return nil, err
	}

	d := &Descriptor{
		Table:   row.Table,
		Name:    row.Name,
		Unique:  row.Unique,
		Columns: names,
		Orders:  map[string]Order{},
		Where:   def.Where,
	}
	for _, col := range def.DescColumns {
		if slices.Contains(names, col) {
			d.Orders[col] = Desc
		}
	}

	d.Spatial = strings.EqualFold(def.Method, "gist") && len(names) == 1 && isSpatialType(types[0])

	if def.Method != "" && !strings.EqualFold(def.Method, DefaultMethod) && !d.Spatial {
		d.Using = def.Method
		// An operator class on an expression cannot be reproduced on the
		// resolved columns.
		if def.OpClassColumn == "" || slices.Contains(names, def.OpClassColumn) {
			d.OpClass = def.OpClass
			d.OpClassColumn = def.OpClassColumn
		}
	}
	return d, nil
}

// ReconstructAll rebuilds every row of a table, skipping rows that do not
// resolve. lookup supplies the column lookup for each row.
func (r *Reconstructor) ReconstructAll(rows []RawRow, lookup func(RawRow) (ColumnLookup, error), opclasses []string) ([]*Descriptor, error) {
	var result []*Descriptor
	for _, row := range rows {
		columns, err := lookup(row)
		if err != nil {
			return nil, err
		}
		d, err := r.Reconstruct(row, columns, opclasses)
		if err != nil {
			return nil, err
		}
		if d != nil {
			result = append(result, d)
		}
	}
	return result, nil
}

func (r *Reconstructor) miner() Miner {
	if r == nil || r.Miner == nil {
		return PatternMiner{}
	}
	return r.Miner
}

func isSpatialType(typeName string) bool {
	return typeName == "geometry" || typeName == "geography"
}

