package index

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ASTMiner parses the definition with the PostgreSQL parser instead of
// matching text. Sort order and operator class come from the parse tree; the
// predicate is still cut from the definition text so it keeps the server's
// formatting.
type ASTMiner struct{}

func (ASTMiner) Mine(definition string, opclasses []string) (Definition, error) {
	result, err := pg_query.Parse(definition)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to parse index definition: %w", err)
	}

	var stmt *pg_query.IndexStmt
	for _, raw := range result.Stmts {
		if node := raw.GetStmt(); node != nil {
			if s := node.GetIndexStmt(); s != nil {
				stmt = s
				break
			}
		}
	}
	if stmt == nil {
		return Definition{}, fmt.Errorf("no CREATE INDEX statement found in definition")
	}

	known := make(map[string]bool, len(opclasses))
	for _, name := range opclasses {
		known[name] = true
	}

	def := Definition{
		Method: stmt.AccessMethod,
		Where:  predicate(definition),
	}
	for _, param := range stmt.IndexParams {
		elem := param.GetIndexElem()
		// Expressions are not index columns.
		if elem == nil || elem.Name == "" {
			continue
		}
		if elem.Ordering == pg_query.SortByDir_SORTBY_DESC {
			def.DescColumns = append(def.DescColumns, elem.Name)
		}
		if def.OpClass != "" || len(elem.Opclass) == 0 {
			continue
		}
		// Qualified names arrive as [schema, name].
		last := elem.Opclass[len(elem.Opclass)-1]
		if s := last.GetString_(); s != nil && known[s.Sval] {
			def.OpClass = s.Sval
			def.OpClassColumn = elem.Name
		}
	}
	return def, nil
}
