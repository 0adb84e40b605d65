package index

import (
	"regexp"
	"strings"
)

var (
	descColumnPattern = regexp.MustCompile(`(?:"([^"]+)"|(\w+)) DESC\b`)
	wherePattern      = regexp.MustCompile(`(?s)\sWHERE\s+(.+)$`)
	usingPattern      = regexp.MustCompile(`(?i)\sUSING\s+(\w+)`)
)

// PatternMiner reads index definitions with regular expressions. It expects
// the layout produced by pg_get_indexdef:
//
//	CREATE [UNIQUE] INDEX name ON [schema.]table USING method (col [opclass] [DESC], ...) [WHERE predicate]
type PatternMiner struct{}

func (PatternMiner) Mine(definition string, opclasses []string) (Definition, error) {
	def := Definition{Where: predicate(definition)}

	rest := definition
	if m := usingPattern.FindStringSubmatchIndex(definition); m != nil {
		def.Method = definition[m[2]:m[3]]
		rest = definition[m[1]:]
	} else if i := strings.Index(strings.ToUpper(definition), " ON "); i >= 0 {
		rest = definition[i+len(" ON "):]
	}

	// The column list is the first parenthesized group after the method, or
	// after the table when no method is given.
	list, ok := parenthesized(rest)
	if !ok {
		def.DescColumns = descColumns(definition)
		return def, nil
	}

	known := make(map[string]bool, len(opclasses))
	for _, name := range opclasses {
		known[name] = true
	}
	for _, elem := range splitTopLevel(list) {
		col, words, ok := splitElement(elem)
		if !ok {
			// Expressions are not index columns.
			continue
		}
		for _, w := range words {
			if strings.EqualFold(w, "DESC") {
				def.DescColumns = append(def.DescColumns, col)
			}
			// Non-default schemas qualify the name.
			if i := strings.LastIndexByte(w, '.'); i >= 0 {
				w = w[i+1:]
			}
			if def.OpClass == "" && known[w] {
				def.OpClass = w
				def.OpClassColumn = col
			}
		}
	}
	return def, nil
}

// descColumns is the fallback for definitions without a column list.
func descColumns(definition string) []string {
	var cols []string
	for _, m := range descColumnPattern.FindAllStringSubmatch(definition, -1) {
		if m[1] != "" {
			cols = append(cols, m[1])
		} else {
			cols = append(cols, m[2])
		}
	}
	return cols
}

func predicate(definition string) string {
	if m := wherePattern.FindStringSubmatch(definition); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// parenthesized returns the contents of the first balanced parenthesis group
// in s, skipping quoted identifiers and string literals.
func parenthesized(s string) (string, bool) {
	start := strings.IndexByte(s, '(')
	if start < 0 {
		return "", false
	}
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		}
	}
	return "", false
}

// splitElement separates one column list element into the indexed column,
// unquoted, and the words following it (collation, operator class, order).
// It reports false for expression elements.
func splitElement(elem string) (string, []string, bool) {
	elem = strings.TrimSpace(elem)
	if strings.HasPrefix(elem, `"`) {
		var b strings.Builder
		for i := 1; i < len(elem); i++ {
			if elem[i] != '"' {
				b.WriteByte(elem[i])
				continue
			}
			if i+1 < len(elem) && elem[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			return b.String(), strings.Fields(elem[i+1:]), true
		}
		return "", nil, false
	}
	if strings.HasPrefix(elem, "(") {
		return "", nil, false
	}
	words := strings.Fields(elem)
	if len(words) == 0 || strings.ContainsRune(words[0], '(') {
		return "", nil, false
	}
	return words[0], words[1:], true
}

// splitTopLevel splits a column list on commas outside parentheses and quotes.
func splitTopLevel(list string) []string {
	var parts []string
	depth, last := 0, 0
	var quote byte
	for i := 0; i < len(list); i++ {
		c := list[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, list[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, list[last:])
}
