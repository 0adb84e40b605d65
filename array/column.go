package array

import (
	"strings"
)

// ColumnSpec describes a column whose declared type may carry the [] array
// marker. The marker is stripped from ElementSQLType.
type ColumnSpec struct {
	Name           string
	ElementSQLType string
	IsArray        bool
	Dimensions     int
	Nullable       bool
	Default        *string
}

// ParseColumnSpec builds a ColumnSpec from a declared SQL type such as
// "integer[]", "character varying(20)[]" or "geometry(Point,4326)".
func ParseColumnSpec(name, sqlType string, nullable bool, defaultLiteral *string) ColumnSpec {
	spec := ColumnSpec{
		Name:     name,
		Nullable: nullable,
	}
	if defaultLiteral != nil {
		d := *defaultLiteral
		spec.Default = &d
	}

	elem := strings.TrimSpace(sqlType)
	for strings.HasSuffix(elem, "[]") {
		elem = strings.TrimSpace(strings.TrimSuffix(elem, "[]"))
		spec.Dimensions++
	}
	spec.ElementSQLType = elem
	spec.IsArray = spec.Dimensions > 0
	return spec
}

// SQLType returns the declared type, including the array marker.
func (s ColumnSpec) SQLType() string {
	return s.ElementSQLType + strings.Repeat("[]", s.Dimensions)
}

// BaseType returns the element type without any modifier, lower cased:
// "character varying(20)" becomes "character varying".
func (s ColumnSpec) BaseType() string {
	base := s.ElementSQLType
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	return strings.ToLower(strings.TrimSpace(base))
}

// Cast converts a raw column value for this column. Array columns decode
// every string as a literal, including ones with a bounds prefix such as
// [0:1]={1,2}, and pass slices through. Scalar columns run elem on strings.
// nil stays nil.
func Cast(c *Context, spec ColumnSpec, value any, elem ElementDecoder) (any, error) {
	if value == nil {
		return nil, nil
	}

	if spec.IsArray {
		if raw, ok := value.([]byte); ok {
			value = string(raw)
		}
		if s, ok := value.(string); ok {
			return Decode(c, s, elem)
		}
		if s, ok := asSlice(value); ok {
			return s, nil
		}
	}

	if s, ok := value.(string); ok && elem != nil {
		return elem(s)
	}
	return value, nil
}

// DefaultValue decodes the column default as reported by pg_get_expr, such
// as '{a,b}'::text[] or 42. The second result is false when the default is
// not a plain literal (a function call or an ARRAY constructor).
func DefaultValue(c *Context, spec ColumnSpec, elem ElementDecoder) (any, bool, error) {
	if spec.Default == nil {
		return nil, false, nil
	}
	expr := strings.TrimSpace(*spec.Default)
	if strings.EqualFold(expr, "NULL") || strings.HasPrefix(strings.ToUpper(expr), "NULL::") {
		return nil, true, nil
	}

	literal, ok := sqlLiteral(expr)
	if !ok {
		return nil, false, nil
	}
	v, err := Cast(c, spec, literal, elem)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// sqlLiteral extracts a leading string or numeric literal from expr,
// ignoring a trailing type cast.
func sqlLiteral(expr string) (string, bool) {
	if !strings.HasPrefix(expr, "'") {
		head, _, _ := strings.Cut(expr, "::")
		head = strings.Trim(head, "()")
		if head == "" || !isNumeric(head) {
			return "", false
		}
		return head, true
	}

	var b strings.Builder
	for i := 1; i < len(expr); i++ {
		if expr[i] != '\'' {
			b.WriteByte(expr[i])
			continue
		}
		if i+1 < len(expr) && expr[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		rest := strings.TrimSpace(expr[i+1:])
		if rest != "" && !strings.HasPrefix(rest, "::") {
			return "", false
		}
		return b.String(), true
	}
	return "", false
}

func isNumeric(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	dot := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return true
}
