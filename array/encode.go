package array

import (
	"fmt"
	"reflect"
	"strings"
)

// ElementEncoder formats one non-NULL element. Returning a nil slice renders
// the element as NULL.
type ElementEncoder func(value any) ([]byte, error)

// Encode renders v as an array literal. Nested slices become nested arrays
// and nil elements become NULL. Siblings must all be slices or all be
// scalars, as the server rejects anything else.
//
// String elements are always double quoted. Inside the quotes a backslash is
// written as four backslashes and a double quote as \"; when quoteApostrophes
// is set, single quotes are doubled as well so the literal can be placed
// between single quotes in SQL text. Leave it unset for bound parameters.
//
// Other elements are written bare unless their text would be ambiguous in the
// literal, in which case they are quoted the same way.
func Encode(v []any, elem ElementEncoder, quoteApostrophes bool) (string, error) {
	if elem == nil {
		elem = func(value any) ([]byte, error) { return []byte(fmt.Sprint(value)), nil }
	}
	var b strings.Builder
	if err := encodeArray(&b, v, elem, quoteApostrophes); err != nil {
		return "", err
	}
	return b.String(), nil
}

// QuoteLiteral returns v as a single-quoted SQL literal, ready to be spliced
// into a statement.
func QuoteLiteral(v []any, elem ElementEncoder) (string, error) {
	s, err := Encode(v, elem, true)
	if err != nil {
		return "", err
	}
	return "'" + s + "'", nil
}

func encodeArray(b *strings.Builder, v []any, elem ElementEncoder, quoteApostrophes bool) error {
	b.WriteByte('{')
	var subArrays bool
	for i, item := range v {
		_, nested := asSlice(item)
		nested = nested && !isNil(item)
		if i == 0 {
			subArrays = nested
		} else if nested != subArrays {
			return ErrMixedDimensions
		}
		if i > 0 {
			b.WriteByte(',')
		}
		if err := encodeElement(b, item, elem, quoteApostrophes); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func encodeElement(b *strings.Builder, item any, elem ElementEncoder, quoteApostrophes bool) error {
	if isNil(item) {
		b.WriteString("NULL")
		return nil
	}
	if nested, ok := asSlice(item); ok {
		return encodeArray(b, nested, elem, quoteApostrophes)
	}

	text, err := elem(item)
	if err != nil {
		return fmt.Errorf("failed to encode array element %v: %w", item, err)
	}
	if text == nil {
		b.WriteString("NULL")
		return nil
	}

	s := string(text)
	if reflect.ValueOf(item).Kind() == reflect.String || needsQuoting(s) {
		b.WriteString(quoteElement(s, quoteApostrophes))
		return nil
	}
	b.WriteString(s)
	return nil
}

func quoteElement(s string, quoteApostrophes bool) string {
	// The server unescapes the statement literal and then the array element,
	// hence four backslashes per backslash.
	s = strings.ReplaceAll(s, `\`, `\\\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	if quoteApostrophes {
		s = strings.ReplaceAll(s, `'`, `''`)
	}
	return `"` + s + `"`
}

func needsQuoting(s string) bool {
	if s == "" || strings.EqualFold(s, "NULL") {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{', '}', ',', '"', '\\', '\'':
			return true
		}
		if isSpace(s[i]) {
			return true
		}
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
