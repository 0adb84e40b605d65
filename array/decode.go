// Package array converts between PostgreSQL array literals and Go slices.
//
// Decoded arrays are []any values whose elements are nil (SQL NULL), the
// value returned by the caller's ElementDecoder, or a nested []any for
// multi-dimensional arrays.
package array

import (
	"fmt"
	"reflect"
	"strings"
)

// ElementDecoder casts one unquoted array element to its Go value.
type ElementDecoder func(token string) (any, error)

// Decode parses an array literal such as {1,NULL,"a b"} into a []any,
// applying elem to every non-NULL leaf. Values that are already slices are
// returned without parsing, so Decode is safe to call on values that were
// materialized earlier. A nil value decodes to nil.
//
// A nil elem keeps leaves as strings.
func Decode(c *Context, value any, elem ElementDecoder) ([]any, error) {
	var src string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	case string:
		src = v
	case []byte:
		src = string(v)
	default:
		if s, ok := asSlice(value); ok {
			return s, nil
		}
		return nil, fmt.Errorf("cannot decode %T as an array", value)
	}

	if elem == nil {
		elem = func(token string) (any, error) { return token, nil }
	}

	p := &parser{src: src, ctx: c, quoting: c.Quoting(), elem: elem}
	return p.parse()
}

type parser struct {
	src     string
	pos     int
	ctx     *Context
	quoting Quoting
	elem    ElementDecoder
}

func (p *parser) parse() ([]any, error) {
	p.skipSpace()
	if p.peek() == '[' {
		if err := p.skipDimensions(); err != nil {
			return nil, err
		}
	}

	if p.peek() != '{' {
		return nil, p.malformed("expected '{'")
	}
	p.pos++

	result, err := p.parseArray()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.malformed("unexpected trailing data")
	}
	return result, nil
}

// parseArray reads the elements following an opening brace up to and
// including the matching closing brace. Siblings must all be sub-arrays or
// all be scalars.
func (p *parser) parseArray() ([]any, error) {
	elems := []any{}

	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return elems, nil
	}

	var subArrays bool
	for i := 0; ; i++ {
		p.skipSpace()
		if p.eof() {
			return nil, p.malformed("unbalanced braces")
		}

		start := p.pos
		var (
			value  any
			quoted string
			nested = p.src[p.pos] == '{'
			err    error
		)
		if i == 0 {
			subArrays = nested
		} else if nested != subArrays {
			return nil, p.malformed("sub-arrays mixed with scalar elements")
		}
		switch p.src[p.pos] {
		case '{':
			p.pos++
			value, err = p.parseArray()
		case '"':
			p.pos++
			quoted, err = p.parseQuoted()
		case ',', '}':
			return nil, p.malformed("missing array element")
		default:
			value, err = p.parseBare()
		}
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if p.eof() {
			return nil, p.malformed("unbalanced braces")
		}
		delim := p.src[p.pos]
		if delim != ',' && delim != '}' {
			return nil, p.malformed("expected ',' or '}'")
		}
		// Quoted elements are only decoded once the closing quote is known to
		// end the element.
		if p.src[start] == '"' {
			if value, err = p.leaf(quoted); err != nil {
				return nil, err
			}
		}
		elems = append(elems, value)

		p.pos++
		if delim == '}' {
			return elems, nil
		}
	}
}

func (p *parser) parseBare() (any, error) {
	var b strings.Builder
	// Escaped characters are never trimmed.
	kept := 0
	for {
		if p.eof() {
			return nil, p.malformed("unbalanced braces")
		}
		c := p.src[p.pos]
		switch c {
		case ',', '}':
			s := b.String()
			token := s[:kept] + strings.TrimRight(s[kept:], " \t\n\r\v\f")
			if kept == 0 && strings.EqualFold(token, "NULL") {
				return nil, nil
			}
			return p.leaf(token)
		case '"', '{':
			return nil, p.malformed("unexpected quote or brace inside element")
		case '\\':
			p.pos++
			if p.eof() {
				return nil, p.malformed("unterminated escape")
			}
			b.WriteByte(p.src[p.pos])
			p.pos++
			kept = b.Len()
			continue
		}
		b.WriteByte(c)
		p.pos++
	}
}

func (p *parser) parseQuoted() (string, error) {
	var b strings.Builder
	for {
		if p.eof() {
			return "", p.malformed("unterminated quoted element")
		}
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			if p.quoting == StatementQuoting && strings.HasPrefix(p.src[p.pos:], `\\\\`) {
				b.WriteByte('\\')
				p.pos += 4
				continue
			}
			p.pos++
			if p.eof() {
				return "", p.malformed("unterminated quoted element")
			}
			c = p.src[p.pos]
		}
		b.WriteByte(c)
		p.pos++
	}
}

// leaf applies the element decoder and, for text results, the encoding
// normalization of the context.
func (p *parser) leaf(token string) (any, error) {
	value, err := p.elem(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode array element %q: %w", token, err)
	}
	if s, ok := value.(string); ok {
		return p.ctx.normalize(s)
	}
	return value, nil
}

// skipDimensions consumes an explicit bounds decoration such as [1:3][0:1]=.
func (p *parser) skipDimensions() error {
	for p.peek() == '[' {
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return p.malformed("unterminated dimension")
		}
		bounds := p.src[p.pos+1 : p.pos+end]
		lower, upper, found := strings.Cut(bounds, ":")
		if !found || !isInteger(lower) || !isInteger(upper) {
			return p.malformed("invalid dimension " + bounds)
		}
		p.pos += end + 1
	}
	if p.peek() != '=' {
		return p.malformed("expected '=' after dimensions")
	}
	p.pos++
	p.skipSpace()
	return nil
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) malformed(reason string) error {
	return &MalformedLiteralError{Input: p.src, Pos: p.pos, Reason: reason}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// asSlice converts any slice other than []byte into []any.
func asSlice(value any) ([]any, bool) {
	if s, ok := value.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
