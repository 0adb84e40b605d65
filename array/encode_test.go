package array

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func intEncoder(value any) ([]byte, error) {
	switch v := value.(type) {
	case int:
		return []byte(strconv.Itoa(v)), nil
	case int64:
		return []byte(strconv.FormatInt(v, 10)), nil
	}
	return nil, fmt.Errorf("unexpected %T", value)
}

func textEncoder(value any) ([]byte, error) {
	return []byte(fmt.Sprint(value)), nil
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name             string
		input            []any
		elem             ElementEncoder
		quoteApostrophes bool
		expected         string
	}{
		{"empty", []any{}, intEncoder, false, "{}"},
		{"nulls", []any{nil, 1, nil}, intEncoder, false, "{NULL,1,NULL}"},
		{"nested", []any{[]any{1, 2}, []any{3, 4}}, intEncoder, false, "{{1,2},{3,4}}"},
		{"typed nested slices", []any{[]int{1, 2}, []int{3}}, intEncoder, false, "{{1,2},{3}}"},
		{"strings are quoted", []any{"a", "b c"}, textEncoder, false, `{"a","b c"}`},
		{"quote and backslash", []any{`a"b\c`}, textEncoder, false, `{"a\"b\\\\c"}`},
		{"null word as text", []any{"NULL"}, textEncoder, false, `{"NULL"}`},
		{"empty string", []any{""}, textEncoder, false, `{""}`},
		{"apostrophes kept for bound parameters", []any{"it's"}, textEncoder, false, `{"it's"}`},
		{"apostrophes doubled for statements", []any{"it's"}, textEncoder, true, `{"it''s"}`},
		{"non-string needing quotes", []any{point{1, 2}}, textEncoder, false, `{"POINT(1 2)"}`},
		{"non-string bare", []any{true, false}, textEncoder, false, "{true,false}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Encode(tt.input, tt.elem, tt.quoteApostrophes)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Encode() = %s; want %s", result, tt.expected)
			}
		})
	}
}

type point struct{ x, y int }

func (p point) String() string {
	return fmt.Sprintf("POINT(%d %d)", p.x, p.y)
}

func TestEncode_NilFromEncoder(t *testing.T) {
	skip := func(value any) ([]byte, error) {
		if value == 0 {
			return nil, nil
		}
		return intEncoder(value)
	}
	result, err := Encode([]any{0, 5}, skip, false)
	require.NoError(t, err)
	require.Equal(t, "{NULL,5}", result)
}

func TestEncode_EncoderError(t *testing.T) {
	_, err := Encode([]any{1, "x"}, intEncoder, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to encode array element x")
}

func TestEncode_MixedDimensions(t *testing.T) {
	for _, v := range [][]any{
		{[]any{1, 2}, 3},
		{1, []int{2}},
		{nil, []any{1}},
	} {
		_, err := Encode(v, intEncoder, false)
		require.ErrorIs(t, err, ErrMixedDimensions, "Encode(%v)", v)
	}
}

func TestQuoteLiteral(t *testing.T) {
	result, err := QuoteLiteral([]any{"O'Brien", nil}, textEncoder)
	require.NoError(t, err)
	require.Equal(t, `'{"O''Brien",NULL}'`, result)
}

func TestRoundTrip(t *testing.T) {
	integers := [][]any{
		{},
		{int64(1)},
		{nil, int64(1), nil},
		{int64(-5), int64(0), int64(9223372036854775807)},
		{[]any{int64(1), int64(2)}, []any{int64(3), nil}},
		{[]any{[]any{int64(1)}, []any{nil}}, []any{[]any{int64(2)}, []any{int64(3)}}},
	}
	for i, v := range integers {
		t.Run(fmt.Sprintf("integers/%d", i), func(t *testing.T) {
			encoded, err := Encode(v, intEncoder, false)
			require.NoError(t, err)
			decoded, err := Decode(nil, encoded, intDecoder)
			require.NoError(t, err)
			if diff := cmp.Diff(v, decoded); diff != "" {
				t.Errorf("round trip of %s mismatch (-want +got):\n%s", encoded, diff)
			}
		})
	}

	texts := [][]any{
		{""},
		{"NULL", nil},
		{`a"b\c`},
		{`\\`, `"`, `\"`},
		{"{}", "a,b", " padded ", "tab\there"},
		{"it's", "ünïcødé"},
		{[]any{[]any{"x"}, []any{"y", nil}}, []any{[]any{`\`}}},
	}
	for i, v := range texts {
		t.Run(fmt.Sprintf("texts/%d", i), func(t *testing.T) {
			encoded, err := Encode(v, textEncoder, false)
			require.NoError(t, err)
			decoded, err := Decode(nil, encoded, textDecoder)
			require.NoError(t, err)
			if diff := cmp.Diff(v, decoded); diff != "" {
				t.Errorf("round trip of %s mismatch (-want +got):\n%s", encoded, diff)
			}
		})
	}
}
