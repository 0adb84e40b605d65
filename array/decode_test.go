package array

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intDecoder(token string) (any, error) {
	return strconv.ParseInt(token, 10, 64)
}

func textDecoder(token string) (any, error) {
	return token, nil
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		elem     ElementDecoder
		expected []any
	}{
		{"empty", "{}", intDecoder, []any{}},
		{"integers", "{1,2,3}", intDecoder, []any{int64(1), int64(2), int64(3)}},
		{"nulls", "{NULL,1,NULL}", intDecoder, []any{nil, int64(1), nil}},
		{"lower case null", "{null,Null}", textDecoder, []any{nil, nil}},
		{"quoted null is text", `{"NULL"}`, textDecoder, []any{"NULL"}},
		{"empty string", `{""}`, textDecoder, []any{""}},
		{"nested", "{{1,2},{3,4}}", intDecoder, []any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}}},
		{"three levels", "{{{1},{2}},{{3},{NULL}}}", intDecoder, []any{
			[]any{[]any{int64(1)}, []any{int64(2)}},
			[]any{[]any{int64(3)}, []any{nil}},
		}},
		{"delimiters inside quotes", `{"a,b","{c}","d e"}`, textDecoder, []any{"a,b", "{c}", "d e"}},
		{"escaped quote", `{"He said, \"Hello.\""}`, textDecoder, []any{`He said, "Hello."`}},
		{"whitespace around elements", "{ 1 , 2 }", intDecoder, []any{int64(1), int64(2)}},
		{"bare token with inner space", "{a b,c}", textDecoder, []any{"a b", "c"}},
		{"escaped trailing space is kept", `{a\ ,b\  }`, textDecoder, []any{"a ", "b "}},
		{"escaped null is text", `{\NULL}`, textDecoder, []any{"NULL"}},
		{"explicit dimensions", "[0:1]={7,8}", intDecoder, []any{int64(7), int64(8)}},
		{"utf8 passthrough", `{"żółw",ünï}`, textDecoder, []any{"żółw", "ünï"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(nil, tt.input, tt.elem)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Decode(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestDecode_Backslashes(t *testing.T) {
	tests := []struct {
		name     string
		quoting  Quoting
		input    string
		expected string
	}{
		{"statement quadruple", StatementQuoting, `{"a\"b\\\\c"}`, `a"b\c`},
		{"statement two escaped backslashes", StatementQuoting, `{"x\\\\\\\\y"}`, `x\\y`},
		{"statement server style", StatementQuoting, `{"a\\b"}`, `a\b`},
		{"server double", ServerQuoting, `{"a\\b"}`, `a\b`},
		{"server quadruple", ServerQuoting, `{"a\\\\b"}`, `a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := NewContext("UTF8", tt.quoting)
			if err != nil {
				t.Fatalf("NewContext failed: %v", err)
			}
			result, err := Decode(ctx, tt.input, textDecoder)
			if err != nil {
				t.Fatalf("Decode(%q) failed: %v", tt.input, err)
			}
			if diff := cmp.Diff([]any{tt.expected}, result); diff != "" {
				t.Errorf("Decode(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	inputs := []string{
		"{1,2",
		"{{1,2}",
		"{1,2}}",
		`{"abc}`,
		`{ab"c"}`,
		"1,2}",
		"",
		"{1,,2}",
		"{1 2 {3}}",
		"[1:2{1,2}",
		`{"a"b}`,
		"{{1,2},3}",
		"{1,{2}}",
		"{NULL,{1}}",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Decode(nil, input, intDecoder)
			if err == nil {
				t.Fatalf("Decode(%q) expected an error", input)
			}
			if !errors.Is(err, ErrMalformedArrayLiteral) {
				t.Errorf("Decode(%q) error %v does not match ErrMalformedArrayLiteral", input, err)
			}
			var malformed *MalformedLiteralError
			if !errors.As(err, &malformed) {
				t.Errorf("Decode(%q) error %T is not a *MalformedLiteralError", input, err)
			}
		})
	}
}

func TestDecode_PassThrough(t *testing.T) {
	already := []any{int64(1), nil}
	result, err := Decode(nil, already, intDecoder)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff(already, result); diff != "" {
		t.Errorf("pass-through mismatch (-want +got):\n%s", diff)
	}

	typed, err := Decode(nil, []string{"a", "b"}, textDecoder)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b"}, typed); diff != "" {
		t.Errorf("typed slice mismatch (-want +got):\n%s", diff)
	}

	nilResult, err := Decode(nil, nil, intDecoder)
	if err != nil || nilResult != nil {
		t.Errorf("Decode(nil) = %v, %v; want nil, nil", nilResult, err)
	}

	if _, err := Decode(nil, 42, intDecoder); err == nil {
		t.Error("Decode(42) expected an error")
	}
}

func TestDecode_ElementError(t *testing.T) {
	_, err := Decode(nil, "{1,x}", intDecoder)
	if err == nil {
		t.Fatal("expected element decoder error")
	}
	if errors.Is(err, ErrMalformedArrayLiteral) {
		t.Errorf("element errors should not be reported as malformed literals: %v", err)
	}
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Errorf("expected the decoder error to be wrapped, got %v", err)
	}
}

func TestDecode_Bytes(t *testing.T) {
	result, err := Decode(nil, []byte("{a,b}"), nil)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b"}, result); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
