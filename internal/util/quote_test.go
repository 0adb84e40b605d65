package util

import "testing"

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"geom", "geom"},
		{"lastName", `"lastName"`},
		{"order", `"order"`},
		{"2fa", `"2fa"`},
		{"with space", `"with space"`},
		{`say"hi`, `"say""hi"`},
		{"price$", "price$"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := QuoteIdentifier(tt.input); got != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %s; want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestQualifiedName(t *testing.T) {
	if got := QualifiedName("Roads", "roads_geom"); got != `"Roads".roads_geom` {
		t.Errorf("QualifiedName() = %s", got)
	}
}
