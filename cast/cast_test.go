package cast

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/pgschema/pgpostgis/array"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// POINT(1 2) with SRID 4326, as PostGIS prints it.
const pointHex = "0101000020E6100000000000000000F03F0000000000000040"

func TestKindOf(t *testing.T) {
	tests := []struct {
		sqlType  string
		expected Kind
		known    bool
	}{
		{"integer", KindInteger, true},
		{"BIGINT", KindInteger, true},
		{"int4[]", KindInteger, true},
		{"double precision", KindFloat, true},
		{"numeric(10,2)", KindNumeric, true},
		{"boolean", KindBoolean, true},
		{"character varying(255)", KindText, true},
		{"geometry(Point,4326)", KindGeometry, true},
		{"public.geography", KindGeometry, true},
		{"uuid[]", KindUUID, true},
		{"hstore", KindText, false},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			kind, known := KindOf(tt.sqlType)
			if kind != tt.expected || known != tt.known {
				t.Errorf("KindOf(%q) = %v, %v; want %v, %v", tt.sqlType, kind, known, tt.expected, tt.known)
			}
		})
	}
}

func TestDecoders(t *testing.T) {
	tests := []struct {
		name     string
		sqlType  string
		literal  string
		expected []any
	}{
		{"integers", "integer", "{1,-2,NULL}", []any{int64(1), int64(-2), nil}},
		{"floats", "float8", "{1.5,NaN,-Infinity}", []any{1.5, math.NaN(), math.Inf(-1)}},
		{"booleans", "boolean", "{t,f,NULL}", []any{true, false, nil}},
		{"text", "text", `{"a b",c}`, []any{"a b", "c"}},
	}

	opts := cmp.Comparer(func(a, b float64) bool {
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, _ := For(tt.sqlType)
			result, err := array.Decode(nil, tt.literal, dec)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, result, opts); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNumericRoundTrip(t *testing.T) {
	dec, enc := For("numeric(12,4)")
	values := []any{decimal.RequireFromString("12.3400"), nil, decimal.RequireFromString("-0.0001")}

	literal, err := array.Encode(values, enc, false)
	require.NoError(t, err)
	require.Equal(t, "{12.34,NULL,-0.0001}", literal)

	decoded, err := array.Decode(nil, literal, dec)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	require.True(t, decoded[0].(decimal.Decimal).Equal(decimal.RequireFromString("12.34")))
	require.Nil(t, decoded[1])
	require.True(t, decoded[2].(decimal.Decimal).Equal(decimal.RequireFromString("-0.0001")))
}

func TestEncoders(t *testing.T) {
	n := int64(9)
	var nilPtr *int64
	tests := []struct {
		name     string
		kind     Kind
		values   []any
		expected string
	}{
		{"integers", KindInteger, []any{1, int32(2), uint8(3), &n, nilPtr, 4.0}, "{1,2,3,9,NULL,4}"},
		{"floats", KindFloat, []any{1.5, float32(0.25), math.Inf(1), 2}, "{1.5,0.25,Infinity,2}"},
		{"booleans", KindBoolean, []any{true, false, "yes", nil}, `{t,f,"t",NULL}`},
		{"text", KindText, []any{"a", []byte("b"), 7}, `{"a",b,7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := array.Encode(tt.values, Encoder(tt.kind), false)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestEncoderErrors(t *testing.T) {
	_, err := EncodeInteger(1.5)
	require.Error(t, err)
	_, err = EncodeInteger(struct{}{})
	require.Error(t, err)
	_, err = EncodeBoolean("maybe")
	require.Error(t, err)
	_, err = EncodeGeometry(42)
	require.Error(t, err)
	_, err = DecodeBoolean("maybe")
	require.Error(t, err)
}

func TestGeometry(t *testing.T) {
	dec, enc := For("geometry(Point,4326)")

	decoded, err := array.Decode(nil, "{"+pointHex+",NULL}", dec)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Nil(t, decoded[1])

	point, ok := decoded[0].(*geom.Point)
	require.True(t, ok, "expected *geom.Point, got %T", decoded[0])
	require.Equal(t, 4326, point.SRID())
	require.Equal(t, []float64{1, 2}, []float64(point.Coords()))

	literal, err := array.Encode(decoded, enc, false)
	require.NoError(t, err)

	again, err := array.Decode(nil, literal, dec)
	require.NoError(t, err)
	roundTripped := again[0].(*geom.Point)
	require.Equal(t, point.SRID(), roundTripped.SRID())
	require.Equal(t, []float64(point.Coords()), []float64(roundTripped.Coords()))
	require.Nil(t, again[1])
}

func TestGeometryInvalid(t *testing.T) {
	_, err := DecodeGeometry("not-hex")
	require.Error(t, err)
}

func TestGeometryPassThroughText(t *testing.T) {
	literal, err := array.Encode([]any{"SRID=4326;POINT(1 2)"}, EncodeGeometry, false)
	require.NoError(t, err)
	require.Equal(t, `{"SRID=4326;POINT(1 2)"}`, literal)
}

func TestUUID(t *testing.T) {
	id := uuid.MustParse("a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11")
	dec, enc := For("uuid[]")

	decoded, err := array.Decode(nil, "{A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11,NULL}", dec)
	require.NoError(t, err)
	require.Equal(t, []any{id, nil}, decoded)

	encoded, err := array.Encode([]any{id, [16]byte(id), id.String(), nil}, enc, false)
	require.NoError(t, err)
	require.Equal(t, `{a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11,a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11,"a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11",NULL}`, encoded)

	_, err = EncodeUUID("not-a-uuid")
	require.Error(t, err)
	_, err = DecodeUUID("{}")
	require.Error(t, err)
}
