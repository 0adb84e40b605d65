// Package cast provides element decoders and encoders for the PostgreSQL
// types commonly stored in array columns, including PostGIS geometry and
// geography.
package cast

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pgschema/pgpostgis/array"
	"github.com/pgschema/pgpostgis/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

// Kind groups SQL element types that share a Go representation.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindNumeric
	KindBoolean
	KindGeometry
	KindUUID
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindGeometry:
		return "geometry"
	case KindUUID:
		return "uuid"
	default:
		return "text"
	}
}

var kinds = map[string]Kind{
	"smallint":          KindInteger,
	"integer":           KindInteger,
	"int":               KindInteger,
	"bigint":            KindInteger,
	"int2":              KindInteger,
	"int4":              KindInteger,
	"int8":              KindInteger,
	"oid":               KindInteger,
	"real":              KindFloat,
	"double precision":  KindFloat,
	"float4":            KindFloat,
	"float8":            KindFloat,
	"numeric":           KindNumeric,
	"decimal":           KindNumeric,
	"boolean":           KindBoolean,
	"bool":              KindBoolean,
	"text":              KindText,
	"varchar":           KindText,
	"character varying": KindText,
	"char":              KindText,
	"character":         KindText,
	"bpchar":            KindText,
	"name":              KindText,
	"citext":            KindText,
	"cidr":              KindText,
	"inet":              KindText,
	"uuid":              KindUUID,
	"geometry":          KindGeometry,
	"geography":         KindGeometry,
}

// KindOf classifies an element type name such as "character varying(20)" or
// "geometry(Point,4326)". The second result is false for unknown types,
// which are treated as text.
func KindOf(sqlType string) (Kind, bool) {
	name := strings.ToLower(strings.TrimSpace(sqlType))
	name = strings.TrimSuffix(name, "[]")
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimPrefix(name, "public.")
	k, ok := kinds[name]
	return k, ok
}

// For returns the element casts for sqlType. Unknown types fall back to text.
func For(sqlType string) (array.ElementDecoder, array.ElementEncoder) {
	kind, ok := KindOf(sqlType)
	if !ok {
		logger.Get().Debug("No element cast for type, using text", "type", sqlType)
	}
	return Decoder(kind), Encoder(kind)
}

// Decoder returns the element decoder for kind.
func Decoder(kind Kind) array.ElementDecoder {
	switch kind {
	case KindInteger:
		return DecodeInteger
	case KindFloat:
		return DecodeFloat
	case KindNumeric:
		return DecodeNumeric
	case KindBoolean:
		return DecodeBoolean
	case KindGeometry:
		return DecodeGeometry
	case KindUUID:
		return DecodeUUID
	default:
		return DecodeText
	}
}

// Encoder returns the element encoder for kind.
func Encoder(kind Kind) array.ElementEncoder {
	switch kind {
	case KindInteger:
		return EncodeInteger
	case KindFloat:
		return EncodeFloat
	case KindNumeric:
		return EncodeNumeric
	case KindBoolean:
		return EncodeBoolean
	case KindGeometry:
		return EncodeGeometry
	case KindUUID:
		return EncodeUUID
	default:
		return EncodeText
	}
}

func DecodeText(token string) (any, error) {
	return token, nil
}

func DecodeInteger(token string) (any, error) {
	return strconv.ParseInt(strings.TrimSpace(token), 10, 64)
}

func DecodeFloat(token string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(token), 64)
}

func DecodeNumeric(token string) (any, error) {
	return decimal.NewFromString(strings.TrimSpace(token))
}

func DecodeBoolean(token string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "t", "true", "y", "yes", "on", "1":
		return true, nil
	case "f", "false", "n", "no", "off", "0":
		return false, nil
	}
	return nil, fmt.Errorf("invalid boolean %q", token)
}

// DecodeGeometry reads hex-encoded EWKB, the text output of PostGIS
// geometry and geography values.
func DecodeGeometry(token string) (any, error) {
	g, err := ewkbhex.Decode(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	return g, nil
}

func DecodeUUID(token string) (any, error) {
	return uuid.Parse(strings.TrimSpace(token))
}

func EncodeText(value any) ([]byte, error) {
	switch v := deref(value).(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return []byte(fmt.Sprint(v)), nil
	}
}

func EncodeInteger(value any) ([]byte, error) {
	v := deref(value)
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(nil, rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(nil, rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
		return strconv.AppendInt(nil, int64(f), 10), nil
	case reflect.String:
		n, err := strconv.ParseInt(strings.TrimSpace(rv.String()), 10, 64)
		if err != nil {
			return nil, err
		}
		return strconv.AppendInt(nil, n, 10), nil
	}
	return nil, fmt.Errorf("cannot encode %T as integer", value)
}

func EncodeFloat(value any) ([]byte, error) {
	v := deref(value)
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32:
		return formatFloat(rv.Float(), 32), nil
	case reflect.Float64:
		return formatFloat(rv.Float(), 64), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(nil, rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(nil, rv.Uint(), 10), nil
	}
	return nil, fmt.Errorf("cannot encode %T as float", value)
}

func formatFloat(f float64, bits int) []byte {
	switch {
	case math.IsNaN(f):
		return []byte("NaN")
	case math.IsInf(f, 1):
		return []byte("Infinity")
	case math.IsInf(f, -1):
		return []byte("-Infinity")
	}
	return strconv.AppendFloat(nil, f, 'g', -1, bits)
}

func EncodeNumeric(value any) ([]byte, error) {
	switch v := deref(value).(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return []byte(v.String()), nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, err
		}
		return []byte(d.String()), nil
	case float64:
		return []byte(decimal.NewFromFloat(v).String()), nil
	case float32:
		return []byte(decimal.NewFromFloat32(v).String()), nil
	}
	return EncodeInteger(value)
}

func EncodeBoolean(value any) ([]byte, error) {
	switch v := deref(value).(type) {
	case nil:
		return nil, nil
	case bool:
		if v {
			return []byte("t"), nil
		}
		return []byte("f"), nil
	case string:
		b, err := DecodeBoolean(v)
		if err != nil {
			return nil, err
		}
		return EncodeBoolean(b)
	}
	return nil, fmt.Errorf("cannot encode %T as boolean", value)
}

// EncodeGeometry writes geometries as little-endian hex EWKB. Strings are
// passed through so callers can supply WKT or EWKT directly.
func EncodeGeometry(value any) ([]byte, error) {
	switch v := deref(value).(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case geom.T:
		s, err := ewkbhex.Encode(v, binary.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("failed to encode geometry: %w", err)
		}
		return []byte(s), nil
	}
	return nil, fmt.Errorf("cannot encode %T as geometry", value)
}

// EncodeUUID writes the canonical hyphenated form. Strings are validated.
func EncodeUUID(value any) ([]byte, error) {
	switch v := deref(value).(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return []byte(v.String()), nil
	case [16]byte:
		return []byte(uuid.UUID(v).String()), nil
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		return []byte(u.String()), nil
	}
	return nil, fmt.Errorf("cannot encode %T as uuid", value)
}

// deref follows pointers so *int64 and int64 encode alike. A nil pointer
// yields nil.
func deref(value any) any {
	if g, ok := value.(geom.T); ok {
		if reflect.ValueOf(g).IsNil() {
			return nil
		}
		return g
	}
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
