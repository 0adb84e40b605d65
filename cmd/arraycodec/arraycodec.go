// Package arraycodec exposes the array literal codec on the command line so
// literals can be inspected without a database.
package arraycodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/pgschema/pgpostgis/array"
	"github.com/pgschema/pgpostgis/cast"
)

var (
	decodeType    string
	encoding      string
	serverQuoting bool

	encodeType string
	statement  bool
)

var DecodeCmd = &cobra.Command{
	Use:   "decode LITERAL",
	Short: "Decode an array literal to JSON",
	Long:  "Decode a PostgreSQL array literal such as '{1,NULL,{2,3}}' and print its elements as JSON. Geometry elements are printed as GeoJSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quoting := array.StatementQuoting
		if serverQuoting {
			quoting = array.ServerQuoting
		}
		c, err := array.NewContext(encoding, quoting)
		if err != nil {
			return err
		}
		return Decode(cmd.OutOrStdout(), c, decodeType, args[0])
	},
}

var EncodeCmd = &cobra.Command{
	Use:   "encode JSON",
	Short: "Encode a JSON array as an array literal",
	Long:  "Encode a JSON array such as '[1,null,[2,3]]' as a PostgreSQL array literal. Geometry elements may be hex EWKB strings or GeoJSON objects.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Encode(cmd.OutOrStdout(), encodeType, args[0], statement)
	},
}

func init() {
	DecodeCmd.Flags().StringVar(&decodeType, "type", "text", "Element SQL type")
	DecodeCmd.Flags().StringVar(&encoding, "encoding", "UTF8", "Server encoding of text elements")
	DecodeCmd.Flags().BoolVar(&serverQuoting, "server-quoting", false, "Treat input as server output, where \\\\ is a single backslash")

	EncodeCmd.Flags().StringVar(&encodeType, "type", "text", "Element SQL type")
	EncodeCmd.Flags().BoolVar(&statement, "statement", false, "Print a quoted SQL string literal ready for a statement")
}

// Decode decodes literal with the casts for sqlType and writes it as JSON.
func Decode(w io.Writer, c *array.Context, sqlType, literal string) error {
	decode, _ := cast.For(sqlType)
	values, err := array.Decode(c, literal, decode)
	if err != nil {
		return err
	}
	out, err := toJSON(values)
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(out)
}

// Encode reads a JSON array and writes the array literal for sqlType.
func Encode(w io.Writer, sqlType, input string, asStatement bool) error {
	dec := json.NewDecoder(bytes.NewBufferString(input))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("input must be a JSON array: %w", err)
	}

	kind, _ := cast.KindOf(sqlType)
	values, err := fromJSON(raw, kind)
	if err != nil {
		return err
	}

	_, encode := cast.For(sqlType)
	var literal string
	if asStatement {
		literal, err = array.QuoteLiteral(values, encode)
	} else {
		literal, err = array.Encode(values, encode, false)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, literal)
	return err
}

// toJSON replaces geometries with GeoJSON so decoded values print readably.
func toJSON(values []any) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case []any:
			nested, err := toJSON(v)
			if err != nil {
				return nil, err
			}
			out[i] = nested
		case geom.T:
			g, err := geojson.Encode(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode geometry: %w", err)
			}
			out[i] = g
		default:
			out[i] = v
		}
	}
	return out, nil
}

// fromJSON converts decoded JSON into values the element encoders accept.
func fromJSON(values []any, kind cast.Kind) ([]any, error) {
	out := make([]any, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case []any:
			nested, err := fromJSON(v, kind)
			if err != nil {
				return nil, err
			}
			out[i] = nested
		case json.Number:
			if kind == cast.KindNumeric {
				out[i] = v.String()
			} else if n, err := v.Int64(); err == nil {
				out[i] = n
			} else if f, err := v.Float64(); err == nil {
				out[i] = f
			} else {
				return nil, fmt.Errorf("invalid number %s: %w", v, err)
			}
		case map[string]any:
			if kind != cast.KindGeometry {
				return nil, fmt.Errorf("objects are only accepted for geometry elements")
			}
			data, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			var g geom.T
			if err := geojson.Unmarshal(data, &g); err != nil {
				return nil, fmt.Errorf("invalid GeoJSON geometry: %w", err)
			}
			out[i] = g
		default:
			out[i] = v
		}
	}
	return out, nil
}
