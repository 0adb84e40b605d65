package array

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Quoting selects how backslashes inside quoted elements are read by Decode.
type Quoting int

const (
	// StatementQuoting reads literals produced by Encode: four backslashes
	// stand for one.
	StatementQuoting Quoting = iota
	// ServerQuoting reads literals as the server prints them: a backslash
	// escapes the next character.
	ServerQuoting
)

func (q Quoting) String() string {
	switch q {
	case ServerQuoting:
		return "server"
	default:
		return "statement"
	}
}

// serverEncodings maps PostgreSQL server encoding names to their decoders.
// A nil entry means the bytes are already UTF-8 (or opaque, for SQL_ASCII).
var serverEncodings = map[string]encoding.Encoding{
	"UTF8":       nil,
	"SQL_ASCII":  nil,
	"LATIN1":     charmap.ISO8859_1,
	"LATIN2":     charmap.ISO8859_2,
	"LATIN3":     charmap.ISO8859_3,
	"LATIN4":     charmap.ISO8859_4,
	"LATIN5":     charmap.ISO8859_9,
	"LATIN6":     charmap.ISO8859_10,
	"LATIN7":     charmap.ISO8859_13,
	"LATIN8":     charmap.ISO8859_14,
	"LATIN9":     charmap.ISO8859_15,
	"LATIN10":    charmap.ISO8859_16,
	"ISO_8859_5": charmap.ISO8859_5,
	"ISO_8859_6": charmap.ISO8859_6,
	"ISO_8859_7": charmap.ISO8859_7,
	"ISO_8859_8": charmap.ISO8859_8,
	"WIN866":     charmap.CodePage866,
	"WIN874":     charmap.Windows874,
	"WIN1250":    charmap.Windows1250,
	"WIN1251":    charmap.Windows1251,
	"WIN1252":    charmap.Windows1252,
	"WIN1253":    charmap.Windows1253,
	"WIN1254":    charmap.Windows1254,
	"WIN1255":    charmap.Windows1255,
	"WIN1256":    charmap.Windows1256,
	"WIN1257":    charmap.Windows1257,
	"WIN1258":    charmap.Windows1258,
	"KOI8R":      charmap.KOI8R,
	"KOI8U":      charmap.KOI8U,
	"EUC_JP":     japanese.EUCJP,
	"SJIS":       japanese.ShiftJIS,
	"EUC_KR":     korean.EUCKR,
	"EUC_CN":     simplifiedchinese.GBK,
	"GBK":        simplifiedchinese.GBK,
	"GB18030":    simplifiedchinese.GB18030,
	"BIG5":       traditionalchinese.Big5,
}

// Context carries the per-connection settings Decode needs. It is resolved
// once by NewContext and never changes afterwards, so a single Context can be
// shared by every goroutine using the same connection.
//
// A nil *Context decodes as UTF8 with StatementQuoting.
type Context struct {
	encodingName string
	enc          encoding.Encoding
	quoting      Quoting
}

// NewContext resolves serverEncoding (a PostgreSQL encoding name such as
// "UTF8" or "LATIN1", as reported by SHOW server_encoding). An empty name is
// treated as UTF8.
func NewContext(serverEncoding string, quoting Quoting) (*Context, error) {
	name := strings.ToUpper(strings.TrimSpace(serverEncoding))
	if name == "" || name == "UTF-8" {
		name = "UTF8"
	}

	enc, ok := serverEncodings[name]
	if !ok {
		// Fall back to IANA names for encodings PostgreSQL spells the same way.
		ianaEnc, err := ianaindex.IANA.Encoding(serverEncoding)
		if err != nil || ianaEnc == nil {
			return nil, fmt.Errorf("unsupported server encoding %q", serverEncoding)
		}
		enc = ianaEnc
	}

	return &Context{encodingName: name, enc: enc, quoting: quoting}, nil
}

// Encoding returns the normalized server encoding name.
func (c *Context) Encoding() string {
	if c == nil {
		return "UTF8"
	}
	return c.encodingName
}

// Quoting returns the backslash convention used when decoding.
func (c *Context) Quoting() Quoting {
	if c == nil {
		return StatementQuoting
	}
	return c.quoting
}

// normalize transcodes a text leaf from the server encoding to UTF-8.
func (c *Context) normalize(s string) (string, error) {
	if c == nil || c.enc == nil {
		return s, nil
	}
	out, err := c.enc.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("failed to convert element from %s: %w", c.encodingName, err)
	}
	return out, nil
}
