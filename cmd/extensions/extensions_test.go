package extensions

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pgschema/pgpostgis/ddl"
	"github.com/pgschema/pgpostgis/internal/catalog"
)

func TestBuild(t *testing.T) {
	info := &catalog.ServerInfo{
		Version:        "16.4 (Debian 16.4-1.pgdg120+1)",
		ServerEncoding: "UTF8",
		ClientEncoding: "UTF8",
		Extensions:     []string{"postgis"},
	}

	report, err := Build(info, []string{"postgis", "pg_trgm"})
	require.NoError(t, err)
	require.Equal(t, &Report{
		ServerVersion:      "16.4 (Debian 16.4-1.pgdg120+1)",
		ServerEncoding:     "UTF8",
		ClientEncoding:     "UTF8",
		SupportsExtensions: true,
		Installed:          []string{"postgis"},
		Statements:         []string{`CREATE EXTENSION IF NOT EXISTS "pg_trgm"`},
	}, report)
}

func TestBuild_OldServer(t *testing.T) {
	info := &catalog.ServerInfo{Version: "9.0.23", ServerEncoding: "UTF8", ClientEncoding: "UTF8"}

	report, err := Build(info, nil)
	require.NoError(t, err)
	require.False(t, report.SupportsExtensions)
	require.Equal(t, []string{}, report.Installed)

	_, err = Build(info, []string{"postgis"})
	require.ErrorIs(t, err, ddl.ErrUnsupportedFeature)
}

func TestWrite(t *testing.T) {
	report := &Report{
		ServerVersion:      "17.2",
		ServerEncoding:     "UTF8",
		ClientEncoding:     "LATIN1",
		SupportsExtensions: true,
		Installed:          []string{"pg_trgm", "postgis"},
		Statements:         []string{`CREATE EXTENSION IF NOT EXISTS "hstore"`},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "text", report))
	require.Equal(t, `server version: 17.2
encoding: UTF8 (client LATIN1)
extensions supported: yes
installed: pg_trgm, postgis
CREATE EXTENSION IF NOT EXISTS "hstore";
`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, "json", report))
	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, *report, decoded)
}
