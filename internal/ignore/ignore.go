package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// FileName is the default name of the ignore file
	FileName = ".pgpostgisignore"
)

// Config lists glob patterns for tables and indexes to leave out of
// inspection. A pattern starting with ! re-includes names matched by the
// other patterns.
type Config struct {
	Tables  []string
	Indexes []string
}

// tomlConfig is the on-disk layout:
//
//	[tables]
//	patterns = ["tmp_*"]
//
//	[indexes]
//	patterns = ["*_old", "!keep_*"]
type tomlConfig struct {
	Tables  patternList `toml:"tables,omitempty"`
	Indexes patternList `toml:"indexes,omitempty"`
}

type patternList struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// LoadFromPath reads an ignore file. A missing file yields a nil config,
// which ignores nothing.
func LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var raw tomlConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, err
	}
	return &Config{
		Tables:  raw.Tables.Patterns,
		Indexes: raw.Indexes.Patterns,
	}, nil
}

// ShouldIgnoreTable reports whether table is excluded.
func (c *Config) ShouldIgnoreTable(table string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(table, c.Tables)
}

// ShouldIgnoreIndex reports whether index is excluded.
func (c *Config) ShouldIgnoreIndex(index string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(index, c.Indexes)
}

// shouldIgnore applies inclusion patterns first; any matching negation
// pattern overrides them.
func shouldIgnore(name string, patterns []string) bool {
	matched := false
	for _, pattern := range patterns {
		if !strings.HasPrefix(pattern, "!") && matchPattern(pattern, name) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") && matchPattern(pattern[1:], name) {
			return false
		}
	}
	return true
}

// matchPattern matches a glob pattern, falling back to equality for invalid
// patterns.
func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return matched
}
