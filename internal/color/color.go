package color

import (
	"fmt"
	"os"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Cyan   = "\033[36m"
	Bold   = "\033[1m"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

func (c *Color) wrap(code, text string) string {
	if c == nil || !c.enabled {
		return text
	}
	return code + text + Reset
}

// Name highlights an object name.
func (c *Color) Name(text string) string {
	return c.wrap(Bold, text)
}

// Spatial marks spatial indexes.
func (c *Color) Spatial(text string) string {
	return c.wrap(Green, text)
}

// Attr colors an index attribute such as the access method.
func (c *Color) Attr(text string) string {
	return c.wrap(Cyan, text)
}

// FormatSummary formats the closing line of an inspection.
func (c *Color) FormatSummary(tables, indexes, spatial int) string {
	return fmt.Sprintf("%s: %d tables, %d indexes (%s)",
		c.Name("Summary"), tables, indexes, c.Spatial(fmt.Sprintf("%d spatial", spatial)))
}
