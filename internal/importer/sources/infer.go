package sources

import (
	"strconv"
	"strings"
)

// inferValue tries to parse a cell string as a number or bool.
// Shared by the csv and xlsx sources, which both decode to strings.
func inferValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Try number.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	// Try bool.
	switch strings.ToLower(s) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}

	return s
}
