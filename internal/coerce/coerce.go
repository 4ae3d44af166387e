// Package coerce converts loosely typed spreadsheet cell values into the
// numeric fields of a canonical item. Every conversion swallows failure and
// falls back to the caller's default; a malformed cell must never abort a row.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// Float returns v as a float64, or def when v is nil, blank, or unparseable.
func Float(v any, def float64) float64 {
	switch t := v.(type) {
	case nil:
		return def
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def
		}
		// spaces and commas are thousands separators; source documents
		// write decimals with a dot, so "1,5" reads as 15, not 1.5
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// Int returns v truncated to an int, or def. Parsing goes through Float
// first so inputs like "3.0" land on 3 rather than the default.
func Int(v any, def int) int {
	f := Float(v, math.NaN())
	if math.IsNaN(f) {
		return def
	}
	return int(f)
}

// IsNumeric reports whether v parses as a number after trimming. Used by
// region-end rules that cut the data slice at the first non-numeric key cell.
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64:
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
