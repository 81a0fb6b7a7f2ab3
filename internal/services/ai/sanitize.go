package ai

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// numberPattern matches the first signed decimal inside a string, so that
// values like "12.3%", "$45.10" or "approx -2.5x" still yield a number.
var numberPattern = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+`)

// SanitizeNumber normalizes a loosely-typed numeric field to a float64.
// Numbers pass through unchanged; strings are scanned for the first signed
// decimal substring; anything else defaults to 0. Idempotent by
// construction.
func SanitizeNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return sanitizeString(n.String())
		}
		return f
	case string:
		return sanitizeString(n)
	default:
		return 0
	}
}

func sanitizeString(s string) float64 {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return f
}
