package bidform

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Sentinel strings that mean "no value" in bid forms, compared
// case-insensitively after trimming.
var unknownSentinels = map[string]bool{
	"":    true,
	"tbd": true,
	"n/a": true,
	"na":  true,
	"-":   true,
	"—":   true,
}

// Normalize parses a loosely-formatted monetary or numeric value into a
// float. The second return is false when the input carries no usable number:
// nil, empty or whitespace-only strings, sentinel markers ("TBD", "N/A", "-")
// and anything unparseable. Callers must exclude such values from
// aggregation. Normalize never panics, whatever the input.
func Normalize(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		return normalizeString(v)
	default:
		return 0, false
	}
}

func normalizeString(s string) (float64, bool) {
	trimmed := strings.TrimSpace(s)
	if unknownSentinels[strings.ToLower(trimmed)] {
		return 0, false
	}

	// Strip currency symbols and thousands separators.
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(trimmed)
	if cleaned == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
