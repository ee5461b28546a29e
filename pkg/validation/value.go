package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isEmpty reports whether an answer carries no usable value. Checkbox answers
// arrive as option-value keyed boolean maps; one true entry makes them
// non-empty.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]bool:
		for _, checked := range v {
			if checked {
				return false
			}
		}
		return true
	case map[string]any:
		if len(v) == 0 {
			return true
		}
		for _, entry := range v {
			if b, ok := entry.(bool); ok {
				if b {
					return false
				}
				continue
			}
			if !isEmpty(entry) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
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
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asRange extracts start/end strings from a date-range answer, which arrives
// either as a {start, end} map or a two-element slice.
func asRange(value any) (string, string, bool) {
	switch v := value.(type) {
	case map[string]any:
		start, end := asString(v["start"]), asString(v["end"])
		return start, end, start != "" && end != ""
	case map[string]string:
		start, end := v["start"], v["end"]
		return start, end, start != "" && end != ""
	case []string:
		if len(v) == 2 {
			return v[0], v[1], true
		}
	case []any:
		if len(v) == 2 {
			return asString(v[0]), asString(v[1]), true
		}
	}
	return "", "", false
}

// selectionCount counts chosen entries in multi-select answers.
func selectionCount(value any) (int, bool) {
	switch v := value.(type) {
	case []string:
		return len(v), true
	case []any:
		return len(v), true
	case map[string]bool:
		n := 0
		for _, checked := range v {
			if checked {
				n++
			}
		}
		return n, true
	case map[string]any:
		n := 0
		countable := false
		for _, entry := range v {
			if b, ok := entry.(bool); ok {
				countable = true
				if b {
					n++
				}
			}
		}
		return n, countable
	default:
		return 0, false
	}
}

func parseAny(raw string, layouts ...string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return true
		}
	}
	return false
}
