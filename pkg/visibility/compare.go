package visibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// match evaluates one rule against the source field's effective answer. An
// absent answer matches only is-empty; every comparison coerces leniently so
// that "5" and 5 agree.
func match(rule schema.Condition, current any, answered bool) bool {
	switch rule.Operator {
	case schema.OpIsEmpty:
		return !answered || empty(current)
	case schema.OpIsFilled:
		return answered && !empty(current)
	}

	if !answered || empty(current) {
		return false
	}

	switch rule.Operator {
	case schema.OpEquals:
		return equal(current, rule.Value)
	case schema.OpNotEquals:
		return !equal(current, rule.Value)
	case schema.OpContains:
		return contains(current, rule.Value)
	case schema.OpNotContains:
		return !contains(current, rule.Value)
	case schema.OpGreaterThan:
		got, ok1 := number(current)
		want, ok2 := number(rule.Value)
		return ok1 && ok2 && got > want
	case schema.OpLessThan:
		got, ok1 := number(current)
		want, ok2 := number(rule.Value)
		return ok1 && ok2 && got < want
	default:
		// Unknown operators never match; the dependent field stays hidden
		// rather than crashing the session.
		return false
	}
}

func equal(current, want any) bool {
	if got, ok := number(current); ok {
		if target, ok := number(want); ok {
			return got == target
		}
	}
	return text(current) == text(want)
}

// contains matches multi-select membership and substring for plain text.
func contains(current, want any) bool {
	target := text(want)
	switch v := current.(type) {
	case []string:
		for _, entry := range v {
			if entry == target {
				return true
			}
		}
		return false
	case []any:
		for _, entry := range v {
			if text(entry) == target {
				return true
			}
		}
		return false
	case map[string]bool:
		return v[target]
	case map[string]any:
		if b, ok := v[target].(bool); ok {
			return b
		}
		return false
	default:
		return strings.Contains(text(current), target)
	}
}

func empty(value any) bool {
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
			if !empty(entry) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func number(value any) (float64, bool) {
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

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(value)
	}
}
