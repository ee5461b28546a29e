// Package validation evaluates per-field constraints against a candidate
// answer. Validation is pure: it never mutates the schema or the answer map,
// and it never rejects a field the visibility evaluator has hidden; callers
// are expected to skip hidden fields entirely.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Result reports a single field check. Message is empty when OK.
type Result struct {
	OK      bool
	Message string
}

func pass() Result               { return Result{OK: true} }
func fail(message string) Result { return Result{Message: message} }

// RequiredMessage is the canonical failure text for missing required answers.
const RequiredMessage = "This field is required"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9()\-\s.]{5,}$`)
	colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Validate checks a value against a field's rules in fixed precedence:
// required, type format, length bounds, numeric bounds. Structural fields
// always pass. Unknown field types are validated as plain text.
func Validate(field schema.Field, value any) Result {
	if field.Type.Structural() {
		return pass()
	}

	if isEmpty(value) {
		if field.Validation.Required {
			return fail(RequiredMessage)
		}
		return pass()
	}

	if res := validateFormat(field, value); !res.OK {
		return res
	}
	if res := validateLength(field, value); !res.OK {
		return res
	}
	return validateBounds(field, value)
}

func validateFormat(field schema.Field, value any) Result {
	switch field.Type {
	case schema.FieldEmail:
		if !emailPattern.MatchString(asString(value)) {
			return fail("Please enter a valid email address")
		}
	case schema.FieldPhone:
		if !phonePattern.MatchString(strings.TrimSpace(asString(value))) {
			return fail("Please enter a valid phone number")
		}
	case schema.FieldURL:
		parsed, err := url.Parse(strings.TrimSpace(asString(value)))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fail("Please enter a valid URL")
		}
	case schema.FieldNumber, schema.FieldCurrency, schema.FieldSlider, schema.FieldOpinionScale:
		if _, ok := asNumber(value); !ok {
			return fail("Please enter a valid number")
		}
	case schema.FieldRating:
		n, ok := asNumber(value)
		if !ok || n != float64(int(n)) || n < 1 || n > 5 {
			return fail("Please choose a rating between 1 and 5")
		}
	case schema.FieldDate:
		if !parseAny(asString(value), "2006-01-02") {
			return fail("Please enter a valid date")
		}
	case schema.FieldTime:
		if !parseAny(asString(value), "15:04", "15:04:05") {
			return fail("Please enter a valid time")
		}
	case schema.FieldDateTime:
		if !parseAny(asString(value), "2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00") {
			return fail("Please enter a valid date and time")
		}
	case schema.FieldDateRange:
		start, end, ok := asRange(value)
		if !ok || !parseAny(start, "2006-01-02") || !parseAny(end, "2006-01-02") {
			return fail("Please enter a valid date range")
		}
	case schema.FieldColorPicker:
		if !colorPattern.MatchString(strings.TrimSpace(asString(value))) {
			return fail("Please choose a valid color")
		}
	}

	if pattern := strings.TrimSpace(field.Validation.Pattern); pattern != "" {
		re, err := regexp.Compile(pattern)
		// An uncompilable author pattern degrades to a no-op rather than
		// blocking the respondent.
		if err == nil && !re.MatchString(asString(value)) {
			return fail("The value does not match the expected format")
		}
	}
	return pass()
}

func validateLength(field schema.Field, value any) Result {
	if !textual(field.Type) {
		return pass()
	}
	length := len([]rune(asString(value)))
	if min := field.Validation.MinLength; min != nil && length < *min {
		return fail(fmt.Sprintf("Please enter at least %d characters", *min))
	}
	if max := field.Validation.MaxLength; max != nil && length > *max {
		return fail(fmt.Sprintf("Please enter no more than %d characters", *max))
	}
	return pass()
}

func validateBounds(field schema.Field, value any) Result {
	min, max := field.Validation.Min, field.Validation.Max
	if min == nil && max == nil {
		return pass()
	}
	n, ok := asNumber(value)
	if !ok {
		// Non-numeric types reuse min/max for selection counts.
		if count, countable := selectionCount(value); countable {
			n = float64(count)
		} else {
			return pass()
		}
	}
	if min != nil && n < *min {
		return fail(fmt.Sprintf("Value must be at least %s", trimFloat(*min)))
	}
	if max != nil && n > *max {
		return fail(fmt.Sprintf("Value must be at most %s", trimFloat(*max)))
	}
	return pass()
}

func textual(t schema.FieldType) bool {
	switch t {
	case schema.FieldShortText, schema.FieldLongText, schema.FieldEmail,
		schema.FieldPhone, schema.FieldURL, schema.FieldPassword,
		schema.FieldAddress, schema.FieldLocation:
		return true
	default:
		return !t.Known()
	}
}

// trimFloat renders a bound without trailing zeros, so "at least 2" rather
// than "at least 2.000000".
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
