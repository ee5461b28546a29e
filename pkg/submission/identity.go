package submission

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Respondent identity extraction is deliberately heuristic and lossy: it
// string-matches labels rather than consulting an explicit schema flag. The
// heuristics live here, behind named functions, so a future "designate this
// field as identity" flag can replace them without touching the assembler.

// RespondentEmail returns the answer of the first email-typed field with a
// non-empty value, in template order.
func RespondentEmail(tmpl *schema.Template, answers map[string]any) (string, bool) {
	for _, page := range tmpl.Pages {
		for _, field := range page.Fields {
			if field.Type != schema.FieldEmail {
				continue
			}
			if value := answerText(answers, field.ID); value != "" {
				return value, true
			}
		}
	}
	return "", false
}

// RespondentName returns the answer of the first answerable field whose label
// contains the case-insensitive substring "name" or "username", in template
// order, skipping empty answers.
func RespondentName(tmpl *schema.Template, answers map[string]any) (string, bool) {
	for _, page := range tmpl.Pages {
		for _, field := range page.Fields {
			if field.Type.Structural() {
				continue
			}
			label := strings.ToLower(field.Label)
			if !strings.Contains(label, "name") && !strings.Contains(label, "username") {
				continue
			}
			if value := answerText(answers, field.ID); value != "" {
				return value, true
			}
		}
	}
	return "", false
}

func answerText(answers map[string]any, fieldID string) string {
	value, ok := answers[fieldID]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
