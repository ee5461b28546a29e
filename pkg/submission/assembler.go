// Package submission assembles the completed answer map into the immutable
// submission document sent to the external store.
package submission

import (
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Meta carries the session metadata recorded alongside the answers. The
// assembler copies it verbatim; id assignment and completion stamping belong
// to the store boundary so assembly stays a pure function.
type Meta struct {
	StartedAt   time.Time
	CompletedAt time.Time
	IPAddress   string
	UserAgent   string
}

// Assemble produces the submission document structured by page id then field
// id. Structural fields never appear; a field hidden under the current
// answers is excluded even when a stale value lingers in the answer map.
// Respondent identity is extracted heuristically and left empty when no
// field matches.
func Assemble(tmpl *schema.Template, answers map[string]any, meta Meta) schema.Submission {
	eval := visibility.New(tmpl)

	data := make(map[string]map[string]any, len(tmpl.Pages))
	for _, page := range tmpl.Pages {
		pageData := make(map[string]any)
		for _, field := range page.Fields {
			if field.Type.Structural() {
				continue
			}
			if !eval.Visible(field, answers) {
				continue
			}
			value, ok := answers[field.ID]
			if !ok {
				continue
			}
			pageData[field.ID] = value
		}
		if len(pageData) > 0 {
			data[page.ID] = pageData
		}
	}

	out := schema.Submission{
		TemplateID:  tmpl.ID,
		Data:        data,
		StartedAt:   meta.StartedAt,
		CompletedAt: meta.CompletedAt,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}
	if email, ok := RespondentEmail(tmpl, answers); ok {
		out.RespondentEmail = email
	}
	if name, ok := RespondentName(tmpl, answers); ok {
		out.RespondentName = name
	}
	return out
}
