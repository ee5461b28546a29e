package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// getPublishedForm serves the full template document for a published slug and
// bumps its view counter. Counter bumps are best-effort; a failed bump never
// blocks the load.
func (s *Server) getPublishedForm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tmpl, err := s.templates.GetBySlug(r.Context(), slug)
	if err != nil {
		s.respondStoreError(w, r, "get_by_slug", err)
		return
	}

	if err := s.templates.IncrementViews(r.Context(), tmpl.ID); err != nil {
		s.log.WithError(err).WithField("template_id", tmpl.ID).Warn("view counter bump failed")
	} else {
		tmpl.ViewCount++
	}

	render.JSON(w, r, tmpl)
}

type submitPayload struct {
	Data            map[string]map[string]any `json:"data" validate:"required"`
	RespondentEmail string                    `json:"respondentEmail" validate:"omitempty,email"`
	RespondentName  string                    `json:"respondentName"`
	StartedAt       time.Time                 `json:"startedAt"`
}

// submitForm re-validates the submitted answers server-side, assembles the
// canonical submission document and persists it. Validation failures come
// back as one batch notice plus per-field messages, mirroring the in-session
// navigation rejection.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	tmpl, err := s.templates.GetBySlug(r.Context(), slug)
	if err != nil {
		s.respondStoreError(w, r, "get_by_slug", err)
		return
	}

	var payload submitPayload
	if err := render.DecodeJSON(r.Body, &payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "malformed submission body")
		return
	}
	if err := s.validate.Struct(payload); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid submission body")
		return
	}

	answers := flattenAnswers(payload.Data)
	if fieldErrs := validateAnswers(tmpl, answers); len(fieldErrs) > 0 {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, errorResponse{Error: "Please complete the required fields", Fields: fieldErrs})
		return
	}

	sub := submission.Assemble(tmpl, answers, submission.Meta{
		StartedAt:   payload.StartedAt,
		CompletedAt: time.Now().UTC(),
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
	})
	if sub.RespondentEmail == "" {
		sub.RespondentEmail = payload.RespondentEmail
	}
	if sub.RespondentName == "" {
		sub.RespondentName = payload.RespondentName
	}

	if err := s.submissions.AddSubmission(r.Context(), &sub); err != nil {
		s.respondStoreError(w, r, "add_submission", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"id": sub.ID})
}

// flattenAnswers merges the page-scoped answer maps into the field-id keyed
// map the evaluator and validator consume.
func flattenAnswers(data map[string]map[string]any) map[string]any {
	out := make(map[string]any)
	for _, pageData := range data {
		for fieldID, value := range pageData {
			out[fieldID] = value
		}
	}
	return out
}

// validateAnswers replays the per-page gate over the whole template: every
// visible answerable field must pass, hidden fields are skipped entirely.
func validateAnswers(tmpl *schema.Template, answers map[string]any) map[string]string {
	eval := visibility.New(tmpl)
	fieldErrs := make(map[string]string)
	for _, page := range tmpl.Pages {
		for _, field := range page.Fields {
			if field.Type.Structural() {
				continue
			}
			if !eval.Visible(field, answers) {
				continue
			}
			result := validation.Validate(field, answers[field.ID])
			if !result.OK {
				fieldErrs[field.ID] = result.Message
			}
		}
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	return fieldErrs
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
