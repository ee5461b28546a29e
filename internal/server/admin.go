package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/goliatone/go-formflow/pkg/schema"
)

func (s *Server) createTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl schema.Template
	if err := render.DecodeJSON(r.Body, &tmpl); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "malformed template document")
		return
	}
	schema.Sanitize(&tmpl)
	if err := schema.Validate(&tmpl); err != nil {
		s.respondIntegrityError(w, r, err)
		return
	}
	if tmpl.ID == "" {
		tmpl.ID = schema.NewID()
	}
	// Publishing is its own operation; a fresh document always starts as a
	// draft regardless of what the payload claims.
	tmpl.Published = false
	tmpl.Slug = ""

	if err := s.templates.Create(r.Context(), &tmpl); err != nil {
		s.respondStoreError(w, r, "create_template", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, tmpl)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")

	templates, err := s.templates.List(r.Context(), projectID)
	if err != nil {
		s.respondStoreError(w, r, "list_templates", err)
		return
	}

	render.JSON(w, r, templates)
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, r, "get_template", err)
		return
	}

	render.JSON(w, r, tmpl)
}

func (s *Server) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	current, err := s.templates.Get(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "get_template", err)
		return
	}

	var tmpl schema.Template
	if err := render.DecodeJSON(r.Body, &tmpl); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "malformed template document")
		return
	}
	schema.Sanitize(&tmpl)
	if err := schema.Validate(&tmpl); err != nil {
		s.respondIntegrityError(w, r, err)
		return
	}

	// Lifecycle fields and counters stay server-owned across updates.
	tmpl.ID = id
	tmpl.Published = current.Published
	tmpl.Slug = current.Slug
	tmpl.SubmissionCount = current.SubmissionCount
	tmpl.ViewCount = current.ViewCount

	if err := s.templates.Update(r.Context(), &tmpl); err != nil {
		s.respondStoreError(w, r, "update_template", err)
		return
	}

	render.JSON(w, r, tmpl)
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondStoreError(w, r, "delete_template", err)
		return
	}
	render.NoContent(w, r)
}

type publishPayload struct {
	Slug string `json:"slug"`
}

func (s *Server) publishTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var payload publishPayload
	if r.ContentLength != 0 {
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			s.respondError(w, r, http.StatusBadRequest, "malformed publish payload")
			return
		}
	}

	slug := payload.Slug
	if slug == "" {
		current, err := s.templates.Get(r.Context(), id)
		if err != nil {
			s.respondStoreError(w, r, "get_template", err)
			return
		}
		slug = Slugify(current.Name)
	}
	if slug == "" {
		s.respondError(w, r, http.StatusBadRequest, "cannot derive a slug from an empty name")
		return
	}

	tmpl, err := s.templates.Publish(r.Context(), id, slug)
	if err != nil {
		s.respondStoreError(w, r, "publish_template", err)
		return
	}

	render.JSON(w, r, tmpl)
}

func (s *Server) unpublishTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.templates.Unpublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, r, "unpublish_template", err)
		return
	}

	render.JSON(w, r, tmpl)
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.submissions.ListSubmissions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondStoreError(w, r, "list_submissions", err)
		return
	}

	render.JSON(w, r, subs)
}

func (s *Server) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	submissionID := chi.URLParam(r, "submissionID")

	if err := s.submissions.DeleteSubmission(r.Context(), templateID, submissionID); err != nil {
		s.respondStoreError(w, r, "delete_submission", err)
		return
	}
	render.NoContent(w, r)
}

// exportSubmissions streams every submission for a template as CSV. Columns
// follow the template's page and field order so the file reads the way the
// form does; answers for fields since removed from the template are omitted.
func (s *Server) exportSubmissions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	tmpl, err := s.templates.Get(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "export_submissions", err)
		return
	}
	subs, err := s.submissions.ListSubmissions(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, "export_submissions", err)
		return
	}

	type column struct {
		pageID  string
		fieldID string
		label   string
	}
	var columns []column
	for _, page := range tmpl.Pages {
		for _, field := range page.Fields {
			if field.Type.Structural() {
				continue
			}
			label := field.Label
			if label == "" {
				label = field.ID
			}
			columns = append(columns, column{page.ID, field.ID, label})
		}
	}

	name := tmpl.Slug
	if name == "" {
		name = Slugify(tmpl.Name)
	}
	if name == "" {
		name = tmpl.ID
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"-submissions.csv"))

	cw := csv.NewWriter(w)
	header := []string{"submissionId", "respondentEmail", "respondentName", "startedAt", "completedAt"}
	for _, col := range columns {
		header = append(header, col.label)
	}
	if err := cw.Write(header); err != nil {
		s.log.WithError(err).Warn("csv export aborted")
		return
	}

	for _, sub := range subs {
		row := []string{sub.ID, sub.RespondentEmail, sub.RespondentName, csvTime(sub.StartedAt), csvTime(sub.CompletedAt)}
		for _, col := range columns {
			row = append(row, csvCell(sub.Data[col.pageID][col.fieldID]))
		}
		if err := cw.Write(row); err != nil {
			s.log.WithError(err).Warn("csv export aborted")
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.log.WithError(err).Warn("csv export aborted")
	}
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// csvCell flattens an answer value to one cell. Multi-select maps and slices
// join their entries with semicolons; range answers render as start/end.
func csvCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]bool:
		var picked []string
		for option, on := range v {
			if on {
				picked = append(picked, option)
			}
		}
		sort.Strings(picked)
		return strings.Join(picked, "; ")
	case map[string]string:
		if start, ok := v["start"]; ok {
			return start + " / " + v["end"]
		}
		return fmt.Sprint(v)
	case map[string]any:
		// Stored answers come back from JSON with this shape regardless of
		// what the session held in memory.
		if start, ok := v["start"].(string); ok {
			end, _ := v["end"].(string)
			return start + " / " + end
		}
		var picked []string
		for option, raw := range v {
			if on, ok := raw.(bool); ok && on {
				picked = append(picked, option)
			}
		}
		sort.Strings(picked)
		return strings.Join(picked, "; ")
	case []string:
		return strings.Join(v, "; ")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = csvCell(item)
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers a title into a URL path segment.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
