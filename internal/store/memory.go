package store

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Memory is an in-process Store used by tests and local development. It
// mirrors the sqlite implementation's semantics, including slug uniqueness
// and counter updates.
type Memory struct {
	mu          sync.RWMutex
	templates   map[string]*schema.Template
	submissions map[string][]schema.Submission
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		templates:   make(map[string]*schema.Template),
		submissions: make(map[string][]schema.Submission),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Create(_ context.Context, tmpl *schema.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tmpl.ID == "" {
		tmpl.ID = schema.NewID()
	}
	m.templates[tmpl.ID] = tmpl.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*schema.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tmpl, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return tmpl.Clone(), nil
}

func (m *Memory) GetBySlug(_ context.Context, slug string) (*schema.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tmpl := range m.templates {
		if tmpl.Published && tmpl.Slug == slug {
			return tmpl.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Update(_ context.Context, tmpl *schema.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[tmpl.ID]; !ok {
		return ErrNotFound
	}
	m.templates[tmpl.ID] = tmpl.Clone()
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	delete(m.submissions, id)
	return nil
}

func (m *Memory) List(_ context.Context, projectID string) ([]*schema.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*schema.Template, 0, len(m.templates))
	for _, tmpl := range m.templates {
		if projectID != "" && tmpl.ProjectID != projectID {
			continue
		}
		out = append(out, tmpl.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) Publish(_ context.Context, id, slug string) (*schema.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	for otherID, other := range m.templates {
		if otherID != id && other.Published && other.Slug == slug {
			return nil, ErrSlugTaken
		}
	}
	tmpl.Published = true
	tmpl.Slug = slug
	return tmpl.Clone(), nil
}

func (m *Memory) Unpublish(_ context.Context, id string) (*schema.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	tmpl.Published = false
	return tmpl.Clone(), nil
}

func (m *Memory) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl, ok := m.templates[id]
	if !ok {
		return ErrNotFound
	}
	tmpl.ViewCount++
	return nil
}

func (m *Memory) AddSubmission(_ context.Context, sub *schema.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tmpl, ok := m.templates[sub.TemplateID]
	if !ok {
		return ErrNotFound
	}
	if sub.ID == "" {
		sub.ID = schema.NewID()
	}
	m.submissions[sub.TemplateID] = append(m.submissions[sub.TemplateID], *sub)
	tmpl.SubmissionCount++
	return nil
}

func (m *Memory) ListSubmissions(_ context.Context, templateID string) ([]schema.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.templates[templateID]; !ok {
		return nil, ErrNotFound
	}
	return append([]schema.Submission(nil), m.submissions[templateID]...), nil
}

func (m *Memory) DeleteSubmission(_ context.Context, templateID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := m.submissions[templateID]
	for i := range subs {
		if subs[i].ID == id {
			m.submissions[templateID] = append(subs[:i], subs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
