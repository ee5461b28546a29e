// Package store defines the persistence contracts for templates and
// submissions. The engine treats the store as an external collaborator:
// documents go in and out whole, last write wins, and no multi-writer
// conflict detection happens here.
package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-formflow/pkg/schema"
)

var (
	// ErrNotFound reports a missing template or submission.
	ErrNotFound = errors.New("store: not found")
	// ErrSlugTaken reports a publish slug collision.
	ErrSlugTaken = errors.New("store: slug already in use")
)

// Templates persists form definitions.
type Templates interface {
	Create(ctx context.Context, tmpl *schema.Template) error
	Get(ctx context.Context, id string) (*schema.Template, error)
	// GetBySlug resolves a published template; unpublished templates are
	// not reachable by slug.
	GetBySlug(ctx context.Context, slug string) (*schema.Template, error)
	Update(ctx context.Context, tmpl *schema.Template) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, projectID string) ([]*schema.Template, error)
	Publish(ctx context.Context, id, slug string) (*schema.Template, error)
	Unpublish(ctx context.Context, id string) (*schema.Template, error)
	IncrementViews(ctx context.Context, id string) error
}

// Submissions persists completed respondent sessions. AddSubmission also
// bumps the owning template's submission counter.
type Submissions interface {
	AddSubmission(ctx context.Context, sub *schema.Submission) error
	ListSubmissions(ctx context.Context, templateID string) ([]schema.Submission, error)
	DeleteSubmission(ctx context.Context, templateID, id string) error
}

// Store bundles both persistence contracts.
type Store interface {
	Templates
	Submissions
}
