package formflow

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submission"
)

// Template aliases the schema document; re-exported via the root package for
// convenience.
type Template = schema.Template

// Submission is the immutable record produced by a completed session.
type Submission = schema.Submission

// Session is the per-respondent navigator over one template.
type Session = session.Session

// Load decodes and integrity-checks a JSON template document.
func Load(data []byte) (*Template, error) {
	return schema.DecodeJSON(data)
}

// LoadYAML decodes and integrity-checks a YAML template document.
func LoadYAML(data []byte) (*Template, error) {
	return schema.DecodeYAML(data)
}

// NewSession starts a respondent session over a validated template.
func NewSession(tmpl *Template, options ...session.Option) (*Session, error) {
	return session.New(tmpl, options...)
}

// Complete performs the terminal submit transition and assembles the
// canonical submission from the session's answers. The deliver hook, when
// non-nil, runs before the transition commits; its failure leaves the session
// where it was.
func Complete(ctx context.Context, sess *Session, meta submission.Meta, deliver session.SubmitFunc) (Submission, error) {
	if err := sess.Submit(ctx, deliver); err != nil {
		return Submission{}, err
	}
	if meta.StartedAt.IsZero() {
		meta.StartedAt = sess.StartedAt()
	}
	return submission.Assemble(sess.Template(), sess.Answers(), meta), nil
}
