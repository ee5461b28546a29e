// Package session drives one respondent pass through a template: an ordered
// page walk gated by validation, with an optional cover state and a terminal
// submitted state. The session is the sole owner of the answer map so that
// conditional rules can reference answers from any prior page; evaluators and
// validators receive snapshots and never mutate it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// State names the navigator position.
type State string

const (
	// StateCover is the optional informational state before the first page.
	StateCover State = "cover"
	// StatePage means the respondent is on one of the template's pages.
	StatePage State = "page"
	// StateSubmitted is terminal; no further navigation is permitted.
	StateSubmitted State = "submitted"
)

var (
	// ErrSubmitted rejects any mutation or navigation after the terminal
	// transition.
	ErrSubmitted = errors.New("session: already submitted")
	// ErrAtStart rejects "previous" from the first reachable state.
	ErrAtStart = errors.New("session: already at the first page")
	// ErrNotLastPage rejects "submit" from any page but the last.
	ErrNotLastPage = errors.New("session: submit is only allowed from the last page")
	// ErrNoNextPage rejects "next" on the last page, where submit is the
	// only forward edge.
	ErrNoNextPage = errors.New("session: no page after the last")
	// ErrNotCover rejects "start" when there is no cover to leave.
	ErrNotCover = errors.New("session: not on the cover page")
	// ErrOnCover rejects page navigation and submit while the cover is
	// still showing; Start is the only forward edge from there.
	ErrOnCover = errors.New("session: still on the cover page")
)

// RequiredFieldsMessage is the batch notice raised once per rejected
// transition, alongside the per-field messages.
const RequiredFieldsMessage = "Please complete the required fields"

// NavigationError reports a blocked next/submit transition: one batch message
// plus the per-field validation messages that caused it.
type NavigationError struct {
	Message string
	Fields  map[string]string
}

func (e *NavigationError) Error() string { return e.Message }

// Option customises a session.
type Option func(*Session)

// WithEvaluator overrides the visibility evaluator. A custom evaluator is
// kept across ReloadTemplate; the default one is rebuilt for the new
// template.
func WithEvaluator(eval visibility.Evaluator) Option {
	return func(s *Session) {
		if eval != nil {
			s.eval = eval
			s.customEval = true
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is the page navigator. It is not safe for concurrent use; the
// engine runs in a single cooperative event loop.
type Session struct {
	tmpl       *schema.Template
	eval       visibility.Evaluator
	customEval bool
	now        func() time.Time
	state      State
	pageIdx    int
	answers    map[string]any
	fieldErrs  map[string]string
	startedAt  time.Time
}

// New validates the template's structural integrity and positions the session
// on the cover when one is configured, otherwise on the first page.
func New(tmpl *schema.Template, options ...Option) (*Session, error) {
	if err := schema.Validate(tmpl); err != nil {
		return nil, err
	}
	s := &Session{
		tmpl:      tmpl,
		eval:      visibility.New(tmpl),
		now:       time.Now,
		answers:   make(map[string]any),
		fieldErrs: make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if tmpl.Cover.ShowCover {
		s.state = StateCover
	} else {
		s.state = StatePage
	}
	s.startedAt = s.now()
	return s, nil
}

// Template returns the definition the session replays.
func (s *Session) Template() *schema.Template { return s.tmpl }

// State returns the navigator position.
func (s *Session) State() State { return s.state }

// PageIndex returns the current page index; meaningful only in StatePage.
func (s *Session) PageIndex() int { return s.pageIdx }

// StartedAt reports when the session began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// CurrentPage returns the active page while in StatePage.
func (s *Session) CurrentPage() (schema.Page, bool) {
	if s.state != StatePage || s.pageIdx < 0 || s.pageIdx >= len(s.tmpl.Pages) {
		return schema.Page{}, false
	}
	return s.tmpl.Pages[s.pageIdx], true
}

// Progress reports completion as a percentage. It is defined only while on a
// page; on the cover and after submission the second return is false.
func (s *Session) Progress() (float64, bool) {
	if s.state != StatePage || len(s.tmpl.Pages) == 0 {
		return 0, false
	}
	return float64(s.pageIdx+1) / float64(len(s.tmpl.Pages)) * 100, true
}

// Answers returns a snapshot of the answer map keyed by field id.
func (s *Session) Answers() map[string]any {
	out := make(map[string]any, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Answer returns the current value for a field id.
func (s *Session) Answer(fieldID string) (any, bool) {
	v, ok := s.answers[fieldID]
	return v, ok
}

// SetAnswer records a value for an answerable field. Setting an answer clears
// any pending validation message for that field; other fields' errors are
// untouched so one bad field never blocks interaction with the rest.
func (s *Session) SetAnswer(fieldID string, value any) error {
	if s.state == StateSubmitted {
		return ErrSubmitted
	}
	field, ok := s.tmpl.Field(fieldID)
	if !ok {
		return fmt.Errorf("session: field %q: %w", fieldID, schema.ErrFieldNotFound)
	}
	if field.Type.Structural() {
		return fmt.Errorf("session: field %q is structural and takes no answer", fieldID)
	}
	s.answers[fieldID] = value
	delete(s.fieldErrs, fieldID)
	return nil
}

// VisibleFields returns the current page's fields after conditional
// visibility, in order.
func (s *Session) VisibleFields() []schema.Field {
	page, ok := s.CurrentPage()
	if !ok {
		return nil
	}
	return visibility.VisibleFields(page, s.answers, s.eval)
}

// FieldErrors returns the pending per-field messages from the last rejected
// transition.
func (s *Session) FieldErrors() map[string]string {
	out := make(map[string]string, len(s.fieldErrs))
	for k, v := range s.fieldErrs {
		out[k] = v
	}
	return out
}

// Start leaves the cover for the first page.
func (s *Session) Start() error {
	switch s.state {
	case StateSubmitted:
		return ErrSubmitted
	case StateCover:
		s.state = StatePage
		s.pageIdx = 0
		return nil
	default:
		return ErrNotCover
	}
}

// Next advances to the following page. The transition is rejected with a
// NavigationError when any visible required field on the current page fails
// validation; hidden fields never block it, even when marked required.
func (s *Session) Next() error {
	if s.state == StateSubmitted {
		return ErrSubmitted
	}
	if s.state != StatePage {
		return ErrOnCover
	}
	if errs := s.validateCurrentPage(); len(errs) > 0 {
		s.fieldErrs = errs
		return &NavigationError{Message: RequiredFieldsMessage, Fields: copyErrs(errs)}
	}
	if s.pageIdx >= len(s.tmpl.Pages)-1 {
		return ErrNoNextPage
	}
	s.pageIdx++
	s.fieldErrs = make(map[string]string)
	return nil
}

// Previous steps back one page, or onto the cover from the first page when a
// cover exists. It always succeeds in that range, keeps every entered answer,
// and clears transient error state for the page being left.
func (s *Session) Previous() error {
	if s.state == StateSubmitted {
		return ErrSubmitted
	}
	if s.state != StatePage {
		return ErrAtStart
	}
	s.fieldErrs = make(map[string]string)
	if s.pageIdx > 0 {
		s.pageIdx--
		return nil
	}
	if s.tmpl.Cover.ShowCover {
		s.state = StateCover
		return nil
	}
	return ErrAtStart
}

// SubmitFunc delivers the assembled submission to the external store. A nil
// func makes Submit a purely local transition.
type SubmitFunc func(ctx context.Context) error

// Submit validates the last page and performs the terminal transition. When a
// deliver func is supplied and fails, the navigator stays on the pre-submit
// page so the respondent can retry explicitly; there is no automatic retry.
// After a successful transition further submits are rejected.
func (s *Session) Submit(ctx context.Context, deliver SubmitFunc) error {
	if s.state == StateSubmitted {
		return ErrSubmitted
	}
	if s.state != StatePage {
		return ErrOnCover
	}
	if s.pageIdx != len(s.tmpl.Pages)-1 {
		return ErrNotLastPage
	}
	if errs := s.validateCurrentPage(); len(errs) > 0 {
		s.fieldErrs = errs
		return &NavigationError{Message: RequiredFieldsMessage, Fields: copyErrs(errs)}
	}
	if deliver != nil {
		if err := deliver(ctx); err != nil {
			return fmt.Errorf("session: deliver submission: %w", err)
		}
	}
	s.state = StateSubmitted
	s.fieldErrs = make(map[string]string)
	return nil
}

// ReloadTemplate swaps in an edited template, clamping the page pointer to
// the nearest valid page and dropping answers whose fields no longer exist.
// Used by authoring previews that keep a session open across edits.
func (s *Session) ReloadTemplate(tmpl *schema.Template) error {
	if err := schema.Validate(tmpl); err != nil {
		return err
	}
	s.tmpl = tmpl
	if !s.customEval {
		s.eval = visibility.New(tmpl)
	}
	s.pageIdx = tmpl.ClampPageIndex(s.pageIdx)
	for id := range s.answers {
		if _, ok := tmpl.Field(id); !ok {
			delete(s.answers, id)
		}
	}
	for id := range s.fieldErrs {
		if _, ok := tmpl.Field(id); !ok {
			delete(s.fieldErrs, id)
		}
	}
	if s.state == StateCover && !tmpl.Cover.ShowCover {
		s.state = StatePage
		s.pageIdx = 0
	}
	return nil
}

func (s *Session) validateCurrentPage() map[string]string {
	errs := make(map[string]string)
	for _, field := range s.VisibleFields() {
		if field.Type.Structural() {
			continue
		}
		result := validation.Validate(field, s.answers[field.ID])
		if !result.OK {
			errs[field.ID] = result.Message
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func copyErrs(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
