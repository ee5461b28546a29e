// Package autosave persists authoring edits after a quiet period instead of
// once per keystroke. Each edit (re)schedules a single pending save; a newer
// edit always supersedes an unfired one, so stale documents are never queued.
// A failed save is retried only by the next edit cycle; there is no
// background retry loop.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// DefaultDelay is the quiet period between the last edit and the save.
const DefaultDelay = 2 * time.Second

// SaveFunc persists a template snapshot.
type SaveFunc func(ctx context.Context, tmpl *schema.Template) error

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithDelay overrides the quiet period.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithErrorHandler receives save failures from fired timers. Without one,
// failures are dropped; the next edit reschedules regardless.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// Scheduler debounces template saves. Safe for use from a single authoring
// session; a save in flight never blocks further local edits.
type Scheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	save    SaveFunc
	onError func(error)
	timer   *time.Timer
	pending *schema.Template
	gen     uint64
}

// New constructs a scheduler around the given save func.
func New(save SaveFunc, options ...Option) (*Scheduler, error) {
	if save == nil {
		return nil, errors.New("autosave: save func is required")
	}
	s := &Scheduler{
		delay: DefaultDelay,
		save:  save,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Touch records the latest template state and restarts the quiet-period
// timer, superseding any unfired save. The snapshot is deep-copied so later
// edits cannot mutate what gets persisted.
func (s *Scheduler) Touch(tmpl *schema.Template) {
	if s == nil || tmpl == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = tmpl.Clone()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(gen)
	})
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil {
		// Superseded by a newer edit or flushed already.
		s.mu.Unlock()
		return
	}
	tmpl := s.pending
	s.pending = nil
	s.mu.Unlock()

	if err := s.save(context.Background(), tmpl); err != nil && s.onError != nil {
		s.onError(err)
	}
}

// Flush persists the pending snapshot immediately, cancelling the timer. It
// is a no-op when nothing is pending.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	tmpl := s.pending
	s.pending = nil
	s.gen++
	s.mu.Unlock()

	if tmpl == nil {
		return nil
	}
	return s.save(ctx, tmpl)
}

// Stop cancels any pending save without persisting it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.gen++
}

// Pending reports whether a save is scheduled but not yet fired.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
