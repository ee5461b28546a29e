// Package visibility decides which fields are shown for a given answer map.
// A field with no conditional rules is always visible; a field with rules is
// visible only while every rule matches (conjunctive semantics, with no
// OR-group composition). Evaluation is pure and tolerant: a missing, hidden
// or unanswered source field is simply non-matching, never an error.
package visibility

import "github.com/goliatone/go-formflow/pkg/schema"

// Evaluator reports whether a field should be visible for the current answer
// map. Answers are keyed by field id across all pages.
type Evaluator interface {
	Visible(field schema.Field, answers map[string]any) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field schema.Field, answers map[string]any) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field schema.Field, answers map[string]any) bool {
	return fn(field, answers)
}

// Rules is the default evaluator over schema.Condition rules. Built with a
// template, it resolves each rule's source field and treats a hidden source
// as unanswered, so a stale answer never satisfies a rule further down a
// chain of conditions. A nil template disables that resolution and rules see
// the flat answer map only.
type Rules struct {
	tmpl *schema.Template
}

// New returns the default rule evaluator for a template. The template may be
// nil when no chained conditions need resolving.
func New(tmpl *schema.Template) Rules { return Rules{tmpl: tmpl} }

// Visible implements Evaluator.
func (r Rules) Visible(field schema.Field, answers map[string]any) bool {
	return r.visible(field, answers, nil)
}

// visible carries the set of field ids on the current resolution path so
// mutually referencing conditions terminate. A field reached twice counts as
// hidden, which hides every member of the cycle.
func (r Rules) visible(field schema.Field, answers map[string]any, path map[string]bool) bool {
	if len(field.Logic) == 0 {
		return true
	}
	if path[field.ID] {
		return false
	}
	if path == nil {
		path = make(map[string]bool)
	}
	path[field.ID] = true
	defer delete(path, field.ID)

	for _, rule := range field.Logic {
		current, answered := answers[rule.FieldID]
		if answered && r.sourceHidden(rule.FieldID, answers, path) {
			current, answered = nil, false
		}
		if !match(rule, current, answered) {
			return false
		}
	}
	return true
}

// sourceHidden reports whether a rule's source field is itself hidden under
// the current answers. An unresolvable source is treated as visible; its
// absent or stale answer is judged by the rule as usual.
func (r Rules) sourceHidden(fieldID string, answers map[string]any, path map[string]bool) bool {
	if r.tmpl == nil {
		return false
	}
	source, ok := r.tmpl.Field(fieldID)
	if !ok {
		return false
	}
	return !r.visible(*source, answers, path)
}

// VisibleFields filters a page's fields through an evaluator, preserving
// order. A nil evaluator falls back to template-unaware rules.
func VisibleFields(page schema.Page, answers map[string]any, eval Evaluator) []schema.Field {
	if eval == nil {
		eval = Rules{}
	}
	out := make([]schema.Field, 0, len(page.Fields))
	for _, field := range page.Fields {
		if eval.Visible(field, answers) {
			out = append(out, field)
		}
	}
	return out
}
