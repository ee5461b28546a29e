// Package tui drives a respondent session from the terminal: cover, pages,
// prompts shaped by each field's input contract, and the final submit. The
// prompt layer is abstracted behind PromptDriver so the loop is testable
// without a terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-formflow/pkg/inputs"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Option configures the runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// Runner walks a session page by page over a prompt driver.
type Runner struct {
	driver PromptDriver
}

// New constructs a runner with the survey-backed driver by default.
func New(options ...Option) (*Runner, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Runner{driver: driver}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Run drives the session to completion: cover confirmation, one prompt pass
// per page with inline validation, and the terminal submit through deliver.
// Pages whose gate rejects the transition are re-prompted in place.
func (r *Runner) Run(ctx context.Context, sess *session.Session, deliver session.SubmitFunc) error {
	if sess == nil {
		return ErrNilSession
	}
	if ctx == nil {
		return errors.New("tui: context is required")
	}

	if sess.State() == session.StateCover {
		if err := r.showCover(ctx, sess.Template().Cover); err != nil {
			return err
		}
		if err := sess.Start(); err != nil {
			return err
		}
	}

	for sess.State() == session.StatePage {
		if err := r.runPage(ctx, sess); err != nil {
			return err
		}

		err := sess.Next()
		if err == nil {
			continue
		}
		if errors.Is(err, session.ErrNoNextPage) {
			err = sess.Submit(ctx, deliver)
			if err == nil {
				return nil
			}
		}
		var nav *session.NavigationError
		if errors.As(err, &nav) {
			if infoErr := r.showRejection(ctx, nav); infoErr != nil {
				return infoErr
			}
			continue
		}
		return err
	}
	return nil
}

func (r *Runner) showCover(ctx context.Context, cover schema.CoverPage) error {
	if !cover.ShowCover {
		return nil
	}
	if cover.Title != "" {
		if err := r.driver.Info(ctx, cover.Title); err != nil {
			return err
		}
	}
	if cover.Description != "" {
		if err := r.driver.Info(ctx, cover.Description); err != nil {
			return err
		}
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Start?", Default: true})
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}

// runPage prompts every currently visible field. Visibility is re-read after
// each answer so rules between fields on the same page take effect mid-page.
func (r *Runner) runPage(ctx context.Context, sess *session.Session) error {
	page, ok := sess.CurrentPage()
	if !ok {
		return nil
	}
	if page.Name != "" {
		if err := r.driver.Info(ctx, page.Name); err != nil {
			return err
		}
	}

	asked := make(map[string]struct{})
	for {
		var next *schema.Field
		for _, field := range sess.VisibleFields() {
			if _, done := asked[field.ID]; done {
				continue
			}
			f := field
			next = &f
			break
		}
		if next == nil {
			return nil
		}
		asked[next.ID] = struct{}{}

		if err := r.promptField(ctx, sess, *next); err != nil {
			return err
		}
	}
}

func (r *Runner) promptField(ctx context.Context, sess *session.Session, field schema.Field) error {
	contract := inputs.ForField(field)
	if !contract.HasValue() {
		return r.showDisplay(ctx, field)
	}

	value, err := r.collect(ctx, sess, field, contract)
	if err != nil {
		return err
	}
	return sess.SetAnswer(field.ID, value)
}

func (r *Runner) collect(ctx context.Context, sess *session.Session, field schema.Field, contract inputs.Contract) (any, error) {
	label := promptLabel(field)
	current, _ := sess.Answer(field.ID)

	switch contract.Kind {
	case inputs.KindSecret:
		return r.driver.Password(ctx, InputConfig{
			Message:   label,
			Help:      field.Description,
			Validator: fieldValidator(field),
		})

	case inputs.KindMultiline:
		return r.driver.TextArea(ctx, TextAreaConfig{
			Message: label,
			Default: asText(current),
			Help:    field.Description,
		})

	case inputs.KindChoice:
		return r.promptChoice(ctx, field, current)

	case inputs.KindMultiChoice:
		return r.promptMultiChoice(ctx, field, current)

	case inputs.KindOrdered:
		return r.promptRanking(ctx, field)

	case inputs.KindScale:
		return r.promptScale(ctx, field, contract)

	case inputs.KindRange:
		return r.promptRange(ctx, field)

	default:
		// text, numeric, and attachment references all collect a string.
		return r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   asText(current),
			Help:      helpText(field),
			Validator: fieldValidator(field),
		})
	}
}

func (r *Runner) showDisplay(ctx context.Context, field schema.Field) error {
	if field.Label != "" {
		if err := r.driver.Info(ctx, field.Label); err != nil {
			return err
		}
	}
	if field.Description != "" {
		return r.driver.Info(ctx, field.Description)
	}
	return nil
}

func (r *Runner) promptChoice(ctx context.Context, field schema.Field, current any) (any, error) {
	labels, values := optionLists(field)
	cfg := SelectConfig{
		Message:      promptLabel(field),
		Options:      labels,
		Help:         field.Description,
		DefaultIndex: indexOf(values, asText(current)),
	}
	idx, err := r.driver.Select(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(values) {
		return "", nil
	}
	return values[idx], nil
}

func (r *Runner) promptMultiChoice(ctx context.Context, field schema.Field, current any) (any, error) {
	labels, values := optionLists(field)
	cfg := SelectConfig{
		Message:  promptLabel(field),
		Options:  labels,
		Help:     field.Description,
		Defaults: selectedIndices(values, current),
	}
	picked, err := r.driver.MultiSelect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(values))
	for _, idx := range picked {
		if idx >= 0 && idx < len(values) {
			out[values[idx]] = true
		}
	}
	return out, nil
}

// promptRanking asks for one rank at a time so the respondent-chosen order
// survives, which a single multi-select cannot express.
func (r *Runner) promptRanking(ctx context.Context, field schema.Field) (any, error) {
	labels, values := optionLists(field)
	ordered := make([]string, 0, len(values))

	remainingLabels := append([]string(nil), labels...)
	remainingValues := append([]string(nil), values...)
	for rank := 1; len(remainingValues) > 0; rank++ {
		cfg := SelectConfig{
			Message: fmt.Sprintf("%s (pick #%d)", promptLabel(field), rank),
			Options: remainingLabels,
			Help:    field.Description,
		}
		idx, err := r.driver.Select(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(remainingValues) {
			break
		}
		ordered = append(ordered, remainingValues[idx])
		remainingLabels = append(remainingLabels[:idx], remainingLabels[idx+1:]...)
		remainingValues = append(remainingValues[:idx], remainingValues[idx+1:]...)
	}
	return ordered, nil
}

func (r *Runner) promptScale(ctx context.Context, field schema.Field, contract inputs.Contract) (any, error) {
	options := make([]string, 0, contract.Max-contract.Min+1)
	for n := contract.Min; n <= contract.Max; n++ {
		options = append(options, strconv.Itoa(n))
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: promptLabel(field),
		Options: options,
		Help:    field.Description,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return 0, nil
	}
	return contract.Min + idx, nil
}

func (r *Runner) promptRange(ctx context.Context, field schema.Field) (any, error) {
	start, err := r.driver.Input(ctx, InputConfig{
		Message: promptLabel(field) + " (start)",
		Help:    field.Description,
	})
	if err != nil {
		return nil, err
	}
	end, err := r.driver.Input(ctx, InputConfig{
		Message: promptLabel(field) + " (end)",
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"start": start, "end": end}, nil
}

func (r *Runner) showRejection(ctx context.Context, nav *session.NavigationError) error {
	if err := r.driver.Info(ctx, nav.Message); err != nil {
		return err
	}
	for _, msg := range nav.Fields {
		if err := r.driver.Info(ctx, "  "+msg); err != nil {
			return err
		}
	}
	return nil
}

// fieldValidator adapts the field's rules into an inline prompt validator so
// obvious mistakes are caught before the page gate runs.
func fieldValidator(field schema.Field) func(string) error {
	return func(value string) error {
		var v any = value
		if value == "" {
			v = nil
		}
		result := validation.Validate(field, v)
		if !result.OK {
			return errors.New(result.Message)
		}
		return nil
	}
}

func asText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func promptLabel(field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func helpText(field schema.Field) string {
	if field.Description != "" {
		return field.Description
	}
	return field.Placeholder
}

func optionLists(field schema.Field) (labels, values []string) {
	labels = make([]string, 0, len(field.Options))
	values = make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		labels = append(labels, label)
		values = append(values, opt.Value)
	}
	return labels, values
}

func selectedIndices(values []string, current any) []int {
	selected, ok := current.(map[string]bool)
	if !ok {
		return nil
	}
	var out []int
	for i, v := range values {
		if selected[v] {
			out = append(out, i)
		}
	}
	return out
}
