package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirms     []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirms) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirms[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func terminalTemplate() *schema.Template {
	return &schema.Template{
		ID:    "tmpl-1",
		Name:  "Survey",
		Cover: schema.CoverPage{Title: "Welcome", ShowCover: true},
		Pages: []schema.Page{
			{
				ID:   "p1",
				Name: "About you",
				Fields: []schema.Field{
					{ID: "intro", Type: schema.FieldHeading, Label: "Hi there"},
					{
						ID:         "name",
						Type:       schema.FieldShortText,
						Label:      "Your name",
						Validation: schema.ValidationRules{Required: true},
					},
					{
						ID:    "color",
						Type:  schema.FieldDropdown,
						Label: "Favorite color",
						Options: []schema.Option{
							{ID: "o1", Label: "Red", Value: "red"},
							{ID: "o2", Label: "Blue", Value: "blue"},
						},
					},
				},
			},
			{
				ID: "p2",
				Fields: []schema.Field{
					{
						ID:    "toppings",
						Type:  schema.FieldCheckboxes,
						Label: "Toppings",
						Options: []schema.Option{
							{ID: "t1", Label: "Olives", Value: "olives"},
							{ID: "t2", Label: "Basil", Value: "basil"},
						},
					},
					{
						ID:    "rating",
						Type:  schema.FieldRating,
						Label: "Rate us",
					},
				},
			},
		},
	}
}

func TestRunWalksAllPagesAndSubmits(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{
		confirms:  []bool{true},
		inputs:    []string{"Ada"},
		selectIdx: []int{1, 3}, // color=blue, rating option index 3 (value 4)
		multiIdx:  [][]int{{0}},
	}
	runner, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sess, err := session.New(terminalTemplate())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}

	delivered := false
	err = runner.Run(context.Background(), sess, func(context.Context) error {
		delivered = true
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !delivered {
		t.Fatal("deliver hook never ran")
	}
	if sess.State() != session.StateSubmitted {
		t.Fatalf("state = %s, want submitted", sess.State())
	}

	answers := sess.Answers()
	if answers["name"] != "Ada" {
		t.Fatalf("name = %v", answers["name"])
	}
	if answers["color"] != "blue" {
		t.Fatalf("color = %v", answers["color"])
	}
	if selected, ok := answers["toppings"].(map[string]bool); !ok || !selected["olives"] {
		t.Fatalf("toppings = %v", answers["toppings"])
	}
	if answers["rating"] != 4 {
		t.Fatalf("rating = %v", answers["rating"])
	}

	// Cover title and page name were shown, structural field too.
	var sawCover, sawHeading bool
	for _, msg := range driver.infoMessages {
		if msg == "Welcome" {
			sawCover = true
		}
		if msg == "Hi there" {
			sawHeading = true
		}
	}
	if !sawCover || !sawHeading {
		t.Fatalf("info messages = %v", driver.infoMessages)
	}
}

func TestRunDecliningCoverAborts(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{confirms: []bool{false}}
	runner, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sess, err := session.New(terminalTemplate())
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}

	if err := runner.Run(context.Background(), sess, nil); !errors.Is(err, ErrAborted) {
		t.Fatalf("Run = %v, want ErrAborted", err)
	}
	if sess.State() != session.StateCover {
		t.Fatalf("state = %s, want cover untouched", sess.State())
	}
}

func TestRunRetriesRejectedPage(t *testing.T) {
	t.Parallel()

	tmpl := &schema.Template{
		ID: "tmpl-2",
		Pages: []schema.Page{
			{
				ID: "p1",
				Fields: []schema.Field{
					{
						ID:         "answer",
						Type:       schema.FieldLongText,
						Label:      "Answer",
						Validation: schema.ValidationRules{Required: true},
					},
				},
			},
		},
	}

	// First pass leaves the field empty; the submit gate rejects, the page
	// re-runs, and the second pass fills it.
	driver := &stubDriver{textAreas: []string{"", "done"}}
	runner, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sess, err := session.New(tmpl)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := runner.Run(context.Background(), sess, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sess.State() != session.StateSubmitted {
		t.Fatalf("state = %s", sess.State())
	}

	var sawBatch bool
	for _, msg := range driver.infoMessages {
		if msg == session.RequiredFieldsMessage {
			sawBatch = true
		}
	}
	if !sawBatch {
		t.Fatalf("batch message not shown: %v", driver.infoMessages)
	}
}

func TestRunMidPageVisibility(t *testing.T) {
	t.Parallel()

	tmpl := &schema.Template{
		ID: "tmpl-3",
		Pages: []schema.Page{
			{
				ID: "p1",
				Fields: []schema.Field{
					{
						ID:    "channel",
						Type:  schema.FieldDropdown,
						Label: "Channel",
						Options: []schema.Option{
							{ID: "o1", Label: "Email", Value: "email"},
							{ID: "o2", Label: "Other", Value: "other"},
						},
					},
					{
						ID:    "detail",
						Type:  schema.FieldShortText,
						Label: "Which one?",
						Logic: []schema.Condition{
							{FieldID: "channel", Operator: schema.OpEquals, Value: "other"},
						},
					},
				},
			},
		},
	}

	driver := &stubDriver{selectIdx: []int{1}, inputs: []string{"carrier pigeon"}}
	runner, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sess, err := session.New(tmpl)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := runner.Run(context.Background(), sess, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v, _ := sess.Answer("detail"); v != "carrier pigeon" {
		t.Fatalf("detail = %v, want gated field prompted after it became visible", v)
	}
}
