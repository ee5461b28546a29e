package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func surveyTemplate() *schema.Template {
	return &schema.Template{
		ID:   "tmpl-1",
		Name: "Survey",
		Pages: []schema.Page{
			{
				ID: "p1",
				Fields: []schema.Field{
					{
						ID:         "email",
						Type:       schema.FieldEmail,
						Label:      "Email",
						Validation: schema.ValidationRules{Required: true},
					},
					{
						ID:         "vip-code",
						Type:       schema.FieldShortText,
						Label:      "VIP code",
						Validation: schema.ValidationRules{Required: true},
						Logic: []schema.Condition{
							{FieldID: "email", Operator: schema.OpEquals, Value: "vip@example.com"},
						},
					},
				},
			},
			{
				ID: "p2",
				Fields: []schema.Field{
					{ID: "comments", Type: schema.FieldLongText, Label: "Comments"},
				},
			},
		},
	}
}

func coveredTemplate() *schema.Template {
	tmpl := surveyTemplate()
	tmpl.Cover = schema.CoverPage{Title: "Welcome", ShowCover: true}
	return tmpl
}

func TestNewRejectsBrokenTemplate(t *testing.T) {
	t.Parallel()

	_, err := New(&schema.Template{Name: "Empty"})
	var integrity *schema.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want *schema.IntegrityError", err)
	}
}

func TestStartsOnFirstPageWithoutCover(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.State() != StatePage || s.PageIndex() != 0 {
		t.Fatalf("state = %s idx = %d, want page 0", s.State(), s.PageIndex())
	}
}

func TestCoverFlow(t *testing.T) {
	t.Parallel()

	s, err := New(coveredTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.State() != StateCover {
		t.Fatalf("state = %s, want cover", s.State())
	}
	if _, ok := s.Progress(); ok {
		t.Fatal("progress defined on cover")
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != StatePage || s.PageIndex() != 0 {
		t.Fatalf("state = %s idx = %d after start", s.State(), s.PageIndex())
	}

	// Previous from the first page returns to the cover, keeping answers.
	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if s.State() != StateCover {
		t.Fatalf("state = %s, want cover", s.State())
	}
	if _, ok := s.Answer("email"); !ok {
		t.Fatal("answer lost crossing back to cover")
	}
}

func TestHiddenRequiredFieldDoesNotBlockNext(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "someone@example.com"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next blocked by hidden required field: %v", err)
	}
	if s.PageIndex() != 1 {
		t.Fatalf("idx = %d, want 1", s.PageIndex())
	}
}

func TestVisibleRequiredFieldBlocksNext(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "vip@example.com"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	err = s.Next()
	var nav *NavigationError
	if !errors.As(err, &nav) {
		t.Fatalf("err = %v, want *NavigationError", err)
	}
	if nav.Message != RequiredFieldsMessage {
		t.Fatalf("message = %q", nav.Message)
	}
	want := map[string]string{"vip-code": validation.RequiredMessage}
	if diff := cmp.Diff(want, nav.Fields); diff != "" {
		t.Fatalf("fields (-want +got):\n%s", diff)
	}
	if s.PageIndex() != 0 {
		t.Fatalf("idx moved to %d on rejected transition", s.PageIndex())
	}

	if err := s.SetAnswer("vip-code", "1234"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next after filling: %v", err)
	}
}

func TestSetAnswerClearsOnlyThatFieldError(t *testing.T) {
	t.Parallel()

	tmpl := surveyTemplate()
	tmpl.Pages[0].Fields[1].Logic = nil // both fields required and visible

	s, err := New(tmpl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Next(); err == nil {
		t.Fatal("Next passed with both required fields empty")
	}
	if got := len(s.FieldErrors()); got != 2 {
		t.Fatalf("errors = %d, want 2", got)
	}

	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	errs := s.FieldErrors()
	if _, still := errs["email"]; still {
		t.Fatal("email error survived its answer")
	}
	if _, kept := errs["vip-code"]; !kept {
		t.Fatal("unrelated error was cleared")
	}
}

func TestPreviousKeepsAnswersAndClearsErrors(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Previous(); err != nil {
		t.Fatalf("Previous: %v", err)
	}
	if s.PageIndex() != 0 {
		t.Fatalf("idx = %d, want 0", s.PageIndex())
	}
	if v, _ := s.Answer("email"); v != "a@b.co" {
		t.Fatalf("answer = %v, want preserved", v)
	}
	if len(s.FieldErrors()) != 0 {
		t.Fatal("errors survived Previous")
	}

	if err := s.Previous(); !errors.Is(err, ErrAtStart) {
		t.Fatalf("Previous at start = %v, want ErrAtStart", err)
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok := s.Progress()
	if !ok || got != 50 {
		t.Fatalf("progress = %v %v, want 50 true", got, ok)
	}

	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	got, ok = s.Progress()
	if !ok || got != 100 {
		t.Fatalf("progress = %v %v, want 100 true", got, ok)
	}
}

func TestNextOnLastPage(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Next(); !errors.Is(err, ErrNoNextPage) {
		t.Fatalf("Next on last page = %v, want ErrNoNextPage", err)
	}
}

func TestSubmitOnlyFromLastPage(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Submit(context.Background(), nil); !errors.Is(err, ErrNotLastPage) {
		t.Fatalf("Submit from first page = %v, want ErrNotLastPage", err)
	}
}

func TestSubmitIsTerminal(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Submit(context.Background(), nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.State() != StateSubmitted {
		t.Fatalf("state = %s, want submitted", s.State())
	}

	if err := s.Submit(context.Background(), nil); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("second Submit = %v, want ErrSubmitted", err)
	}
	if err := s.SetAnswer("comments", "late"); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("SetAnswer after submit = %v, want ErrSubmitted", err)
	}
	if err := s.Previous(); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("Previous after submit = %v, want ErrSubmitted", err)
	}
}

func TestFailedDeliveryLeavesSessionOnPage(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	boom := errors.New("network down")
	err = s.Submit(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Submit = %v, want wrapped deliver error", err)
	}
	if s.State() != StatePage {
		t.Fatalf("state = %s after failed delivery, want page", s.State())
	}

	// Retry succeeds without re-entering any answers.
	if err := s.Submit(context.Background(), nil); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
}

func TestSetAnswerRejectsStructuralAndUnknownFields(t *testing.T) {
	t.Parallel()

	tmpl := surveyTemplate()
	tmpl.Pages[0].Fields = append(tmpl.Pages[0].Fields, schema.Field{ID: "head", Type: schema.FieldHeading})

	s, err := New(tmpl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("head", "x"); err == nil {
		t.Fatal("structural field accepted an answer")
	}
	if err := s.SetAnswer("ghost", "x"); !errors.Is(err, schema.ErrFieldNotFound) {
		t.Fatalf("unknown field err = %v, want ErrFieldNotFound", err)
	}
}

func TestReloadTemplateDropsRemovedFieldAnswers(t *testing.T) {
	t.Parallel()

	s, err := New(surveyTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetAnswer("email", "a@b.co"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}

	edited := surveyTemplate()
	edited.Pages[0].Fields = edited.Pages[0].Fields[1:] // email removed
	edited.Pages[0].Fields[0].Logic = nil
	if err := s.ReloadTemplate(edited); err != nil {
		t.Fatalf("ReloadTemplate: %v", err)
	}
	if _, ok := s.Answer("email"); ok {
		t.Fatal("answer for removed field survived reload")
	}
}

func TestCoverBlocksPageNavigation(t *testing.T) {
	t.Parallel()

	s, err := New(coveredTemplate())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Next(); !errors.Is(err, ErrOnCover) {
		t.Fatalf("Next on cover = %v, want ErrOnCover", err)
	}
	if err := s.Submit(context.Background(), nil); !errors.Is(err, ErrOnCover) {
		t.Fatalf("Submit on cover = %v, want ErrOnCover", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); !errors.Is(err, ErrNotCover) {
		t.Fatalf("Start on a page = %v, want ErrNotCover", err)
	}
}

func TestHiddenChainDoesNotBlockOrLeak(t *testing.T) {
	t.Parallel()

	tmpl := &schema.Template{
		ID: "chained",
		Pages: []schema.Page{
			{
				ID: "p1",
				Fields: []schema.Field{
					{ID: "a", Type: schema.FieldShortText, Label: "A"},
					{ID: "b", Type: schema.FieldShortText, Label: "B", Logic: []schema.Condition{
						{FieldID: "a", Operator: schema.OpEquals, Value: "x"},
					}},
					{
						ID:         "c",
						Type:       schema.FieldShortText,
						Label:      "C",
						Validation: schema.ValidationRules{Required: true},
						Logic: []schema.Condition{
							{FieldID: "b", Operator: schema.OpEquals, Value: "y"},
						},
					},
				},
			},
		},
	}
	s, err := New(tmpl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	mustSet := func(id string, v any) {
		t.Helper()
		if err := s.SetAnswer(id, v); err != nil {
			t.Fatalf("SetAnswer(%s): %v", id, err)
		}
	}
	mustSet("a", "x")
	mustSet("b", "y")
	ids := visibleIDs(s)
	if diff := cmp.Diff([]string{"a", "b", "c"}, ids); diff != "" {
		t.Fatalf("visible with chain satisfied (-want +got):\n%s", diff)
	}

	// Toggling a hides b; c must follow its hidden source off the page even
	// though b's answer lingers, and its required rule must not block submit.
	mustSet("a", "z")
	ids = visibleIDs(s)
	if diff := cmp.Diff([]string{"a"}, ids); diff != "" {
		t.Fatalf("visible after toggling a (-want +got):\n%s", diff)
	}
	if err := s.Submit(context.Background(), nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}
}

func visibleIDs(s *Session) []string {
	fields := s.VisibleFields()
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, f.ID)
	}
	return ids
}
