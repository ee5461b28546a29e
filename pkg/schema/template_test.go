package schema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func twoPageTemplate() *Template {
	return &Template{
		ID:   "tmpl-1",
		Name: "Feedback",
		Pages: []Page{
			{
				ID: "p1",
				Fields: []Field{
					{ID: "f1", Type: FieldShortText, Label: "Name"},
					{ID: "f2", Type: FieldEmail, Label: "Email"},
				},
			},
			{
				ID: "p2",
				Fields: []Field{
					{
						ID:    "f3",
						Type:  FieldLongText,
						Label: "Details",
						Logic: []Condition{{FieldID: "f2", Operator: OpIsFilled}},
					},
				},
			},
		},
	}
}

func TestNewTemplateStartsWithOnePage(t *testing.T) {
	t.Parallel()

	tmpl := NewTemplate("Untitled")
	if tmpl.Name != "Untitled" {
		t.Fatalf("name = %q, want %q", tmpl.Name, "Untitled")
	}
	if len(tmpl.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(tmpl.Pages))
	}
	if tmpl.Pages[0].ID == "" {
		t.Fatal("first page has no id")
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	min := 3
	tmpl := twoPageTemplate()
	tmpl.Pages[0].Fields[0].Validation.MinLength = &min

	clone := tmpl.Clone()
	if diff := cmp.Diff(tmpl, clone); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	clone.Pages[0].Fields[0].Label = "changed"
	*clone.Pages[0].Fields[0].Validation.MinLength = 9
	if tmpl.Pages[0].Fields[0].Label != "Name" {
		t.Fatal("clone shares field storage with original")
	}
	if *tmpl.Pages[0].Fields[0].Validation.MinLength != 3 {
		t.Fatal("clone shares validation pointer with original")
	}
}

func TestRemovePageRejectsLastPage(t *testing.T) {
	t.Parallel()

	tmpl := NewTemplate("One pager")
	err := tmpl.RemovePage(tmpl.Pages[0].ID)
	if !errors.Is(err, ErrLastPage) {
		t.Fatalf("err = %v, want ErrLastPage", err)
	}
}

func TestRemovePageStripsRulesReferencingItsFields(t *testing.T) {
	t.Parallel()

	tmpl := twoPageTemplate()
	// f3 on p2 references f2 on p1; removing p1 must strip that rule.
	if err := tmpl.RemovePage("p1"); err != nil {
		t.Fatalf("RemovePage: %v", err)
	}
	if got := len(tmpl.Pages); got != 1 {
		t.Fatalf("pages = %d, want 1", got)
	}
	if logic := tmpl.Pages[0].Fields[0].Logic; len(logic) != 0 {
		t.Fatalf("dangling logic survived: %+v", logic)
	}
}

func TestRemoveFieldStripsRulesReferencingIt(t *testing.T) {
	t.Parallel()

	tmpl := twoPageTemplate()
	if err := tmpl.RemoveField("p1", "f2"); err != nil {
		t.Fatalf("RemoveField: %v", err)
	}
	if _, ok := tmpl.Field("f2"); ok {
		t.Fatal("f2 still present after removal")
	}
	if logic := tmpl.Pages[1].Fields[0].Logic; len(logic) != 0 {
		t.Fatalf("dangling logic survived: %+v", logic)
	}
}

func TestDuplicateField(t *testing.T) {
	t.Parallel()

	tmpl := twoPageTemplate()
	dup, err := tmpl.DuplicateField("p1", "f1")
	if err != nil {
		t.Fatalf("DuplicateField: %v", err)
	}
	if dup.ID == "f1" {
		t.Fatal("duplicate kept the original id")
	}

	fields := tmpl.Pages[0].Fields
	if len(fields) != 3 {
		t.Fatalf("fields = %d, want 3", len(fields))
	}
	if fields[1].ID != dup.ID {
		t.Fatalf("duplicate not inserted after original: %+v", fields)
	}
	if fields[1].Label != "Name (Copy)" {
		t.Fatalf("duplicate label = %q", fields[1].Label)
	}
	for i, f := range fields {
		if f.Order != i {
			t.Fatalf("field %d order = %d, want %d", i, f.Order, i)
		}
	}
}

func TestMovePageClampsTarget(t *testing.T) {
	t.Parallel()

	tmpl := twoPageTemplate()
	if err := tmpl.MovePage("p1", 99); err != nil {
		t.Fatalf("MovePage: %v", err)
	}
	if tmpl.Pages[1].ID != "p1" {
		t.Fatalf("page order = [%s %s], want p1 last", tmpl.Pages[0].ID, tmpl.Pages[1].ID)
	}
	if tmpl.Pages[0].Order != 0 || tmpl.Pages[1].Order != 1 {
		t.Fatalf("orders not renumbered: %d %d", tmpl.Pages[0].Order, tmpl.Pages[1].Order)
	}
}

func TestAddFieldRenumbersOrders(t *testing.T) {
	t.Parallel()

	tmpl := twoPageTemplate()
	if _, err := tmpl.AddField("p1", Field{ID: "f9", Type: FieldNumber}); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	fields := tmpl.Pages[0].Fields
	if fields[len(fields)-1].ID != "f9" {
		t.Fatalf("new field not appended: %+v", fields)
	}
	for i, f := range fields {
		if f.Order != i {
			t.Fatalf("field %d order = %d, want %d", i, f.Order, i)
		}
	}
}
