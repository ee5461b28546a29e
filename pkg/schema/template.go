package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewTemplate constructs a template with a single empty page, satisfying the
// at-least-one-page invariant from the start.
func NewTemplate(name string) *Template {
	t := &Template{
		Name:  strings.TrimSpace(name),
		Theme: Theme{Mode: ModeLight},
	}
	t.Pages = append(t.Pages, Page{
		ID:   NewID(),
		Name: "Page 1",
	})
	return t
}

// NewID returns a collision-free identifier for pages, fields, templates and
// submissions.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := *t
	out.Pages = make([]Page, len(t.Pages))
	for i, page := range t.Pages {
		out.Pages[i] = clonePage(page)
	}
	return &out
}

func clonePage(page Page) Page {
	out := page
	out.Fields = make([]Field, len(page.Fields))
	for i, field := range page.Fields {
		out.Fields[i] = cloneField(field)
	}
	return out
}

func cloneField(field Field) Field {
	out := field
	out.Options = append([]Option(nil), field.Options...)
	out.Logic = append([]Condition(nil), field.Logic...)
	if field.Validation.MinLength != nil {
		v := *field.Validation.MinLength
		out.Validation.MinLength = &v
	}
	if field.Validation.MaxLength != nil {
		v := *field.Validation.MaxLength
		out.Validation.MaxLength = &v
	}
	if field.Validation.Min != nil {
		v := *field.Validation.Min
		out.Validation.Min = &v
	}
	if field.Validation.Max != nil {
		v := *field.Validation.Max
		out.Validation.Max = &v
	}
	return out
}

// Page returns the page with the given id.
func (t *Template) Page(id string) (*Page, bool) {
	for i := range t.Pages {
		if t.Pages[i].ID == id {
			return &t.Pages[i], true
		}
	}
	return nil, false
}

// PageIndex returns the position of a page id, or -1.
func (t *Template) PageIndex(id string) int {
	for i := range t.Pages {
		if t.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Field returns a field by id, searching every page.
func (t *Template) Field(id string) (*Field, bool) {
	for p := range t.Pages {
		for f := range t.Pages[p].Fields {
			if t.Pages[p].Fields[f].ID == id {
				return &t.Pages[p].Fields[f], true
			}
		}
	}
	return nil, false
}

// AddPage appends a page, assigning an id when missing, and renumbers orders.
func (t *Template) AddPage(page Page) *Page {
	if page.ID == "" {
		page.ID = NewID()
	}
	if page.Name == "" {
		page.Name = fmt.Sprintf("Page %d", len(t.Pages)+1)
	}
	t.Pages = append(t.Pages, page)
	t.renumber()
	return &t.Pages[len(t.Pages)-1]
}

// RemovePage deletes a page and every conditional rule that referenced one of
// its fields. Removing the last remaining page is rejected.
func (t *Template) RemovePage(id string) error {
	idx := t.PageIndex(id)
	if idx < 0 {
		return fmt.Errorf("schema: page %q: %w", id, ErrPageNotFound)
	}
	if len(t.Pages) == 1 {
		return ErrLastPage
	}
	removed := t.Pages[idx]
	t.Pages = append(t.Pages[:idx], t.Pages[idx+1:]...)
	for _, field := range removed.Fields {
		t.stripConditions(field.ID)
	}
	t.renumber()
	return nil
}

// MovePage repositions a page; the target index is clamped to the valid range.
func (t *Template) MovePage(id string, to int) error {
	from := t.PageIndex(id)
	if from < 0 {
		return fmt.Errorf("schema: page %q: %w", id, ErrPageNotFound)
	}
	to = clamp(to, 0, len(t.Pages)-1)
	page := t.Pages[from]
	t.Pages = append(t.Pages[:from], t.Pages[from+1:]...)
	t.Pages = append(t.Pages[:to], append([]Page{page}, t.Pages[to:]...)...)
	t.renumber()
	return nil
}

// AddField appends a field to a page, assigning an id when missing.
func (t *Template) AddField(pageID string, field Field) (*Field, error) {
	page, ok := t.Page(pageID)
	if !ok {
		return nil, fmt.Errorf("schema: page %q: %w", pageID, ErrPageNotFound)
	}
	if field.ID == "" {
		field.ID = NewID()
	}
	page.Fields = append(page.Fields, field)
	t.renumber()
	return &page.Fields[len(page.Fields)-1], nil
}

// RemoveField deletes a field and strips every conditional rule elsewhere in
// the template that referenced it, keeping the document free of dangling
// references.
func (t *Template) RemoveField(pageID, fieldID string) error {
	page, ok := t.Page(pageID)
	if !ok {
		return fmt.Errorf("schema: page %q: %w", pageID, ErrPageNotFound)
	}
	idx := -1
	for i := range page.Fields {
		if page.Fields[i].ID == fieldID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("schema: field %q: %w", fieldID, ErrFieldNotFound)
	}
	page.Fields = append(page.Fields[:idx], page.Fields[idx+1:]...)
	t.stripConditions(fieldID)
	t.renumber()
	return nil
}

// MoveField repositions a field within its page; the target index is clamped.
func (t *Template) MoveField(pageID, fieldID string, to int) error {
	page, ok := t.Page(pageID)
	if !ok {
		return fmt.Errorf("schema: page %q: %w", pageID, ErrPageNotFound)
	}
	from := -1
	for i := range page.Fields {
		if page.Fields[i].ID == fieldID {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("schema: field %q: %w", fieldID, ErrFieldNotFound)
	}
	to = clamp(to, 0, len(page.Fields)-1)
	field := page.Fields[from]
	page.Fields = append(page.Fields[:from], page.Fields[from+1:]...)
	page.Fields = append(page.Fields[:to], append([]Field{field}, page.Fields[to:]...)...)
	t.renumber()
	return nil
}

// DuplicateField copies a field in place with a fresh id and a "(Copy)"
// suffix on its label. The copy keeps options and validation but drops nothing
// else; conditional rules referencing other fields are preserved.
func (t *Template) DuplicateField(pageID, fieldID string) (*Field, error) {
	page, ok := t.Page(pageID)
	if !ok {
		return nil, fmt.Errorf("schema: page %q: %w", pageID, ErrPageNotFound)
	}
	idx := -1
	for i := range page.Fields {
		if page.Fields[i].ID == fieldID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("schema: field %q: %w", fieldID, ErrFieldNotFound)
	}
	dup := cloneField(page.Fields[idx])
	dup.ID = NewID()
	if dup.Label != "" {
		dup.Label += " (Copy)"
	}
	at := idx + 1
	page.Fields = append(page.Fields[:at], append([]Field{dup}, page.Fields[at:]...)...)
	t.renumber()
	return &page.Fields[at], nil
}

// stripConditions removes every rule referencing the given field id.
func (t *Template) stripConditions(fieldID string) {
	for p := range t.Pages {
		for f := range t.Pages[p].Fields {
			field := &t.Pages[p].Fields[f]
			if len(field.Logic) == 0 {
				continue
			}
			kept := field.Logic[:0]
			for _, rule := range field.Logic {
				if rule.FieldID != fieldID {
					kept = append(kept, rule)
				}
			}
			if len(kept) == 0 {
				field.Logic = nil
			} else {
				field.Logic = kept
			}
		}
	}
}

// renumber rewrites page and field orders densely starting at 0.
func (t *Template) renumber() {
	for p := range t.Pages {
		t.Pages[p].Order = p
		for f := range t.Pages[p].Fields {
			t.Pages[p].Fields[f].Order = f
		}
	}
}

// ClampPageIndex maps a possibly stale page pointer to the nearest valid page,
// used by consuming sessions after a page removal.
func (t *Template) ClampPageIndex(idx int) int {
	if len(t.Pages) == 0 {
		return 0
	}
	return clamp(idx, 0, len(t.Pages)-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
