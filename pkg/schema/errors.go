package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLastPage rejects removing the only remaining page.
	ErrLastPage = errors.New("schema: template must keep at least one page")
	// ErrPageNotFound reports a missing page id.
	ErrPageNotFound = errors.New("schema: page not found")
	// ErrFieldNotFound reports a missing field id.
	ErrFieldNotFound = errors.New("schema: field not found")
)

// Issue is one structural problem found while checking a template document.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// IntegrityError is fatal at load time: the document is parseable but
// structurally unsound (empty page set, duplicate ids, dangling conditional
// references). It must be surfaced before any rendering or navigation begins.
type IntegrityError struct {
	Issues []Issue
}

func (e *IntegrityError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: invalid template"
	}
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			msgs = append(msgs, issue.Path+": "+issue.Message)
			continue
		}
		msgs = append(msgs, issue.Message)
	}
	return fmt.Sprintf("schema: invalid template: %s", strings.Join(msgs, "; "))
}

// Validate checks the structural invariants of a template document. It
// collects every issue rather than stopping at the first so authoring tools
// can surface them all at once.
func Validate(t *Template) error {
	if t == nil {
		return &IntegrityError{Issues: []Issue{{Message: "template is nil"}}}
	}

	var issues []Issue
	if len(t.Pages) == 0 {
		issues = append(issues, Issue{Path: "pages", Message: "template has no pages"})
	}

	pageIDs := make(map[string]struct{}, len(t.Pages))
	fieldIDs := make(map[string]struct{})
	for _, page := range t.Pages {
		if page.ID == "" {
			issues = append(issues, Issue{Path: "pages", Message: "page id is empty"})
			continue
		}
		if _, dup := pageIDs[page.ID]; dup {
			issues = append(issues, Issue{Path: "pages." + page.ID, Message: "duplicate page id"})
		}
		pageIDs[page.ID] = struct{}{}

		for _, field := range page.Fields {
			if field.ID == "" {
				issues = append(issues, Issue{Path: "pages." + page.ID, Message: "field id is empty"})
				continue
			}
			if _, dup := fieldIDs[field.ID]; dup {
				issues = append(issues, Issue{Path: "fields." + field.ID, Message: "duplicate field id"})
			}
			fieldIDs[field.ID] = struct{}{}
		}
	}

	for _, page := range t.Pages {
		for _, field := range page.Fields {
			for _, rule := range field.Logic {
				path := "fields." + field.ID + ".conditionalLogic"
				if rule.FieldID == "" {
					issues = append(issues, Issue{Path: path, Message: "rule source field id is empty"})
					continue
				}
				if rule.FieldID == field.ID {
					issues = append(issues, Issue{Path: path, Message: "rule references its own field"})
					continue
				}
				if _, ok := fieldIDs[rule.FieldID]; !ok {
					issues = append(issues, Issue{
						Path:    path,
						Message: fmt.Sprintf("rule references unknown field %q", rule.FieldID),
					})
				}
			}
		}
	}

	if len(issues) > 0 {
		return &IntegrityError{Issues: issues}
	}
	return nil
}
