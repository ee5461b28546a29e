package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// DecodeJSON parses a template document and checks structural integrity.
// Malformed JSON and integrity failures are both load-time errors; a valid
// document with unknown field types decodes cleanly. Decoding never rewrites
// content, so decode/encode round-trips are exact; authoring surfaces run
// Sanitize before persisting instead.
func DecodeJSON(data []byte) (*Template, error) {
	var t Template
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&t); err != nil {
		return nil, fmt.Errorf("schema: decode template: %w", err)
	}
	return finishDecode(&t)
}

// DecodeYAML parses a YAML template document, used for authoring fixtures and
// seed documents. Semantics match DecodeJSON.
func DecodeYAML(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("schema: decode template: %w", err)
	}
	return finishDecode(&t)
}

// EncodeJSON serializes a template to its canonical wire form.
func EncodeJSON(t *Template) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("schema: encode template: template is nil")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("schema: encode template: %w", err)
	}
	return data, nil
}

func finishDecode(t *Template) (*Template, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	return t, nil
}

var (
	policyOnce sync.Once
	richPolicy *bluemonday.Policy
	textPolicy *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		richPolicy = bluemonday.UGCPolicy()
		textPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, textPolicy
}

// Sanitize strips unsafe markup from every author-supplied text surface.
// Descriptions may carry limited rich text; names, labels and option labels
// are reduced to plain text.
func Sanitize(t *Template) {
	if t == nil {
		return
	}
	rich, plain := policies()

	t.Name = clean(plain, t.Name)
	t.Description = clean(rich, t.Description)
	t.Cover.Title = clean(plain, t.Cover.Title)
	t.Cover.Description = clean(rich, t.Cover.Description)

	for p := range t.Pages {
		page := &t.Pages[p]
		page.Name = clean(plain, page.Name)
		page.Description = clean(rich, page.Description)
		for f := range page.Fields {
			field := &page.Fields[f]
			field.Label = clean(plain, field.Label)
			field.Placeholder = clean(plain, field.Placeholder)
			field.Description = clean(rich, field.Description)
			for o := range field.Options {
				field.Options[o].Label = clean(plain, field.Options[o].Label)
			}
		}
	}
}

func clean(policy *bluemonday.Policy, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(policy.Sanitize(raw))
}
