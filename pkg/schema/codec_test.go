package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const feedbackDoc = `{
	"id": "tmpl-1",
	"name": "Feedback",
	"theme": {"accentColor": "#6366f1", "mode": "light"},
	"coverPage": {"title": "Tell us", "showCover": true},
	"pages": [
		{
			"id": "p1",
			"name": "Page 1",
			"order": 0,
			"fields": [
				{"id": "f1", "type": "short-text", "label": "Name", "order": 0},
				{
					"id": "f2",
					"type": "email",
					"label": "Email",
					"order": 1,
					"validation": {"required": true}
				},
				{
					"id": "f3",
					"type": "long-text",
					"label": "Details",
					"order": 2,
					"conditionalLogic": [
						{"fieldId": "f2", "operator": "is-filled"}
					]
				}
			]
		}
	],
	"isPublished": false,
	"submissionCount": 0,
	"viewCount": 0
}`

func TestDecodeEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	tmpl, err := DecodeJSON([]byte(feedbackDoc))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}

	data, err := EncodeJSON(tmpl)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	again, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON (second pass): %v", err)
	}
	if diff := cmp.Diff(tmpl, again); diff != "" {
		t.Fatalf("round trip drifted (-first +second):\n%s", diff)
	}
}

func TestDecodeJSONRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	if _, err := DecodeJSON([]byte(`{"name": `)); err == nil {
		t.Fatal("malformed JSON decoded without error")
	}
}

func TestDecodeJSONKeepsUnknownFieldTypes(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Future",
		"pages": [{"id": "p1", "fields": [{"id": "f1", "type": "hologram"}]}]
	}`
	tmpl, err := DecodeJSON([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if got := tmpl.Pages[0].Fields[0].Type; got != "hologram" {
		t.Fatalf("type = %q, want preserved verbatim", got)
	}
	if tmpl.Pages[0].Fields[0].Type.Known() {
		t.Fatal("unknown type reported as known")
	}
}

func TestDecodeJSONReportsAllIntegrityIssues(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Broken",
		"pages": [
			{
				"id": "p1",
				"fields": [
					{"id": "f1", "type": "short-text"},
					{"id": "f1", "type": "short-text"},
					{
						"id": "f2",
						"type": "long-text",
						"conditionalLogic": [
							{"fieldId": "f2", "operator": "is-filled"},
							{"fieldId": "ghost", "operator": "equals", "value": "x"}
						]
					}
				]
			}
		]
	}`
	_, err := DecodeJSON([]byte(doc))
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want *IntegrityError", err)
	}
	if len(integrity.Issues) != 3 {
		t.Fatalf("issues = %d (%v), want 3", len(integrity.Issues), integrity.Issues)
	}
}

func TestValidateRejectsEmptyPageSet(t *testing.T) {
	t.Parallel()

	err := Validate(&Template{Name: "Empty"})
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("err = %v, want *IntegrityError", err)
	}
}

func TestSanitizeStripsMarkup(t *testing.T) {
	t.Parallel()

	tmpl := &Template{
		Name:        `Feedback <script>alert(1)</script>`,
		Description: `<p>Welcome</p><script>alert(1)</script>`,
		Pages: []Page{
			{
				ID: "p1",
				Fields: []Field{
					{
						ID:    "f1",
						Type:  FieldShortText,
						Label: `<b>Name</b>`,
						Options: []Option{
							{ID: "o1", Label: `<img src=x onerror=alert(1)>Red`, Value: "red"},
						},
					},
				},
			},
		},
	}
	Sanitize(tmpl)

	if strings.Contains(tmpl.Name, "<") {
		t.Fatalf("name kept markup: %q", tmpl.Name)
	}
	if strings.Contains(tmpl.Description, "script") {
		t.Fatalf("description kept script: %q", tmpl.Description)
	}
	if tmpl.Pages[0].Fields[0].Label != "Name" {
		t.Fatalf("label = %q, want plain text", tmpl.Pages[0].Fields[0].Label)
	}
	if got := tmpl.Pages[0].Fields[0].Options[0].Label; got != "Red" {
		t.Fatalf("option label = %q, want %q", got, "Red")
	}
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	doc := `
name: Feedback
pages:
  - id: p1
    fields:
      - id: f1
        type: short-text
        label: Name
`
	tmpl, err := DecodeYAML([]byte(doc))
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if tmpl.Pages[0].Fields[0].Type != FieldShortText {
		t.Fatalf("type = %q", tmpl.Pages[0].Fields[0].Type)
	}
}
