package schema

import "time"

// FieldType enumerates the closed set of field kinds a template can carry.
// Unknown values still decode (forward compatibility with older documents);
// consumers treat them as plain text via the generic input contract.
type FieldType string

const (
	FieldShortText      FieldType = "short-text"
	FieldLongText       FieldType = "long-text"
	FieldEmail          FieldType = "email"
	FieldPhone          FieldType = "phone"
	FieldURL            FieldType = "url"
	FieldPassword       FieldType = "password"
	FieldNumber         FieldType = "number"
	FieldMultipleChoice FieldType = "multiple-choice"
	FieldCheckboxes     FieldType = "checkboxes"
	FieldDropdown       FieldType = "dropdown"
	FieldPictureChoice  FieldType = "picture-choice"
	FieldDate           FieldType = "date"
	FieldTime           FieldType = "time"
	FieldDateTime       FieldType = "date-time"
	FieldDateRange      FieldType = "date-range"
	FieldRating         FieldType = "rating"
	FieldRanking        FieldType = "ranking"
	FieldSlider         FieldType = "slider"
	FieldOpinionScale   FieldType = "opinion-scale"
	FieldFileUpload     FieldType = "file-upload"
	FieldSignature      FieldType = "signature"
	FieldColorPicker    FieldType = "color-picker"
	FieldLocation       FieldType = "location"
	FieldAddress        FieldType = "address"
	FieldCurrency       FieldType = "currency"
	FieldHeading        FieldType = "heading"
	FieldParagraph      FieldType = "paragraph"
	FieldBanner         FieldType = "banner"
	FieldDivider        FieldType = "divider"
	FieldImage          FieldType = "image"
	FieldVideo          FieldType = "video"
)

// Types returns every known field type in declaration order.
func Types() []FieldType {
	return []FieldType{
		FieldShortText, FieldLongText, FieldEmail, FieldPhone, FieldURL,
		FieldPassword, FieldNumber, FieldMultipleChoice, FieldCheckboxes,
		FieldDropdown, FieldPictureChoice, FieldDate, FieldTime,
		FieldDateTime, FieldDateRange, FieldRating, FieldRanking,
		FieldSlider, FieldOpinionScale, FieldFileUpload, FieldSignature,
		FieldColorPicker, FieldLocation, FieldAddress, FieldCurrency,
		FieldHeading, FieldParagraph, FieldBanner, FieldDivider,
		FieldImage, FieldVideo,
	}
}

// Known reports whether the type belongs to the closed variant set.
func (t FieldType) Known() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}
	return false
}

// Structural reports whether the field is display-only and carries no answer.
// Structural fields are exempt from validation and from visibility gating on
// answers, and never appear in submission documents.
func (t FieldType) Structural() bool {
	switch t {
	case FieldHeading, FieldParagraph, FieldBanner, FieldDivider, FieldImage, FieldVideo:
		return true
	default:
		return false
	}
}

// Answerable reports whether the field collects a value from the respondent.
func (t FieldType) Answerable() bool {
	return !t.Structural()
}

// HasOptions reports whether the field draws its values from an option list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldMultipleChoice, FieldCheckboxes, FieldDropdown, FieldPictureChoice, FieldRanking:
		return true
	default:
		return false
	}
}

// Theme display modes.
const (
	ModeLight = "light"
	ModeDark  = "dark"
)

// Theme carries the visual accent applied when a template is rendered. The
// engine only stores it; display is the host application's concern.
type Theme struct {
	AccentColor string `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
	Mode        string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// CoverPage is the optional informational state shown before the first page.
type CoverPage struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ShowCover   bool   `json:"showCover" yaml:"showCover"`
}

// ValidationRules holds the per-field constraints evaluated by the validator.
// Pointer bounds distinguish "unset" from zero.
type ValidationRules struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// Option is one selectable entry for choice fields.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Operator enumerates the supported single-field comparisons for conditional
// visibility. Composition across rules on one field is conjunctive only.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not-equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not-contains"
	OpGreaterThan Operator = "greater-than"
	OpLessThan    Operator = "less-than"
	OpIsEmpty     Operator = "is-empty"
	OpIsFilled    Operator = "is-filled"
)

// Condition gates a field's visibility on another field's current answer. The
// referenced field must exist elsewhere in the template and never be the field
// carrying the rule.
type Condition struct {
	FieldID  string   `json:"fieldId" yaml:"fieldId"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Field is one question, input, or display unit inside a page.
type Field struct {
	ID          string          `json:"id" yaml:"id"`
	Type        FieldType       `json:"type" yaml:"type"`
	Label       string          `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Order       int             `json:"order" yaml:"order"`
	Validation  ValidationRules `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options     []Option        `json:"options,omitempty" yaml:"options,omitempty"`
	Logic       []Condition     `json:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`
}

// Page is an ordered group of fields shown together.
type Page struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Order       int     `json:"order" yaml:"order"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Template is the authored, reusable form definition. Its JSON shape is the
// literal wire and storage format; page and field ids are join keys for
// conditional logic and must stay stable across saves.
type Template struct {
	ID              string    `json:"id,omitempty" yaml:"id,omitempty"`
	ProjectID       string    `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	Name            string    `json:"name" yaml:"name"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Theme           Theme     `json:"theme,omitempty" yaml:"theme,omitempty"`
	Cover           CoverPage `json:"coverPage,omitempty" yaml:"coverPage,omitempty"`
	Pages           []Page    `json:"pages" yaml:"pages"`
	Published       bool      `json:"isPublished" yaml:"isPublished"`
	Slug            string    `json:"slug,omitempty" yaml:"slug,omitempty"`
	SubmissionCount int       `json:"submissionCount" yaml:"submissionCount"`
	ViewCount       int       `json:"viewCount" yaml:"viewCount"`
}

// Submission is the immutable record of one completed respondent session.
// Data is keyed by page id, then field id; answer values are scalars for
// text/number/date fields, option-value keyed boolean maps for multi-select,
// and structured values for ranges.
type Submission struct {
	ID              string                    `json:"id,omitempty"`
	TemplateID      string                    `json:"templateId"`
	Data            map[string]map[string]any `json:"data"`
	RespondentEmail string                    `json:"respondentEmail,omitempty"`
	RespondentName  string                    `json:"respondentName,omitempty"`
	StartedAt       time.Time                 `json:"startedAt,omitempty"`
	CompletedAt     time.Time                 `json:"completedAt,omitempty"`
	IPAddress       string                    `json:"ipAddress,omitempty"`
	UserAgent       string                    `json:"userAgent,omitempty"`
}
