// Package inputs maps field types to input contracts: the value shape a
// renderer must collect and hand back for each kind of field. The mapping is
// total over the closed variant set; unknown types fall back to the generic
// single-line text contract so older persisted documents keep working.
package inputs

import "github.com/goliatone/go-formflow/pkg/schema"

// Kind names the value shape a contract collects.
type Kind string

const (
	// KindText collects a single-line string.
	KindText Kind = "text"
	// KindMultiline collects a multi-line string.
	KindMultiline Kind = "multiline"
	// KindSecret collects a masked string.
	KindSecret Kind = "secret"
	// KindChoice collects one option value as a string.
	KindChoice Kind = "choice"
	// KindMultiChoice collects a map of booleans keyed by option value.
	KindMultiChoice Kind = "multi-choice"
	// KindOrdered collects option values in respondent-chosen order.
	KindOrdered Kind = "ordered"
	// KindNumeric collects a numeric string.
	KindNumeric Kind = "numeric"
	// KindScale collects a bounded integer.
	KindScale Kind = "scale"
	// KindRange collects a {start, end} pair of date strings.
	KindRange Kind = "range"
	// KindAttachment collects an upload reference string.
	KindAttachment Kind = "attachment"
	// KindDisplay renders structural content and collects nothing.
	KindDisplay Kind = "display"
)

// Contract fixes how an input for a field type behaves: the shape of its
// answer, whether it consumes the field's option list, and scale bounds where
// a bounded integer is collected.
type Contract struct {
	Kind       Kind
	Multiple   bool
	UsesOption bool
	Min, Max   int
}

// HasValue reports whether the contract collects an answer at all.
func (c Contract) HasValue() bool {
	return c.Kind != KindDisplay
}

// Zero returns the empty answer value in the contract's shape.
func (c Contract) Zero() any {
	switch c.Kind {
	case KindDisplay:
		return nil
	case KindMultiChoice:
		return map[string]bool{}
	case KindOrdered:
		return []string{}
	case KindRange:
		return map[string]string{"start": "", "end": ""}
	case KindScale:
		return 0
	default:
		return ""
	}
}

// genericText is the forward-compatibility fallback for unknown field types.
var genericText = Contract{Kind: KindText}

// For resolves the input contract for a field type using the default
// registry.
func For(t schema.FieldType) Contract {
	return defaultRegistry.Resolve(t)
}

// ForField resolves the contract for a concrete field.
func ForField(field schema.Field) Contract {
	return For(field.Type)
}
