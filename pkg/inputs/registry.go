package inputs

import (
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Registry resolves input contracts by field type. Callers embedding the
// engine can override or extend the built-in dispatch; resolution of an
// unregistered type falls back to the generic text contract rather than
// erroring.
type Registry struct {
	mu        sync.RWMutex
	contracts map[schema.FieldType]Contract
}

// NewRegistry constructs a registry pre-populated with the built-in dispatch
// for every known field type.
func NewRegistry() *Registry {
	r := &Registry{contracts: make(map[schema.FieldType]Contract, len(schema.Types()))}
	r.registerBuiltins()
	return r
}

// Register installs or replaces the contract for a field type.
func (r *Registry) Register(t schema.FieldType, contract Contract) {
	if r == nil || t == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[t] = contract
}

// Resolve returns the contract for a field type, falling back to generic
// text for anything unregistered.
func (r *Registry) Resolve(t schema.FieldType) Contract {
	if r == nil {
		return genericText
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if contract, ok := r.contracts[t]; ok {
		return contract
	}
	return genericText
}

// Has reports whether a type resolves without the fallback.
func (r *Registry) Has(t schema.FieldType) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.contracts[t]
	return ok
}

var defaultRegistry = NewRegistry()

func (r *Registry) registerBuiltins() {
	register := func(contract Contract, types ...schema.FieldType) {
		for _, t := range types {
			r.contracts[t] = contract
		}
	}

	register(Contract{Kind: KindText},
		schema.FieldShortText, schema.FieldDate, schema.FieldTime,
		schema.FieldDateTime, schema.FieldColorPicker, schema.FieldLocation)
	register(Contract{Kind: KindMultiline},
		schema.FieldLongText, schema.FieldAddress)
	register(Contract{Kind: KindText}, schema.FieldEmail, schema.FieldPhone, schema.FieldURL)
	register(Contract{Kind: KindSecret}, schema.FieldPassword)
	register(Contract{Kind: KindNumeric}, schema.FieldNumber, schema.FieldCurrency)
	register(Contract{Kind: KindChoice, UsesOption: true},
		schema.FieldMultipleChoice, schema.FieldDropdown, schema.FieldPictureChoice)
	register(Contract{Kind: KindMultiChoice, Multiple: true, UsesOption: true},
		schema.FieldCheckboxes)
	register(Contract{Kind: KindOrdered, Multiple: true, UsesOption: true},
		schema.FieldRanking)
	register(Contract{Kind: KindScale, Min: 1, Max: 5}, schema.FieldRating)
	register(Contract{Kind: KindScale, Min: 0, Max: 10}, schema.FieldOpinionScale)
	register(Contract{Kind: KindNumeric}, schema.FieldSlider)
	register(Contract{Kind: KindRange}, schema.FieldDateRange)
	register(Contract{Kind: KindAttachment}, schema.FieldFileUpload, schema.FieldSignature)
	register(Contract{Kind: KindDisplay},
		schema.FieldHeading, schema.FieldParagraph, schema.FieldBanner,
		schema.FieldDivider, schema.FieldImage, schema.FieldVideo)
}
