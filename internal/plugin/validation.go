package plugin

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Validator performs descriptor validation before registration.
type Validator struct{}

// NewValidator returns a Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDescriptor ensures the descriptor carries a well-formed name, a
// known kind, a renderer, and a recognition hook appropriate to its kind.
func (v *Validator) ValidateDescriptor(desc Descriptor) error {
	err := validation.ValidateStruct(&desc,
		validation.Field(&desc.Name, validation.Required, validation.Match(namePattern)),
		validation.Field(&desc.Kind, validation.Required, validation.In(KindBlock, KindInline)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	if desc.Render == nil {
		return fmt.Errorf("%w: %s has no renderer", ErrInvalidDescriptor, desc.Name)
	}
	if desc.Kind == KindInline && desc.Inline == nil && desc.Extender == nil {
		return fmt.Errorf("%w: inline plugin %s has no parser", ErrInvalidDescriptor, desc.Name)
	}
	if desc.Kind == KindBlock && (desc.Inline != nil || desc.Extender != nil) {
		return fmt.Errorf("%w: block plugin %s must rely on the fence parser", ErrInvalidDescriptor, desc.Name)
	}
	return nil
}
