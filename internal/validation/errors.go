package validation

import (
	"fmt"
	"strings"
)

// Kind identifies which form rule was violated.
type Kind int

const (
	MissingFields Kind = iota + 1
	InvalidAmount
	DescriptionTooShort
	NoPurposeSelected
	TooManyPurposes
	MissingCustomPurpose
	InvalidDay
	InvalidDate
	InvalidImage
	MissingFile
)

// ValidationError is a user-correctable form error. Fields names the inputs
// to mark as invalid; for MissingFields it lists exactly the empty keys.
type ValidationError struct {
	Kind   Kind
	Fields []string
}

var (
	ErrMissingFields        = &ValidationError{Kind: MissingFields}
	ErrInvalidAmount        = &ValidationError{Kind: InvalidAmount}
	ErrDescriptionTooShort  = &ValidationError{Kind: DescriptionTooShort}
	ErrNoPurposeSelected    = &ValidationError{Kind: NoPurposeSelected}
	ErrTooManyPurposes      = &ValidationError{Kind: TooManyPurposes}
	ErrMissingCustomPurpose = &ValidationError{Kind: MissingCustomPurpose}
	ErrInvalidDay           = &ValidationError{Kind: InvalidDay}
	ErrInvalidDate          = &ValidationError{Kind: InvalidDate}
	ErrInvalidImage         = &ValidationError{Kind: InvalidImage}
	ErrMissingFile          = &ValidationError{Kind: MissingFile}
)

func newError(kind Kind, fields ...string) *ValidationError {
	return &ValidationError{Kind: kind, Fields: fields}
}

// Error returns the message shown to the farmer.
func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingFields:
		if len(e.Fields) == 0 {
			return "Please fill in all fields."
		}
		return "Please fill: " + strings.Join(e.Fields, ", ")
	case InvalidAmount:
		return "Enter a valid amount greater than 0."
	case DescriptionTooShort:
		return fmt.Sprintf("Description must be at least %d characters.", MinDescriptionLength)
	case NoPurposeSelected:
		return "Select at least one purpose."
	case TooManyPurposes:
		return "You can select a maximum of 3 purposes."
	case MissingCustomPurpose:
		return "Enter custom purpose."
	case InvalidDay:
		return "Day must be a whole number."
	case InvalidDate:
		return "Enter a valid date."
	case InvalidImage:
		return "Please select a valid image file."
	case MissingFile:
		return "Please select an image file."
	default:
		return "invalid input"
	}
}

// Is matches on Kind only, so errors.Is(err, ErrInvalidAmount) works for any
// InvalidAmount error regardless of the fields it marks.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// Invalid reports whether field is marked by the error.
func (e *ValidationError) Invalid(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}
