package recipe

import (
	"errors"
	"fmt"
)

// RejectCode categorizes registration failures.
type RejectCode string

const (
	// ErrCodeArityMismatch indicates an ingredient or product list whose
	// length differs from the handler's declared size.
	ErrCodeArityMismatch RejectCode = "ARITY_MISMATCH"

	// ErrCodeUnknownResource indicates an ingredient naming an undeclared
	// item, fluid or tag.
	ErrCodeUnknownResource RejectCode = "UNKNOWN_RESOURCE"

	// ErrCodeInvalidIngredient indicates a nil or otherwise unusable
	// ingredient, such as an empty product.
	ErrCodeInvalidIngredient RejectCode = "INVALID_INGREDIENT"

	// ErrCodePermutationLimit indicates a recipe whose cache expansion
	// would exceed the handler's instantiation bound.
	ErrCodePermutationLimit RejectCode = "PERMUTATION_LIMIT"
)

// RejectedError reports a recipe definition refused at registration.
type RejectedError struct {
	Code    RejectCode
	Handler string
	Recipe  string
	Message string
}

func (e *RejectedError) Error() string {
	if e.Recipe != "" {
		return fmt.Sprintf("%s: %s: %s (recipe=%s)", e.Code, e.Handler, e.Message, e.Recipe)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Handler, e.Message)
}

// IsRejected reports whether err is a registration rejection.
// Uses errors.As to handle wrapped errors.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}

// RejectCodeOf returns the code of a rejection, or "" when err is not one.
func RejectCodeOf(err error) RejectCode {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
