package predicate

import (
	"errors"
	"fmt"

	"github.com/asaidimu/go-rsql/core/query"
)

var (
	// ErrUnsupportedOperator is returned by Compile when a comparison uses an
	// operator that has not been registered.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrIncompatibleTypes is returned by a predicate when an ordering
	// operator compares values that are neither both numeric nor both strings.
	ErrIncompatibleTypes = errors.New("incompatible types")
)

// Error is the structured error returned by compilation and evaluation.
// Err is one of the sentinels above, so errors.Is works on it.
type Error struct {
	// Err is the error category.
	Err error
	// Operator is the comparison operator involved.
	Operator query.ComparisonOperator
	// Selector is the field path of the comparison, empty for the record itself.
	Selector string
	// Message is an optional detail.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("predicate: %v: %s", e.Err, e.Operator)
	if e.Selector != "" {
		msg += " on " + e.Selector
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap returns the error category.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnsupportedOperator reports whether err was caused by an unsupported operator.
func IsUnsupportedOperator(err error) bool {
	return errors.Is(err, ErrUnsupportedOperator)
}

// IsIncompatibleTypes reports whether err was caused by an ordering comparison
// between incompatible types.
func IsIncompatibleTypes(err error) bool {
	return errors.Is(err, ErrIncompatibleTypes)
}
