package backend

import (
	"errors"
	"fmt"
	"strings"
)

// internalError reports a state the resolver should have made impossible,
// such as a precision value outside the known set reaching the decorator.
type internalError struct{ msg string }

func (e internalError) Error() string { return "internal consistency: " + e.msg }

// ErrInternal constructs an internal-consistency error.
func ErrInternal(format string, a ...any) error {
	return internalError{msg: fmt.Sprintf(format, a...)}
}

func IsInternal(err error) bool {
	var e internalError
	return errors.As(err, &e)
}

// incompatibleError reports two features that cannot be combined on a model.
type incompatibleError struct {
	feature string
	with    string
}

func (e incompatibleError) Error() string {
	return fmt.Sprintf("%s with %s is not available", e.feature, e.with)
}

// ErrIncompatible constructs an incompatibility error.
func ErrIncompatible(feature, with string) error {
	return incompatibleError{feature: feature, with: with}
}

func IsIncompatible(err error) bool {
	var e incompatibleError
	return errors.As(err, &e)
}

// unconsumedError carries option tokens nobody recognised.
type unconsumedError struct {
	where string
	args  []string
}

func (e unconsumedError) Error() string {
	return fmt.Sprintf("%s: expected no unknown args at this point, found [%s]", e.where, strings.Join(e.args, " "))
}

// ErrUnconsumedArgs constructs the leftover-arguments error.
func ErrUnconsumedArgs(where string, args []string) error {
	return unconsumedError{where: where, args: append([]string{}, args...)}
}

func IsUnconsumedArgs(err error) bool {
	var e unconsumedError
	return errors.As(err, &e)
}
