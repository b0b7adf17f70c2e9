package pipeline

import (
	"errors"
	"fmt"
)

// outOfOrderError is returned when a step is requested from the wrong state.
type outOfOrderError struct {
	at   State
	want State
}

func (e outOfOrderError) Error() string {
	return fmt.Sprintf("pipeline is %s, cannot move to %s", e.at, e.want)
}

func IsOutOfOrder(err error) bool {
	var e outOfOrderError
	return errors.As(err, &e)
}

// modelNotFoundError indicates an unknown model id.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a not-found error for id.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}
