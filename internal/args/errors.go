package args

import "errors"

// unsupportedError reports an option combination the model or device cannot
// run. It is raised before any model mutation.
type unsupportedError struct {
	option string
	reason string
}

func (e unsupportedError) Error() string { return e.option + ": " + e.reason }

// ErrUnsupported constructs a configuration error for option.
func ErrUnsupported(option, reason string) error {
	return unsupportedError{option: option, reason: reason}
}

// IsUnsupported reports whether err is (or wraps) a configuration error.
func IsUnsupported(err error) bool {
	var e unsupportedError
	return errors.As(err, &e)
}

// UnsupportedOption returns the option named by a configuration error, or "".
func UnsupportedOption(err error) string {
	var e unsupportedError
	if errors.As(err, &e) {
		return e.option
	}
	return ""
}

// usageError reports malformed input: a bad choice, a missing value.
type usageError struct {
	group string
	err   error
}

func (e usageError) Error() string { return e.group + " options: " + e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// IsUsage reports whether err is an option parsing error.
func IsUsage(err error) bool {
	var e usageError
	return errors.As(err, &e)
}
