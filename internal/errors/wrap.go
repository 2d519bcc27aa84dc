package errors

import "fmt"

// Wrap adds context to an error at a package boundary.
// It returns nil if err is nil, allowing for safe inline usage:
//
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
// The original chain is preserved, so errors.Is() against a sentinel keeps working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
//
//	return errors.Wrapf(err, "slice %s", sliceID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
