package coordinator

import "fmt"

// ValidationError is a precondition failure caught before any network
// effect: a missing required field, or a writer not matching the
// logged-in user.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// WriteFailedError is a failed step of a multi-step write. No
// compensating action is taken for steps that already succeeded: an
// uploaded blob whose document write failed afterwards stays behind as
// an orphan.
type WriteFailedError struct {
	Step string
	Err  error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Step, e.Err)
}

func (e *WriteFailedError) Unwrap() error {
	return e.Err
}
