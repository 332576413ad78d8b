package analytics

import (
	"errors"
	"fmt"
)

// ErrMissingVariant flags an envelope dispatched without a variant. That is a
// programmer error in the integration: misattributed analytics is worse than
// a dropped event, so the router never silently defaults an arm.
var ErrMissingVariant = errors.New("envelope has no variant")

// ValidationError reports a malformed or incomplete event at the normalizer
// boundary.
type ValidationError struct {
	Event string
	Field string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("event %q is missing required attribute %q", e.Event, e.Field)
	}
	return fmt.Sprintf("unknown event %q", e.Event)
}

// DispatchError reports a transport failure on the relay path. Delivery is
// at-most-once: callers may log it but must not retry.
type DispatchError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relay dispatch to %s failed: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("relay dispatch to %s failed with status %d", e.Endpoint, e.Status)
}

func (e *DispatchError) Unwrap() error { return e.Err }
