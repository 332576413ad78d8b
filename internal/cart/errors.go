package cart

import "fmt"

// PersistenceError reports unreadable or unwritable persisted cart state.
// It is always recovered at the store boundary: the caller sees an empty
// cart, never the error. A lost cart is recoverable, a failed page is not.
type PersistenceError struct {
	Op  string // "encode" or "decode"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
