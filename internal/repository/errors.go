// Package repository defines error types that are reused across multiple
// repositories.  These values allow higher layers such as the tool
// handlers and HTTP handlers to distinguish between failure scenarios
// with errors.Is and errors.As.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel wrapped by every NotFoundError.  Handlers
// translate it into an HTTP 404 or a "not found" tool failure.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot be applied because of the
// current state of the record, such as cancelling an order that is
// already being prepared.  Handlers should translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")

// NotFoundError names the entity and lookup key that matched nothing.  An
// order looked up with another user's ID is reported the same way as a
// missing order.
type NotFoundError struct {
	Entity string // "restaurant", "menu", "item" or "order"
	Key    string // lookup key as supplied by the caller
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func notFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}
