package tools

import (
	"errors"
	"fmt"
)

// ErrNotAcceptingOrders is returned for restaurants that are inactive or
// not yet verified.
var ErrNotAcceptingOrders = errors.New("restaurant is not currently accepting orders")

// UnsupportedToolError reports a tool name outside the catalog.
type UnsupportedToolError struct {
	Name string
}

func (e *UnsupportedToolError) Error() string {
	return fmt.Sprintf("unsupported tool %q", e.Name)
}

// ValidationError reports a missing or malformed tool argument.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
