package assistant

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by errors caused by a malformed chat request.
var ErrValidation = errors.New("invalid request")

// ErrEmptyResponse is reported when the model returns no candidates.
var ErrEmptyResponse = errors.New("empty response from model")

// UpstreamModelError wraps a failed model call.  Stage is "initial" or
// "final".
type UpstreamModelError struct {
	Stage string
	Err   error
}

func (e *UpstreamModelError) Error() string {
	return fmt.Sprintf("model call (%s) failed: %v", e.Stage, e.Err)
}

func (e *UpstreamModelError) Unwrap() error { return e.Err }
