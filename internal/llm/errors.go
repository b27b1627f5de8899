package llm

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why an AI generation could not be used.
type Kind string

const (
	KindUnavailable Kind = "unavailable" // no adapter could be selected
	KindAPI         Kind = "api"         // the backend returned an error
	KindTimeout     Kind = "timeout"     // the call exceeded its deadline
	KindMarker      Kind = "marker"      // the reply lacked required structure
)

// GenerationError describes a failed or rejected AI generation. Callers fall
// back to the local engine on any GenerationError.
type GenerationError struct {
	Kind    Kind
	Adapter string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("ai generation %s", e.Kind)
	if e.Adapter != "" {
		msg += " (" + e.Adapter + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is (or wraps) a GenerationError and
// returns it.
func IsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func classify(adapter string, err error) *GenerationError {
	kind := KindAPI
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &GenerationError{Kind: kind, Adapter: adapter, Err: err}
}
