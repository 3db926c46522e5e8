package fetch

import (
	"errors"
	"fmt"
)

// Kind classifies fetch failures.
type Kind int

const (
	// KindNetwork covers transport errors and non-success statuses.
	KindNetwork Kind = iota + 1
	// KindFormat covers bodies whose shape is not a recognized feed payload.
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against *Error.
var (
	ErrNetwork = errors.New("feed unavailable")
	ErrFormat  = errors.New("unrecognized feed format")
)

// Error is returned by Fetch. Status is set for non-success HTTP responses.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s error: HTTP %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrFormat:
		return e.Kind == KindFormat
	}
	return false
}
