package credits

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no viable page or no credits were found.
	ErrNotFound = errors.New("credits not found")
	// ErrAmbiguous means several candidates were equally plausible.
	ErrAmbiguous = errors.New("ambiguous match")
)

// TransportError wraps a network or IO failure from an upstream collaborator.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a *TransportError. A nil err stays nil.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// StateForError maps a lookup error to the state reported to callers.
func StateForError(err error) LookupState {
	switch {
	case err == nil:
		return StateLoaded
	case errors.Is(err, ErrAmbiguous):
		return StateAmbiguous
	case errors.Is(err, ErrNotFound):
		return StateNotFound
	default:
		return StateError
	}
}
