package session

import "errors"

var (
	// ErrInvalidPhaseTransition indicates an operation was invoked out
	// of order. The session state is left unchanged; the caller may
	// retry with a valid operation.
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")

	// ErrSessionDone indicates an operation was invoked after the final
	// round completed.
	ErrSessionDone = errors.New("session is done")
)
