// Package apperror holds the error taxonomy shared by the session operations.
// Callers match with errors.Is; the wrapped messages carry the details.
package apperror

import "errors"

var (
	// ErrNotFound is returned when a user, assignment, template or snapshot does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an assignment does not belong to the requesting user.
	ErrUnauthorized = errors.New("assignment does not belong to user")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEngineExecutionFailed is returned when the engine process exits with a non-zero code.
	ErrEngineExecutionFailed = errors.New("engine execution failed")

	// ErrEngineResultInvalid is returned when the engine exits cleanly but its result file
	// is missing, unparsable or incomplete.
	ErrEngineResultInvalid = errors.New("engine result invalid")

	// ErrEngineTimeout is returned when an invocation exceeds its deadline. The process is killed.
	ErrEngineTimeout = errors.New("engine timeout")

	// ErrEngineUnavailable is returned when a topic cannot be cold started.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrConflictingActiveSession signals more than one active assignment for a user.
	// It needs manual repair and is never corrected automatically.
	ErrConflictingActiveSession = errors.New("conflicting active sessions")
)

// IsEngineFailure reports whether err came from an engine invocation.
// A failed invocation never commits a new iteration, so the request can be retried as is.
func IsEngineFailure(err error) bool {
	return errors.Is(err, ErrEngineExecutionFailed) ||
		errors.Is(err, ErrEngineResultInvalid) ||
		errors.Is(err, ErrEngineTimeout)
}
