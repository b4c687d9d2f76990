package assistant

import "errors"

var (
	// ErrToolRecursionExceeded ends a turn whose model keeps requesting tools
	// after maxToolDepth round-trips.
	ErrToolRecursionExceeded = errors.New("tool recursion exceeded")

	ErrSessionBusy   = errors.New("session is busy")
	ErrSessionClosed = errors.New("session is closed")
	ErrEmptyPrompt   = errors.New("prompt is empty")
)

// NoResponse is returned when a turn produced no text.
const NoResponse = "No response."

const (
	// maxToolDepth is the number of tool round-trips allowed per turn.
	maxToolDepth = 5

	// maxContextRetries bounds resends after emergency truncation.
	maxContextRetries = 2
)

// errorText renders err the way it is shown to the user.
func errorText(err error) string {
	return "Error: " + err.Error()
}
