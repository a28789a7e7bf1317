package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and server conditions.
var (
	// ErrServerClosed is returned by Run after Shutdown.
	ErrServerClosed = errors.New("server: closed")

	// ErrClientGone is returned when the client closes the connection.
	ErrClientGone = errors.New("server: client gone")

	// ErrSendQueueFull is returned when a client reads frames slower than
	// the session produces them.
	ErrSendQueueFull = errors.New("server: send queue full")

	// ErrPlaybackFailed is returned when the scenario fails and the client
	// was sent an error frame.
	ErrPlaybackFailed = errors.New("server: playback failed")
)

// SessionError wraps an error with session context for debugging.
type SessionError struct {
	SessionID string
	Op        string // Operation that failed
	Err       error  // Underlying error
}

// Error returns the error message with session context.
func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("server: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("server: session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(sessionID, op string, err error) *SessionError {
	return &SessionError{
		SessionID: sessionID,
		Op:        op,
		Err:       err,
	}
}
