package ipc

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout means no response was observed in time. Callers may retry.
	ErrTimeout = errors.New("ipc: timed out waiting for response")

	// ErrInvalidResponse means a response was found but is malformed.
	ErrInvalidResponse = errors.New("ipc: invalid response")

	// ErrInvalidID means a request id is unsafe to use as an artifact name.
	ErrInvalidID = errors.New("ipc: invalid request id")

	// ErrDuplicateRequest means a request with the same id already exists.
	ErrDuplicateRequest = errors.New("ipc: duplicate request id")
)

// RemoteError carries an application error reported by the responder. It is
// distinct from ErrTimeout and should not be retried blindly.
type RemoteError struct {
	RequestID string
	Type      string
	Message   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("ipc: %s %s failed: %s", e.Type, e.RequestID, e.Message)
}
