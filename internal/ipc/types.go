package ipc

import (
	"encoding/json"
	"time"
)

// Request types and the responder tags that answer them.
const (
	TypeLensValidate   = "lens-validate"
	TypeAnchorValidate = "anchor-validate"

	TagLens   = "lens"
	TagAnchor = "anchor"
)

// DefaultResponderTags lists the responder tags whose artifacts Cleanup
// removes when a transport is not configured otherwise. A new responder type
// must be added here.
func DefaultResponderTags() []string {
	return []string{TagLens, TagAnchor}
}

// Status is the outcome carried by a Response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Request is written by the caller and read by the responder.
type Request struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Time returns the request timestamp.
func (r Request) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Response is written by the responder under (RequestID, tag).
type Response struct {
	RequestID string          `json:"requestId"`
	Status    Status          `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Success builds a success response carrying v as data.
func Success(requestID string, v any) (Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{RequestID: requestID, Status: StatusSuccess, Data: data}, nil
}

// Failure builds an error response.
func Failure(requestID string, msg string) Response {
	return Response{RequestID: requestID, Status: StatusError, Error: msg}
}
