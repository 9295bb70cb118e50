package ipc

import (
	"context"
	"fmt"
	"strings"
)

// Transport is the persistence medium under a Channel. These three
// operations are the whole contract; any medium implementing them can be
// swapped in without changing channel logic.
type Transport interface {
	// WriteRequest stores req under req.ID.
	WriteRequest(ctx context.Context, req Request) error
	// ReadResponse returns the response stored under (id, tag). The bool is
	// false when no response exists, including after Cleanup.
	ReadResponse(ctx context.Context, id, tag string) (Response, bool, error)
	// Cleanup removes the request and every response artifact for id.
	Cleanup(ctx context.Context, id string) error
}

// checkID rejects ids that could escape an artifact namespace.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\:`) || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
