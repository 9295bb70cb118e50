package ipc

import (
	"context"
	"fmt"
	"sync"
)

type responseKey struct {
	id  string
	tag string
}

// MemoryTransport keeps artifacts in process memory. It backs tests and
// in-process responders.
type MemoryTransport struct {
	mu        sync.Mutex
	requests  map[string]Request
	responses map[responseKey]Response
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		requests:  make(map[string]Request),
		responses: make(map[responseKey]Response),
	}
}

func (m *MemoryTransport) WriteRequest(ctx context.Context, req Request) error {
	if err := checkID(req.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[req.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRequest, req.ID)
	}
	m.requests[req.ID] = req
	return nil
}

func (m *MemoryTransport) ReadResponse(ctx context.Context, id, tag string) (Response, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.responses[responseKey{id, tag}]
	return resp, ok, nil
}

func (m *MemoryTransport) Cleanup(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, id)
	for k := range m.responses {
		if k.id == id {
			delete(m.responses, k)
		}
	}
	return nil
}

// Respond stores resp under (id, tag), replacing any earlier response.
func (m *MemoryTransport) Respond(id, tag string, resp Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[responseKey{id, tag}] = resp
}

// Request returns the pending request with the given id.
func (m *MemoryTransport) Request(id string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	return req, ok
}

// Pending returns the number of requests not yet cleaned up.
func (m *MemoryTransport) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
