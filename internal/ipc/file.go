package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	requestsDir  = "requests"
	responsesDir = "responses"
	jsonExt      = ".json"
)

// FileTransport exchanges JSON files under a shared directory:
//
//	{dir}/requests/{id}.json
//	{dir}/responses/{tag}-{id}.json
//
// Every write goes to a temp file in the target directory and is renamed
// into place, so readers never observe a partial document.
type FileTransport struct {
	dir  string
	tags []string
}

// FileOption configures a FileTransport.
type FileOption func(*FileTransport)

// WithResponderTags replaces the tags whose responses Cleanup removes.
func WithResponderTags(tags ...string) FileOption {
	return func(f *FileTransport) {
		if len(tags) > 0 {
			f.tags = append([]string(nil), tags...)
		}
	}
}

// NewFileTransport creates the requests and responses directories under dir.
func NewFileTransport(dir string, opts ...FileOption) (*FileTransport, error) {
	f := &FileTransport{dir: dir, tags: DefaultResponderTags()}
	for _, opt := range opts {
		opt(f)
	}
	for _, sub := range []string{requestsDir, responsesDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", sub, err)
		}
	}
	return f, nil
}

// Dir returns the root exchange directory.
func (f *FileTransport) Dir() string { return f.dir }

// RequestsDir returns the directory holding pending requests.
func (f *FileTransport) RequestsDir() string { return filepath.Join(f.dir, requestsDir) }

// ResponsesDir returns the directory holding responses.
func (f *FileTransport) ResponsesDir() string { return filepath.Join(f.dir, responsesDir) }

// RequestPath returns the path of the request file for id.
func (f *FileTransport) RequestPath(id string) string {
	return filepath.Join(f.dir, requestsDir, id+jsonExt)
}

// ResponsePath returns the path of the response file for (id, tag).
func (f *FileTransport) ResponsePath(id, tag string) string {
	return filepath.Join(f.dir, responsesDir, tag+"-"+id+jsonExt)
}

func (f *FileTransport) WriteRequest(ctx context.Context, req Request) error {
	if err := checkID(req.ID); err != nil {
		return err
	}
	path := f.RequestPath(req.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateRequest, req.ID)
	}
	return writeJSONAtomic(path, req)
}

func (f *FileTransport) ReadResponse(ctx context.Context, id, tag string) (Response, bool, error) {
	if err := checkID(id); err != nil {
		return Response{}, false, err
	}
	data, err := os.ReadFile(f.ResponsePath(id, tag))
	if errors.Is(err, fs.ErrNotExist) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, fmt.Errorf("read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		// A responder that writes in place can expose a partial file; treat
		// it as not yet written and let the next poll retry.
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Response{}, false, nil
		}
		return Response{}, false, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp, true, nil
}

// Cleanup removes the request file and the response file of every
// configured responder tag. Missing files are not an error.
func (f *FileTransport) Cleanup(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	paths := []string{f.RequestPath(id)}
	for _, tag := range f.tags {
		paths = append(paths, f.ResponsePath(id, tag))
	}

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteResponse stores resp under (resp.RequestID, tag), replacing any
// earlier response.
func (f *FileTransport) WriteResponse(tag string, resp Response) error {
	if err := checkID(resp.RequestID); err != nil {
		return err
	}
	return writeJSONAtomic(f.ResponsePath(resp.RequestID, tag), resp)
}

// HasResponse reports whether a response file exists for (id, tag).
func (f *FileTransport) HasResponse(id, tag string) bool {
	_, err := os.Stat(f.ResponsePath(id, tag))
	return err == nil
}

// ReadRequest loads the request file for id.
func (f *FileTransport) ReadRequest(id string) (Request, error) {
	if err := checkID(id); err != nil {
		return Request{}, err
	}
	return readRequestFile(f.RequestPath(id))
}

// PendingIDs lists request ids currently on disk, sorted.
func (f *FileTransport) PendingIDs() ([]string, error) {
	entries, err := os.ReadDir(f.RequestsDir())
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if id, ok := requestIDFromName(e.Name()); ok && !e.IsDir() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// requestIDFromName extracts the id from a request file name, ignoring
// in-flight temp files.
func requestIDFromName(name string) (string, bool) {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, jsonExt) {
		return "", false
	}
	id := strings.TrimSuffix(name, jsonExt)
	if checkID(id) != nil {
		return "", false
	}
	return id, true
}

func readRequestFile(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
