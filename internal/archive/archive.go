package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/suykerbuyk/physics-lens/internal/ipc"
)

const ext = ".json.zst"

// Exchange is one archived request/response pair.
type Exchange struct {
	Request    ipc.Request  `json:"request"`
	Response   ipc.Response `json:"response"`
	ArchivedAt time.Time    `json:"archivedAt"`
}

// Store writes finished IPC exchanges to dir as {id}.json.zst.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a Store rooted at dir. The directory is created on the
// first Archive call.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Dir returns the archive directory.
func (s *Store) Dir() string { return s.dir }

// Archive compresses the exchange into dir/{request-id}.json.zst.
func (s *Store) Archive(req ipc.Request, resp ipc.Response) error {
	_, err := s.write(Exchange{Request: req, Response: resp, ArchivedAt: s.now().UTC()})
	return err
}

func (s *Store) write(x Exchange) (string, error) {
	id := x.Request.ID
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("cannot archive request id %q", id)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	destPath := s.Path(id)
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if err := json.NewEncoder(encoder).Encode(x); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Load decompresses the archived exchange for id.
func (s *Store) Load(id string) (*Exchange, error) {
	src, err := os.Open(s.Path(id))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	var x Exchange
	if err := json.NewDecoder(decoder).Decode(&x); err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return &x, nil
}

// IsArchived returns true if an archive file exists for the request id.
func (s *Store) IsArchived(id string) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Path returns the deterministic archive path for a request id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+ext)
}

// List returns archived request ids, sorted. A missing directory is empty.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if id, ok := strings.CutSuffix(e.Name(), ext); ok && !e.IsDir() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
