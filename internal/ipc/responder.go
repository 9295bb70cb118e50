package ipc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileResponder serves requests written to a FileTransport. It reacts to
// fsnotify events on the requests directory and rescans it periodically so
// nothing is missed when events are dropped.
type FileResponder struct {
	router

	transport *FileTransport
	tag       string
	logger    *zap.Logger
	rescan    time.Duration

	mu       sync.Mutex
	answered map[string]struct{}
	wg       sync.WaitGroup
}

// NewFileResponder answers requests on t under tag.
func NewFileResponder(t *FileTransport, tag string, opts ...ResponderOption) *FileResponder {
	cfg := newResponderConfig(opts)
	return &FileResponder{
		transport: t,
		tag:       tag,
		logger:    cfg.logger,
		rescan:    cfg.rescan,
		answered:  make(map[string]struct{}),
	}
}

// Run serves requests until ctx is done. In-flight handlers finish before
// Run returns.
func (r *FileResponder) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := r.transport.RequestsDir()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	r.logger.Info("responder started", zap.String("dir", dir), zap.String("tag", r.tag))

	defer r.wg.Wait()

	r.scan(ctx)

	ticker := time.NewTicker(r.rescan)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("responder stopped", zap.String("tag", r.tag))
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if id, ok := requestIDFromName(filepath.Base(event.Name)); ok {
				r.dispatch(ctx, id)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watcher error", zap.Error(werr))

		case <-ticker.C:
			r.scan(ctx)
		}
	}
}

// scan dispatches every pending request and forgets answered ids whose
// request file is gone.
func (r *FileResponder) scan(ctx context.Context) {
	ids, err := r.transport.PendingIDs()
	if err != nil {
		r.logger.Warn("scan requests", zap.Error(err))
		return
	}

	pending := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		pending[id] = struct{}{}
		r.dispatch(ctx, id)
	}

	r.mu.Lock()
	for id := range r.answered {
		if _, ok := pending[id]; !ok {
			delete(r.answered, id)
		}
	}
	r.mu.Unlock()
}

// dispatch claims id and answers it on a new goroutine unless it was
// already claimed or already has a response.
func (r *FileResponder) dispatch(ctx context.Context, id string) {
	r.mu.Lock()
	if _, done := r.answered[id]; done {
		r.mu.Unlock()
		return
	}
	if r.transport.HasResponse(id, r.tag) {
		r.answered[id] = struct{}{}
		r.mu.Unlock()
		return
	}
	r.answered[id] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.answer(ctx, id)
	}()
}

func (r *FileResponder) answer(ctx context.Context, id string) {
	log := r.logger.With(zap.String("id", id), zap.String("tag", r.tag))

	req, err := r.transport.ReadRequest(id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		log.Warn("read request", zap.Error(err))
		r.respond(log, Failure(id, err.Error()))
		return
	}

	r.respond(log, r.serve(ctx, log, req))
}

func (r *FileResponder) respond(log *zap.Logger, resp Response) {
	if err := r.transport.WriteResponse(r.tag, resp); err != nil {
		log.Warn("write response", zap.Error(err))
		return
	}
	log.Debug("response written", zap.String("status", string(resp.Status)))
}
