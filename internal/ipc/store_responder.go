package ipc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RequestStore is the responder side of a shared-store transport.
// SQLiteTransport and RedisTransport implement it.
type RequestStore interface {
	// Pending returns requests that have no response under tag yet.
	Pending(ctx context.Context, tag string) ([]Request, error)
	WriteResponse(ctx context.Context, tag string, resp Response) error
}

// StoreResponder serves requests from a RequestStore by polling it.
type StoreResponder struct {
	router

	store  RequestStore
	tag    string
	logger *zap.Logger
	poll   time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	answered map[string]struct{}
	wg       sync.WaitGroup
}

// NewStoreResponder answers requests in s under tag.
func NewStoreResponder(s RequestStore, tag string, opts ...ResponderOption) *StoreResponder {
	cfg := newResponderConfig(opts)
	return &StoreResponder{
		store:    s,
		tag:      tag,
		logger:   cfg.logger,
		poll:     cfg.rescan,
		inflight: make(map[string]struct{}),
		answered: make(map[string]struct{}),
	}
}

// Run polls until ctx is done. In-flight handlers finish before Run returns.
func (r *StoreResponder) Run(ctx context.Context) error {
	r.logger.Info("responder started", zap.String("tag", r.tag), zap.Duration("poll", r.poll))
	defer r.wg.Wait()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		r.scan(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("responder stopped", zap.String("tag", r.tag))
			return nil
		case <-ticker.C:
		}
	}
}

func (r *StoreResponder) scan(ctx context.Context) {
	reqs, err := r.store.Pending(ctx, r.tag)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("list pending requests", zap.Error(err))
		}
		return
	}

	pending := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		pending[req.ID] = struct{}{}

		r.mu.Lock()
		_, busy := r.inflight[req.ID]
		_, done := r.answered[req.ID]
		if busy || done {
			r.mu.Unlock()
			continue
		}
		r.inflight[req.ID] = struct{}{}
		r.mu.Unlock()

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.answer(ctx, req)
		}()
	}

	// An answered id drops out of the snapshot once its response is visible.
	r.mu.Lock()
	for id := range r.answered {
		if _, ok := pending[id]; !ok {
			delete(r.answered, id)
		}
	}
	r.mu.Unlock()
}

// answer marks the id answered only after the response is stored, so a
// failed write is retried on the next poll.
func (r *StoreResponder) answer(ctx context.Context, req Request) {
	log := r.logger.With(zap.String("id", req.ID), zap.String("tag", r.tag))
	resp := r.serve(ctx, log, req)

	err := r.store.WriteResponse(context.WithoutCancel(ctx), r.tag, resp)

	r.mu.Lock()
	delete(r.inflight, req.ID)
	if err == nil {
		r.answered[req.ID] = struct{}{}
	}
	r.mu.Unlock()

	if err != nil {
		log.Warn("write response", zap.Error(err))
		return
	}
	log.Debug("response written", zap.String("status", string(resp.Status)))
}
