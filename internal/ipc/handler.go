package ipc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultRescanInterval = time.Second

// Handler answers one request. The returned value becomes the success data;
// a non-nil error becomes an error response.
type Handler func(ctx context.Context, req Request) (any, error)

// ResponderOption configures a FileResponder or StoreResponder.
type ResponderOption func(*responderConfig)

type responderConfig struct {
	logger *zap.Logger
	rescan time.Duration
}

func newResponderConfig(opts []ResponderOption) responderConfig {
	cfg := responderConfig{logger: zap.NewNop(), rescan: defaultRescanInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithResponderLogger(l *zap.Logger) ResponderOption {
	return func(c *responderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRescanInterval sets how often a responder looks for requests it has
// not seen: the fallback directory scan for FileResponder, the poll period
// for StoreResponder.
func WithRescanInterval(d time.Duration) ResponderOption {
	return func(c *responderConfig) {
		if d > 0 {
			c.rescan = d
		}
	}
}

// router maps request types to handlers.
type router struct {
	mu       sync.Mutex
	handlers map[string]Handler
}

// Handle registers h for requests of reqType.
func (rt *router) Handle(reqType string, h Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.handlers == nil {
		rt.handlers = make(map[string]Handler)
	}
	rt.handlers[reqType] = h
}

// serve runs the handler for req and builds the response. Unknown types get
// an error response so the caller fails fast instead of timing out.
func (rt *router) serve(ctx context.Context, log *zap.Logger, req Request) Response {
	rt.mu.Lock()
	h, ok := rt.handlers[req.Type]
	rt.mu.Unlock()
	if !ok {
		return Failure(req.ID, fmt.Sprintf("unsupported request type %q", req.Type))
	}

	data, err := h(ctx, req)
	if err != nil {
		log.Debug("handler failed", zap.String("type", req.Type), zap.Error(err))
		return Failure(req.ID, err.Error())
	}

	resp, err := Success(req.ID, data)
	if err != nil {
		return Failure(req.ID, fmt.Sprintf("encode result: %v", err))
	}
	return resp
}
