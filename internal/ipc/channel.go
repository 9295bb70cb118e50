package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultTimeout      = 30 * time.Second

	cleanupTimeout = 5 * time.Second
)

// Archiver persists a finished exchange before its artifacts are removed.
type Archiver interface {
	Archive(req Request, resp Response) error
}

// Channel sends requests over a Transport and waits for responses. Each Send
// polls on the calling goroutine; Channels hold no per-request state and are
// safe for concurrent use.
type Channel struct {
	transport    Transport
	pollInterval time.Duration
	timeout      time.Duration
	logger       *zap.Logger
	metrics      *Metrics
	archiver     Archiver
	newID        func() string
	now          func() time.Time
}

// Option configures a Channel.
type Option func(*Channel)

// WithPollInterval sets how often the transport is checked for a response.
func WithPollInterval(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithTimeout sets how long Send waits before synthesizing a timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Channel) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Channel) { c.metrics = m }
}

func WithArchiver(a Archiver) Option {
	return func(c *Channel) { c.archiver = a }
}

// WithIDGenerator replaces the UUID request id source.
func WithIDGenerator(f func() string) Option {
	return func(c *Channel) {
		if f != nil {
			c.newID = f
		}
	}
}

// NewChannel builds a Channel over t.
func NewChannel(t Transport, opts ...Option) *Channel {
	c := &Channel{
		transport:    t,
		pollInterval: DefaultPollInterval,
		timeout:      DefaultTimeout,
		logger:       zap.NewNop(),
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the configured response timeout.
func (c *Channel) Timeout() time.Duration { return c.timeout }

// Send writes a request of reqType and waits for the response written under
// tag. When the timeout elapses it returns a synthesized timeout response and
// a nil error. Request and response artifacts are removed on every exit path.
func (c *Channel) Send(ctx context.Context, reqType, tag string, payload any) (Response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("encode payload: %w", err)
	}

	req := Request{
		ID:        c.newID(),
		Type:      reqType,
		Timestamp: c.now().UnixMilli(),
		Payload:   raw,
	}
	log := c.logger.With(zap.String("id", req.ID), zap.String("type", reqType), zap.String("tag", tag))
	start := time.Now()

	var resp Response
	var found bool
	defer func() {
		if found && c.archiver != nil {
			if aerr := c.archiver.Archive(req, resp); aerr != nil {
				log.Warn("archive exchange", zap.Error(aerr))
			}
		}
		c.cleanup(ctx, req.ID, log)
	}()

	if err := c.transport.WriteRequest(ctx, req); err != nil {
		c.metrics.observe(reqType, outcomeFailed, time.Since(start))
		return Response{}, fmt.Errorf("write request: %w", err)
	}
	log.Debug("request written")

	resp, found, err = c.await(ctx, req.ID, tag)
	elapsed := time.Since(start)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.metrics.observe(reqType, outcomeCancelled, elapsed)
		return Response{}, err
	case err != nil:
		c.metrics.observe(reqType, outcomeFailed, elapsed)
		return Response{}, err
	case !found:
		log.Warn("response timed out", zap.Duration("timeout", c.timeout))
		resp = Response{
			RequestID: req.ID,
			Status:    StatusTimeout,
			Error:     fmt.Sprintf("no %s response within %s", tag, c.timeout),
		}
		c.metrics.observe(reqType, string(StatusTimeout), elapsed)
		return resp, nil
	}

	if resp.RequestID == "" {
		resp.RequestID = req.ID
	}
	log.Debug("response received", zap.String("status", string(resp.Status)), zap.Duration("elapsed", elapsed))
	c.metrics.observe(reqType, string(resp.Status), elapsed)
	return resp, nil
}

// await polls until a response exists, the deadline passes or ctx ends.
// found=false with a nil error means the deadline passed.
func (c *Channel) await(ctx context.Context, id, tag string) (Response, bool, error) {
	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		resp, ok, err := c.transport.ReadResponse(ctx, id, tag)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Response{}, false, ctxErr
			}
			return Response{}, false, fmt.Errorf("read response: %w", err)
		}
		if ok {
			return resp, true, nil
		}

		select {
		case <-ctx.Done():
			return Response{}, false, ctx.Err()
		case <-deadline.C:
			// One last look so a response landing inside the final interval
			// is not reported as a timeout.
			resp, ok, err := c.transport.ReadResponse(ctx, id, tag)
			if err != nil || !ok {
				return Response{}, false, nil
			}
			return resp, true, nil
		case <-ticker.C:
		}
	}
}

func (c *Channel) cleanup(ctx context.Context, id string, log *zap.Logger) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := c.transport.Cleanup(cctx, id); err != nil {
		log.Warn("cleanup request artifacts", zap.Error(err))
	}
}

// Call is Send with status mapping: success data is decoded into out (which
// may be nil), an error status becomes *RemoteError and a timeout wraps
// ErrTimeout. Nothing is retried.
func (c *Channel) Call(ctx context.Context, reqType, tag string, payload, out any) error {
	resp, err := c.Send(ctx, reqType, tag, payload)
	if err != nil {
		return err
	}

	switch resp.Status {
	case StatusSuccess:
		if out == nil || len(resp.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("%w: decode %s data: %v", ErrInvalidResponse, reqType, err)
		}
		return nil
	case StatusError:
		return &RemoteError{RequestID: resp.RequestID, Type: reqType, Message: resp.Error}
	case StatusTimeout:
		return fmt.Errorf("%s %s: %w", reqType, resp.RequestID, ErrTimeout)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidResponse, resp.Status)
	}
}

// ValidateLens asks the lens responder to validate req.
func (c *Channel) ValidateLens(ctx context.Context, req LensRequest) (*LensResult, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	var out LensResult
	if err := c.Call(ctx, TypeLensValidate, TagLens, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateAnchor asks the anchor responder to ground req.
func (c *Channel) ValidateAnchor(ctx context.Context, req AnchorRequest) (*AnchorResult, error) {
	if err := validatePayload(req); err != nil {
		return nil, err
	}
	var out AnchorResult
	if err := c.Call(ctx, TypeAnchorValidate, TagAnchor, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
