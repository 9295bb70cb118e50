package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisPrefix = "lens:ipc"
	DefaultRedisTTL    = 10 * time.Minute
)

// RedisTransport stores artifacts as JSON strings:
//
//	{prefix}:req:{id}
//	{prefix}:resp:{tag}:{id}
//
// Every key carries a TTL so abandoned exchanges expire on their own.
type RedisTransport struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	tags   []string
}

// RedisOption configures a RedisTransport.
type RedisOption func(*RedisTransport)

func WithRedisPrefix(p string) RedisOption {
	return func(r *RedisTransport) {
		if p != "" {
			r.prefix = p
		}
	}
}

func WithRedisTTL(d time.Duration) RedisOption {
	return func(r *RedisTransport) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithRedisResponderTags replaces the tags whose responses Cleanup removes.
func WithRedisResponderTags(tags ...string) RedisOption {
	return func(r *RedisTransport) {
		if len(tags) > 0 {
			r.tags = append([]string(nil), tags...)
		}
	}
}

// NewRedisTransport wraps an existing client. The caller owns the client.
func NewRedisTransport(client redis.UniversalClient, opts ...RedisOption) *RedisTransport {
	r := &RedisTransport{
		client: client,
		prefix: DefaultRedisPrefix,
		ttl:    DefaultRedisTTL,
		tags:   DefaultResponderTags(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisTransport) requestKey(id string) string {
	return r.prefix + ":req:" + id
}

func (r *RedisTransport) responseKey(id, tag string) string {
	return r.prefix + ":resp:" + tag + ":" + id
}

func (r *RedisTransport) WriteRequest(ctx context.Context, req Request) error {
	if err := checkID(req.ID); err != nil {
		return err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.requestKey(req.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("set request: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRequest, req.ID)
	}
	return nil
}

func (r *RedisTransport) ReadResponse(ctx context.Context, id, tag string) (Response, bool, error) {
	data, err := r.client.Get(ctx, r.responseKey(id, tag)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Response{}, false, nil
	}
	if err != nil {
		return Response{}, false, fmt.Errorf("get response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, false, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp, true, nil
}

func (r *RedisTransport) Cleanup(ctx context.Context, id string) error {
	keys := []string{r.requestKey(id)}
	for _, tag := range r.tags {
		keys = append(keys, r.responseKey(id, tag))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// WriteResponse stores resp under (resp.RequestID, tag) with the transport TTL.
func (r *RedisTransport) WriteResponse(ctx context.Context, tag string, resp Response) error {
	if err := checkID(resp.RequestID); err != nil {
		return err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if err := r.client.Set(ctx, r.responseKey(resp.RequestID, tag), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set response: %w", err)
	}
	return nil
}

// ReadRequest loads the pending request for id.
func (r *RedisTransport) ReadRequest(ctx context.Context, id string) (Request, bool, error) {
	data, err := r.client.Get(ctx, r.requestKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Request{}, false, nil
	}
	if err != nil {
		return Request{}, false, fmt.Errorf("get request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, false, fmt.Errorf("decode request: %w", err)
	}
	return req, true, nil
}

// Pending returns requests that have no response under tag, oldest first.
// It walks the request keyspace with SCAN.
func (r *RedisTransport) Pending(ctx context.Context, tag string) ([]Request, error) {
	prefix := r.requestKey("")

	var out []Request
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), prefix)
		n, err := r.client.Exists(ctx, r.responseKey(id, tag)).Result()
		if err != nil {
			return nil, fmt.Errorf("check response: %w", err)
		}
		if n > 0 {
			continue
		}
		req, ok, err := r.ReadRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, req)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan requests: %w", err)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
