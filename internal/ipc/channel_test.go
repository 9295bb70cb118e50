package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(id string) Option {
	return WithIDGenerator(func() string { return id })
}

type recordingArchiver struct {
	mu    sync.Mutex
	calls []Response
	reqs  []Request
}

func (a *recordingArchiver) Archive(req Request, resp Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reqs = append(a.reqs, req)
	a.calls = append(a.calls, resp)
	return nil
}

// brokenTransport fails the configured operation and records cleanups.
type brokenTransport struct {
	*MemoryTransport
	writeErr error
	readErr  error

	mu       sync.Mutex
	cleanups []string
}

func (b *brokenTransport) WriteRequest(ctx context.Context, req Request) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	return b.MemoryTransport.WriteRequest(ctx, req)
}

func (b *brokenTransport) ReadResponse(ctx context.Context, id, tag string) (Response, bool, error) {
	if b.readErr != nil {
		return Response{}, false, b.readErr
	}
	return b.MemoryTransport.ReadResponse(ctx, id, tag)
}

func (b *brokenTransport) Cleanup(ctx context.Context, id string) error {
	b.mu.Lock()
	b.cleanups = append(b.cleanups, id)
	b.mu.Unlock()
	return b.MemoryTransport.Cleanup(ctx, id)
}

func TestSend_PreseededResponse(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Respond("req-1", TagLens, Response{RequestID: "req-1", Status: StatusSuccess, Data: []byte(`{"valid":true}`)})

	ch := NewChannel(tr, fixedID("req-1"), WithPollInterval(10*time.Millisecond))
	resp, err := ch.Send(context.Background(), TypeLensValidate, TagLens, LensRequest{Context: map[string]any{}})
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.JSONEq(t, `{"valid":true}`, string(resp.Data))
	assert.Zero(t, tr.Pending(), "request removed after the exchange")
	_, found, _ := tr.ReadResponse(context.Background(), "req-1", TagLens)
	assert.False(t, found, "response removed after the exchange")
}

func TestSend_RequestShape(t *testing.T) {
	tr := NewMemoryTransport()
	ch := NewChannel(tr, fixedID("req-shape"), WithPollInterval(10*time.Millisecond), WithTimeout(2*time.Second))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if req, ok := tr.Request("req-shape"); ok {
				assert.Equal(t, TypeAnchorValidate, req.Type)
				assert.JSONEq(t, `{"statement":"s"}`, string(req.Payload))
				assert.WithinDuration(t, time.Now(), req.Time(), 5*time.Second)
				tr.Respond(req.ID, TagAnchor, Response{RequestID: req.ID, Status: StatusSuccess})
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	resp, err := ch.Send(context.Background(), TypeAnchorValidate, TagAnchor, AnchorRequest{Statement: "s"})
	<-done
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
}

func TestSend_Timeout(t *testing.T) {
	const (
		timeout = 200 * time.Millisecond
		poll    = 100 * time.Millisecond
	)
	tr := NewMemoryTransport()
	ch := NewChannel(tr, fixedID("slow"), WithTimeout(timeout), WithPollInterval(poll))

	start := time.Now()
	resp, err := ch.Send(context.Background(), TypeLensValidate, TagLens, LensRequest{Context: map[string]any{}})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, resp.Status)
	assert.Equal(t, "slow", resp.RequestID)
	assert.NotEmpty(t, resp.Error)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.LessOrEqual(t, elapsed, timeout+poll)
	assert.Zero(t, tr.Pending())
}

func TestSend_ResponseDuringWait(t *testing.T) {
	tr := NewMemoryTransport()
	ch := NewChannel(tr, fixedID("mid"), WithPollInterval(20*time.Millisecond), WithTimeout(2*time.Second))

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(60 * time.Millisecond)
		tr.Respond("mid", TagLens, Response{RequestID: "mid", Status: StatusSuccess})
	}()

	resp, err := ch.Send(context.Background(), TypeLensValidate, TagLens, nil)
	<-done
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, resp.Status)
}

func TestSend_ContextCancelled(t *testing.T) {
	tr := &brokenTransport{MemoryTransport: NewMemoryTransport()}
	ch := NewChannel(tr, fixedID("gone"), WithPollInterval(10*time.Millisecond), WithTimeout(5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ch.Send(ctx, TypeLensValidate, TagLens, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"gone"}, tr.cleanups)
	assert.Zero(t, tr.Pending(), "cleanup runs despite the cancelled context")
}

func TestSend_WriteFailureStillCleansUp(t *testing.T) {
	boom := errors.New("disk full")
	tr := &brokenTransport{MemoryTransport: NewMemoryTransport(), writeErr: boom}
	ch := NewChannel(tr, fixedID("w"))

	_, err := ch.Send(context.Background(), TypeLensValidate, TagLens, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"w"}, tr.cleanups)
}

func TestSend_ReadFailureAborts(t *testing.T) {
	boom := errors.New("permission denied")
	tr := &brokenTransport{MemoryTransport: NewMemoryTransport(), readErr: boom}
	ch := NewChannel(tr, fixedID("r"), WithTimeout(5*time.Second))

	start := time.Now()
	_, err := ch.Send(context.Background(), TypeLensValidate, TagLens, nil)
	assert.ErrorIs(t, err, boom)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, []string{"r"}, tr.cleanups)
}

func TestSend_UnencodablePayload(t *testing.T) {
	tr := NewMemoryTransport()
	_, err := NewChannel(tr).Send(context.Background(), TypeLensValidate, TagLens, make(chan int))
	assert.Error(t, err)
	assert.Zero(t, tr.Pending())
}

func TestCall_StatusMapping(t *testing.T) {
	tests := []struct {
		name  string
		resp  Response
		check func(t *testing.T, err error)
	}{
		{
			name: "success",
			resp: Response{Status: StatusSuccess, Data: []byte(`{"valid":true,"summary":"ok"}`)},
			check: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "remote error",
			resp: Response{Status: StatusError, Error: "zone not found"},
			check: func(t *testing.T, err error) {
				var remote *RemoteError
				require.ErrorAs(t, err, &remote)
				assert.Equal(t, "zone not found", remote.Message)
				assert.Equal(t, TypeLensValidate, remote.Type)
				assert.NotErrorIs(t, err, ErrTimeout)
			},
		},
		{
			name: "responder reported timeout",
			resp: Response{Status: StatusTimeout},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrTimeout)
			},
		},
		{
			name: "unknown status",
			resp: Response{Status: "maybe"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
		{
			name: "undecodable data",
			resp: Response{Status: StatusSuccess, Data: []byte(`[1,2]`)},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewMemoryTransport()
			tt.resp.RequestID = "c"
			tr.Respond("c", TagLens, tt.resp)
			ch := NewChannel(tr, fixedID("c"), WithPollInterval(10*time.Millisecond))

			var out LensResult
			tt.check(t, ch.Call(context.Background(), TypeLensValidate, TagLens, nil, &out))
		})
	}
}

func TestCall_TimeoutIsErrTimeout(t *testing.T) {
	ch := NewChannel(NewMemoryTransport(), WithTimeout(30*time.Millisecond), WithPollInterval(10*time.Millisecond))
	err := ch.Call(context.Background(), TypeLensValidate, TagLens, nil, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestValidateLens(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Respond("v", TagLens, Response{
		RequestID: "v",
		Status:    StatusSuccess,
		Data:      []byte(`{"valid":false,"issues":["missing zone",{"severity":"error","message":"bad sync"}],"summary":"2 issues"}`),
	})
	ch := NewChannel(tr, fixedID("v"), WithPollInterval(10*time.Millisecond))

	res, err := ch.ValidateLens(context.Background(), LensRequest{Context: map[string]any{"component": "WithdrawButton"}, Zone: "critical"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "missing zone", res.Issues[0].Message)
	assert.Equal(t, "error", res.Issues[1].Severity)
	assert.Equal(t, "2 issues", res.Summary)
}

func TestValidateLens_InvalidPayloadNotSent(t *testing.T) {
	tr := &brokenTransport{MemoryTransport: NewMemoryTransport()}
	ch := NewChannel(tr)

	_, err := ch.ValidateLens(context.Background(), LensRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Context")
	assert.Empty(t, tr.cleanups, "nothing was written")
}

func TestValidateAnchor(t *testing.T) {
	tr := NewMemoryTransport()
	tr.Respond("a", TagAnchor, Response{
		RequestID: "a",
		Status:    StatusSuccess,
		Data:      []byte(`{"status":"ok","requiredZone":"critical","citedZone":"critical","lens_validation":{"valid":true}}`),
	})
	ch := NewChannel(tr, fixedID("a"), WithPollInterval(10*time.Millisecond))

	res, err := ch.ValidateAnchor(context.Background(), AnchorRequest{Statement: "withdraw is financial"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "critical", res.RequiredZone)
	require.NotNil(t, res.LensValidation)
	assert.True(t, res.LensValidation.Valid)

	tr.Respond("b", TagAnchor, Response{RequestID: "b", Status: StatusSuccess, Data: []byte(`{"status":"ungrounded"}`)})
	empty := NewChannel(tr, fixedID("b"), WithPollInterval(10*time.Millisecond))
	res, err = empty.ValidateAnchor(context.Background(), AnchorRequest{Zone: "critical"})
	require.NoError(t, err, "every anchor field is optional")
	assert.Equal(t, "ungrounded", res.Status)

	_, err = empty.ValidateAnchor(context.Background(), AnchorRequest{Statement: strings.Repeat("x", 4097)})
	assert.ErrorContains(t, err, `failed "max"`)
}

func TestValidateLens_ContextIsOpaque(t *testing.T) {
	for _, lensCtx := range []any{"withdraw button", []any{"a", 1.0}, 42.0, map[string]any{}} {
		tr := NewMemoryTransport()
		tr.Respond("o", TagLens, Response{RequestID: "o", Status: StatusSuccess, Data: []byte(`{"valid":true}`)})
		ch := NewChannel(tr, fixedID("o"), WithPollInterval(10*time.Millisecond))

		res, err := ch.ValidateLens(context.Background(), LensRequest{Context: lensCtx})
		require.NoError(t, err, "%v", lensCtx)
		assert.True(t, res.Valid)
	}
}

func TestChannel_ArchivesFinishedExchanges(t *testing.T) {
	arch := &recordingArchiver{}
	tr := NewMemoryTransport()
	tr.Respond("done", TagLens, Response{RequestID: "done", Status: StatusSuccess})

	ch := NewChannel(tr, fixedID("done"), WithArchiver(arch), WithPollInterval(10*time.Millisecond))
	_, err := ch.Send(context.Background(), TypeLensValidate, TagLens, nil)
	require.NoError(t, err)

	timeoutCh := NewChannel(tr, fixedID("late"), WithArchiver(arch), WithTimeout(20*time.Millisecond), WithPollInterval(10*time.Millisecond))
	_, err = timeoutCh.Send(context.Background(), TypeLensValidate, TagLens, nil)
	require.NoError(t, err)

	require.Len(t, arch.calls, 1, "timeouts are not archived")
	assert.Equal(t, "done", arch.reqs[0].ID)
	assert.Equal(t, StatusSuccess, arch.calls[0].Status)
}

func TestChannel_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	tr := NewMemoryTransport()
	tr.Respond("ok", TagLens, Response{RequestID: "ok", Status: StatusSuccess})
	ch := NewChannel(tr, fixedID("ok"), WithMetrics(m), WithPollInterval(10*time.Millisecond))
	_, err := ch.Send(context.Background(), TypeLensValidate, TagLens, nil)
	require.NoError(t, err)

	slow := NewChannel(tr, fixedID("slow"), WithMetrics(m), WithTimeout(20*time.Millisecond), WithPollInterval(10*time.Millisecond))
	_, err = slow.Send(context.Background(), TypeLensValidate, TagLens, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(TypeLensValidate, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(TypeLensValidate, "timeout")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestLensIssue_UnmarshalRejectsGarbage(t *testing.T) {
	var i LensIssue
	assert.Error(t, json.Unmarshal([]byte(`42`), &i))
}
