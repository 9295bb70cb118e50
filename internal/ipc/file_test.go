package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileTransport(t *testing.T, opts ...FileOption) *FileTransport {
	t.Helper()
	tr, err := NewFileTransport(t.TempDir(), opts...)
	require.NoError(t, err)
	return tr
}

func TestFileTransport_Contract(t *testing.T) {
	tr := newFileTransport(t)
	testTransportContract(t, tr, func(t *testing.T, tag string, resp Response) {
		require.NoError(t, tr.WriteResponse(tag, resp))
	})
}

func TestFileTransport_Layout(t *testing.T) {
	tr := newFileTransport(t)
	ctx := context.Background()

	require.NoError(t, tr.WriteRequest(ctx, Request{ID: "abc", Type: TypeLensValidate, Timestamp: 42}))
	require.NoError(t, tr.WriteResponse(TagAnchor, Response{RequestID: "abc", Status: StatusSuccess}))

	assert.FileExists(t, filepath.Join(tr.Dir(), "requests", "abc.json"))
	assert.FileExists(t, filepath.Join(tr.Dir(), "responses", "anchor-abc.json"))

	data, err := os.ReadFile(tr.RequestPath("abc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"abc","type":"lens-validate","timestamp":42}`, string(data))

	entries, err := os.ReadDir(tr.RequestsDir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFileTransport_PartialResponseIsNotReady(t *testing.T) {
	tr := newFileTransport(t)
	require.NoError(t, os.WriteFile(tr.ResponsePath("p", TagLens), []byte(`{"requestId":"p","sta`), 0o644))

	_, ok, err := tr.ReadResponse(context.Background(), "p", TagLens)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileTransport_CleanupUsesConfiguredTags(t *testing.T) {
	tr := newFileTransport(t, WithResponderTags(TagLens, "critic"))
	ctx := context.Background()

	require.NoError(t, tr.WriteRequest(ctx, Request{ID: "x", Type: TypeLensValidate}))
	for _, tag := range []string{TagLens, "critic", TagAnchor} {
		require.NoError(t, tr.WriteResponse(tag, Response{RequestID: "x", Status: StatusSuccess}))
	}

	require.NoError(t, tr.Cleanup(ctx, "x"))
	assert.NoFileExists(t, tr.RequestPath("x"))
	assert.NoFileExists(t, tr.ResponsePath("x", TagLens))
	assert.NoFileExists(t, tr.ResponsePath("x", "critic"))
	assert.FileExists(t, tr.ResponsePath("x", TagAnchor), "unconfigured tags are left alone")
}

func TestFileTransport_PendingIDs(t *testing.T) {
	tr := newFileTransport(t)
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		require.NoError(t, tr.WriteRequest(ctx, Request{ID: id, Type: TypeLensValidate}))
	}
	require.NoError(t, os.WriteFile(filepath.Join(tr.RequestsDir(), ".c.json.123"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tr.RequestsDir(), "notes.txt"), nil, 0o644))

	ids, err := tr.PendingIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileTransport_ChannelRoundTrip(t *testing.T) {
	tr := newFileTransport(t)
	ch := NewChannel(tr, fixedID("f1"), WithPollInterval(10*time.Millisecond), WithTimeout(2*time.Second))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if _, err := tr.ReadRequest("f1"); err == nil {
				resp, _ := Success("f1", LensResult{Valid: true})
				assert.NoError(t, tr.WriteResponse(TagLens, resp))
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	res, err := ch.ValidateLens(context.Background(), LensRequest{Context: map[string]any{"effect": "financial"}})
	<-done
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.NoFileExists(t, tr.RequestPath("f1"))
	assert.NoFileExists(t, tr.ResponsePath("f1", TagLens))
}
