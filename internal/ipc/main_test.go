package ipc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// responderFunc writes a response the way the other side of a transport
// would.
type responderFunc func(t *testing.T, tag string, resp Response)

// testTransportContract exercises the behavior every Transport must share.
func testTransportContract(t *testing.T, tr Transport, respond responderFunc) {
	t.Helper()
	ctx := context.Background()

	t.Run("round trip and cleanup", func(t *testing.T) {
		req := Request{ID: "contract-1", Type: TypeLensValidate, Timestamp: 1700000000000, Payload: []byte(`{"context":{}}`)}
		require.NoError(t, tr.WriteRequest(ctx, req))

		_, ok, err := tr.ReadResponse(ctx, req.ID, TagLens)
		require.NoError(t, err)
		assert.False(t, ok, "no response before the responder writes one")

		respond(t, TagLens, Response{RequestID: req.ID, Status: StatusSuccess, Data: []byte(`{"valid":true}`)})

		resp, ok, err := tr.ReadResponse(ctx, req.ID, TagLens)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, StatusSuccess, resp.Status)
		assert.JSONEq(t, `{"valid":true}`, string(resp.Data))

		_, ok, err = tr.ReadResponse(ctx, req.ID, TagAnchor)
		require.NoError(t, err)
		assert.False(t, ok, "responses are keyed by tag")

		require.NoError(t, tr.Cleanup(ctx, req.ID))
		_, ok, err = tr.ReadResponse(ctx, req.ID, TagLens)
		require.NoError(t, err)
		assert.False(t, ok, "response must be gone after cleanup")
	})

	t.Run("latest response wins", func(t *testing.T) {
		req := Request{ID: "contract-2", Type: TypeAnchorValidate, Timestamp: 1}
		require.NoError(t, tr.WriteRequest(ctx, req))
		defer tr.Cleanup(ctx, req.ID)

		respond(t, TagAnchor, Failure(req.ID, "first"))
		respond(t, TagAnchor, Failure(req.ID, "second"))

		resp, ok, err := tr.ReadResponse(ctx, req.ID, TagAnchor)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, StatusError, resp.Status)
		assert.Equal(t, "second", resp.Error)
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		req := Request{ID: "contract-3", Type: TypeLensValidate, Timestamp: 1}
		require.NoError(t, tr.WriteRequest(ctx, req))
		defer tr.Cleanup(ctx, req.ID)

		assert.ErrorIs(t, tr.WriteRequest(ctx, req), ErrDuplicateRequest)
	})

	t.Run("cleanup of unknown id", func(t *testing.T) {
		assert.NoError(t, tr.Cleanup(ctx, "never-written"))
	})

	t.Run("unsafe id rejected", func(t *testing.T) {
		err := tr.WriteRequest(ctx, Request{ID: "../escape", Type: TypeLensValidate})
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}
