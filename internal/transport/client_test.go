package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/flashmart/internal/kvstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *kvstore.Store) {
	t.Helper()
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL, kv, 5*time.Second), kv
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c, kv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	// No token stored: no header
	_, err := c.Get(ctx, "/products")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	// Token stored after construction must still be picked up
	require.NoError(t, kv.Set(ctx, KeyToken, "tok-1"))
	_, err = c.Get(ctx, "/products")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)

	// Rotated token is re-read per request
	require.NoError(t, kv.Set(ctx, KeyToken, "tok-2"))
	_, err = c.Get(ctx, "/products")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-2", gotAuth)
}

func TestRequestIDHeader(t *testing.T) {
	var got string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	})

	_, err := c.Get(context.Background(), "/products")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestServerMessageWins(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"stock worker unavailable"}`))
	})

	_, err := c.Get(context.Background(), "/checkouts")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "stock worker unavailable", apiErr.Message)
	assert.Equal(t, KindServer, apiErr.Kind)
}

func TestFieldErrorsJoined(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":{"email":["is required"],"password":["too short","needs a digit"]}}`))
	})

	_, err := c.Post(context.Background(), "/auth/register", map[string]string{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "email: is required. password: too short. password: needs a digit", apiErr.Message)
	assert.Equal(t, KindValidation, apiErr.Kind)
}

func TestFixedMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
		kind   Kind
	}{
		{"unauthorized", http.StatusUnauthorized, MsgSessionExpired, KindAuth},
		{"server error", http.StatusBadGateway, MsgServerError, KindServer},
		{"teapot", http.StatusTeapot, MsgRequestFailed, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{}`))
			})

			_, err := c.Get(context.Background(), "/products")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.kind, apiErr.Kind)
		})
	}
}

func TestNetworkErrorMessage(t *testing.T) {
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	defer kv.Close()

	// Nothing is listening here
	c := New("http://127.0.0.1:1", kv, time.Second)

	_, err = c.Get(context.Background(), "/products")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, MsgRequestFailed, apiErr.Message)
	assert.Equal(t, KindNetwork, apiErr.Kind)
}

func TestSessionExpiredSignal(t *testing.T) {
	c, kv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{}`))
	})
	ctx := context.Background()

	var fired int
	c.OnSessionExpired(func() { fired++ })

	// Anonymous 401 does not signal or clear anything
	_, err := c.Get(ctx, "/products")
	require.Error(t, err)
	assert.Equal(t, 0, fired)

	// Authenticated 401 clears credentials and signals exactly once
	require.NoError(t, kv.Set(ctx, KeyToken, "tok"))
	require.NoError(t, kv.Set(ctx, KeyRefreshToken, "ref"))
	require.NoError(t, kv.Set(ctx, KeyUser, `{"id":"1"}`))

	_, err = c.Get(ctx, "/products")
	require.Error(t, err)
	assert.Equal(t, 1, fired)

	for _, key := range []string{KeyToken, KeyRefreshToken, KeyUser} {
		_, err := kv.Get(ctx, key)
		assert.True(t, kvstore.IsNotFound(err), "key %s should be cleared", key)
	}

	// Next authenticated 401 signals again: once per failed request
	require.NoError(t, kv.Set(ctx, KeyToken, "tok-2"))
	_, err = c.Get(ctx, "/products")
	require.Error(t, err)
	assert.Equal(t, 2, fired)
}

func TestErrorIsSingleMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"quantity exceeds stock"}`))
	})

	_, err := c.Post(context.Background(), "/checkouts", map[string]any{"product_id": "p1", "quantity": 99})
	require.Error(t, err)
	assert.Equal(t, "quantity exceeds stock", err.Error())
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestSuccessReturnsRawBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"accepted","job_id":"j-1"}`))
	})

	raw, err := c.Post(context.Background(), "/checkouts", map[string]any{"product_id": "p1", "quantity": 1})
	require.NoError(t, err)

	var out struct {
		Message string `json:"message"`
		JobID   string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "j-1", out.JobID)
}
