package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/transport"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *kvstore.Store) {
	t.Helper()
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(transport.New(srv.URL, kv, 5*time.Second), kv), kv
}

func TestSubmitAccepted(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkouts", r.URL.Path)

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req.ProductID)
		assert.Equal(t, 2, req.Quantity)

		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"checkout accepted","job_id":"job-42"}`))
	})

	accepted, err := c.Submit(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, "job-42", accepted.JobID)
	assert.Equal(t, "checkout accepted", accepted.Message)
}

func TestSubmitJournalsAcceptedJobs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"ok","job_id":"job-1"}`))
	})
	ctx := context.Background()

	_, err := c.Submit(ctx, "p1", 1)
	require.NoError(t, err)
	_, err = c.Submit(ctx, "p2", 3)
	require.NoError(t, err)

	entries := c.Journal(ctx)
	require.Len(t, entries, 2)
	// Newest first
	assert.Equal(t, "p2", entries[0].ProductID)
	assert.Equal(t, "p1", entries[1].ProductID)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].SubmittedAt.IsZero())
}

func TestSubmitErrorPropagatesAndSkipsJournal(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"quantity exceeds stock"}`))
	})
	ctx := context.Background()

	_, err := c.Submit(ctx, "p1", 999)
	require.Error(t, err)
	assert.Equal(t, "quantity exceeds stock", err.Error())
	assert.Empty(t, c.Journal(ctx))
}

func TestHistory(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkouts", r.URL.Path)
		w.Write([]byte(`{"data":[
			{"id":"o2","product_id":"p2","product_name":"B","quantity":1,"price":2000,"discount":0,"total_price":2000,"created_at":"2026-02-02T00:00:00Z","updated_at":"2026-02-02T00:00:00Z","deleted_at":null},
			{"id":"o1","product_id":"p1","product_name":"A","quantity":2,"price":1000,"discount":10,"total_price":1800,"created_at":"2026-02-01T00:00:00Z","updated_at":"2026-02-01T00:00:00Z","deleted_at":null}
		]}`))
	})

	records, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "o2", records[0].ID)
	assert.Equal(t, int64(1800), records[1].TotalPrice)
}

func TestHistoryNullData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	})

	records, err := c.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJournalMalformedIsEmpty(t *testing.T) {
	c, kv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, JournalKey, "{broken"))
	assert.Empty(t, c.Journal(ctx))
}

func TestClearJournal(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"message":"ok","job_id":"j"}`))
	})
	ctx := context.Background()

	_, err := c.Submit(ctx, "p1", 1)
	require.NoError(t, err)
	require.NoError(t, c.ClearJournal(ctx))
	assert.Empty(t, c.Journal(ctx))
}
