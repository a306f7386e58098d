// Package checkout submits purchases and reads order history. Acceptance
// is asynchronous: the backend answers 202 with a job id and decrements
// stock out of band, so accepted submissions are also journaled locally
// until the order shows up in history.
package checkout

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/logging"
	"github.com/joss/flashmart/internal/transport"
)

// JournalKey is where the local submission journal lives.
const JournalKey = "checkout-journal"

// Request is the checkout submission payload: one product, one quantity.
type Request struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Accepted is the 202 response. JobID identifies the async stock job; it
// does not mean the stock decrement has completed.
type Accepted struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// Record is one order-history entry, read-only from the client's side.
type Record struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       int64   `json:"price"`
	Discount    int     `json:"discount"`
	TotalPrice  int64   `json:"total_price"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	DeletedAt   *string `json:"deleted_at"`
}

// JournalEntry is a locally recorded accepted submission.
type JournalEntry struct {
	ID          string    `json:"id"` // ULID, so entries sort by time
	JobID       string    `json:"job_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Client talks to the checkout endpoints.
type Client struct {
	api *transport.Client
	kv  *kvstore.Store
	log *logging.Logger
}

func NewClient(api *transport.Client, kv *kvstore.Store) *Client {
	return &Client{
		api: api,
		kv:  kv,
		log: logging.New("checkout"),
	}
}

// Submit posts a checkout. Errors propagate to the caller; on acceptance
// the job is journaled locally.
func (c *Client) Submit(ctx context.Context, productID string, quantity int) (*Accepted, error) {
	raw, err := c.api.Post(ctx, "/checkouts", Request{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, err
	}

	var accepted Accepted
	if err := transport.DecodeEntity(raw, &accepted); err != nil {
		return nil, err
	}

	c.journal(ctx, JournalEntry{
		ID:          ulid.Make().String(),
		JobID:       accepted.JobID,
		ProductID:   productID,
		Quantity:    quantity,
		SubmittedAt: time.Now().UTC(),
	})
	return &accepted, nil
}

// History lists the user's orders, created-at descending as the backend
// sorts them. List envelope tolerance applies; errors propagate since
// this is a direct client call, not a degrading store fetch.
func (c *Client) History(ctx context.Context) ([]Record, error) {
	raw, err := c.api.Get(ctx, "/checkouts")
	if err != nil {
		return nil, err
	}
	return transport.DecodeList[Record](raw)
}

// Journal returns locally recorded submissions, newest first.
func (c *Client) Journal(ctx context.Context) []JournalEntry {
	entries := c.loadJournal(ctx)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID > entries[j].ID
	})
	return entries
}

// ClearJournal drops the local submission journal.
func (c *Client) ClearJournal(ctx context.Context) error {
	return c.kv.Delete(ctx, JournalKey)
}

func (c *Client) journal(ctx context.Context, entry JournalEntry) {
	entries := append(c.loadJournal(ctx), entry)
	data, err := json.Marshal(entries)
	if err != nil {
		c.log.Warn("journal", nil, err)
		return
	}
	if err := c.kv.Set(ctx, JournalKey, string(data)); err != nil {
		c.log.Warn("journal", nil, err)
	}
}

// loadJournal treats missing or malformed data as an empty journal.
func (c *Client) loadJournal(ctx context.Context) []JournalEntry {
	raw, err := c.kv.Get(ctx, JournalKey)
	if err != nil {
		return nil
	}
	var entries []JournalEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.log.Warn("load_journal", nil, err)
		return nil
	}
	return entries
}
