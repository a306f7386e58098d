// Package cart is the client-side authoritative shopping cart. Lines are
// reconciled against the product's live stock at the moment of mutation,
// and the whole collection is written through to persistent storage on
// every change.
package cart

import (
	"context"
	"encoding/json"
	"math"
	"sync"

	"github.com/joss/flashmart/internal/catalog"
	"github.com/joss/flashmart/internal/kvstore"
	"github.com/joss/flashmart/internal/logging"
)

// StorageKey is where the serialized line collection lives.
const StorageKey = "flash-sale-cart"

// Item is one product's chosen quantity, clamped to available stock.
// Invariant: Qty is always in [1, MaxQty]; a line that would clamp to zero
// is removed instead. ProductID is unique across the collection.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Discount  int    `json:"discount"`
	MaxQty    int    `json:"maxQty"`
	Qty       int    `json:"qty"`
}

// PriceAfterDiscount applies the percent discount and rounds, per line.
// Rounding happens before multiplying by quantity, never on the grand
// total.
func PriceAfterDiscount(price int64, discount int) int64 {
	return int64(math.Round(float64(price) * (1 - float64(discount)/100)))
}

// Store owns the cart line collection.
type Store struct {
	kv  *kvstore.Store
	log *logging.Logger

	mu    sync.Mutex
	items []Item
}

// NewStore loads the persisted cart. Malformed or missing stored data is
// an empty cart, never an error.
func NewStore(kv *kvstore.Store) *Store {
	s := &Store{
		kv:  kv,
		log: logging.New("cart"),
	}
	s.items = s.load()
	return s
}

func (s *Store) load() []Item {
	raw, err := s.kv.Get(context.Background(), StorageKey)
	if err != nil {
		return nil
	}

	var parsed []Item
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.log.Warn("load", nil, err)
		return nil
	}

	items := parsed[:0]
	for _, it := range parsed {
		if it.ProductID == "" || it.Qty < 1 {
			continue
		}
		items = append(items, it)
	}
	return items
}

// persist writes the full collection through to storage. Must be called
// with the lock held. Storage failures are logged, not surfaced; the
// in-memory cart stays correct.
func (s *Store) persist() {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.log.Warn("persist", nil, err)
		return
	}
	if err := s.kv.Set(context.Background(), StorageKey, string(data)); err != nil {
		s.log.Warn("persist", nil, err)
	}
}

// Add puts quantity of product into the cart, capped at the product's
// current stock. Adding past capacity is a silent no-op, not an error.
// When the line already exists its MaxQty is refreshed to the current
// stock, so a stock decrease re-clamps the quantity as a side effect.
func (s *Store) Add(product catalog.Product, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(product.ID)
	existingQty := 0
	if idx >= 0 {
		existingQty = s.items[idx].Qty
	}

	addable := min(quantity, max(0, product.Stock-existingQty))
	if addable <= 0 {
		return
	}

	if idx >= 0 {
		s.items[idx].Qty = min(existingQty+addable, product.Stock)
		s.items[idx].MaxQty = product.Stock
	} else {
		s.items = append(s.items, Item{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Discount:  product.Discount,
			MaxQty:    product.Stock,
			Qty:       addable,
		})
	}
	s.persist()
}

// SetQty clamps qty into [0, MaxQty] of the existing line; a clamped
// result of zero removes the line. Unknown product ids are a no-op.
func (s *Store) SetQty(productID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(productID)
	if idx < 0 {
		return
	}

	clamped := max(0, min(qty, s.items[idx].MaxQty))
	if clamped == 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	} else {
		s.items[idx].Qty = clamped
	}
	s.persist()
}

// Remove drops the line unconditionally.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.find(productID)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.persist()
}

// Clear destroys the whole collection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
}

// Items returns a copy of the line collection.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// TotalItems is the sum of quantities, recomputed on every call.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Qty
	}
	return total
}

// TotalPrice sums round(price * (1 - discount/100)) * qty over all lines.
func (s *Store) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, it := range s.items {
		total += PriceAfterDiscount(it.Price, it.Discount) * int64(it.Qty)
	}
	return total
}

// find must be called with the lock held.
func (s *Store) find(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
