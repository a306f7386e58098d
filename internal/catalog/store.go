// Package catalog holds the two product collections the client works
// with: the caller's own products (seller side) and the global marketplace
// list. Each fetch replaces its collection wholesale.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/joss/flashmart/internal/logging"
	"github.com/joss/flashmart/internal/transport"
)

// ErrUnknownProduct is returned when an update targets a product the owned
// collection has never seen.
var ErrUnknownProduct = errors.New("unknown product")

// Store owns the catalog snapshots. The two collections share no state:
// fetching one never touches the other.
type Store struct {
	api *transport.Client
	log *logging.Logger

	mu       sync.Mutex
	owned    []Product
	ownedErr string
	ownedGen uint64
	all      []Product
	allErr   string
	allGen   uint64
}

func NewStore(api *transport.Client) *Store {
	return &Store{
		api: api,
		log: logging.New("catalog"),
	}
}

// FetchOwned replaces the owned collection from GET /products. On failure
// the collection resets to empty and the error message is recorded; the
// call itself never returns an error so list views degrade instead of
// breaking.
func (s *Store) FetchOwned(ctx context.Context) {
	s.mu.Lock()
	s.ownedGen++
	gen := s.ownedGen
	s.ownedErr = ""
	s.mu.Unlock()

	products, err := s.fetchList(ctx, "/products")

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.ownedGen {
		// A newer fetch superseded this one; drop the stale result.
		s.log.Debug("fetch_owned_stale", map[string]interface{}{"gen": gen})
		return
	}
	if err != nil {
		s.owned = nil
		s.ownedErr = err.Error()
		return
	}
	s.owned = products
}

// FetchAll replaces the global collection from GET /products/all. Same
// degradation contract as FetchOwned.
func (s *Store) FetchAll(ctx context.Context) {
	s.mu.Lock()
	s.allGen++
	gen := s.allGen
	s.allErr = ""
	s.mu.Unlock()

	products, err := s.fetchList(ctx, "/products/all")

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.allGen {
		s.log.Debug("fetch_all_stale", map[string]interface{}{"gen": gen})
		return
	}
	if err != nil {
		s.all = nil
		s.allErr = err.Error()
		return
	}
	s.all = products
}

func (s *Store) fetchList(ctx context.Context, path string) ([]Product, error) {
	raw, err := s.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	payloads, err := transport.DecodeList[productPayload](raw)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(payloads))
	for _, p := range payloads {
		if product, ok := mapPayload(p); ok {
			products = append(products, product)
		}
	}
	return products, nil
}

// GetByID fetches a single product. Unlike list fetches, errors propagate.
func (s *Store) GetByID(ctx context.Context, id string) (Product, error) {
	raw, err := s.api.Get(ctx, "/products/"+id)
	if err != nil {
		return Product{}, err
	}
	var payload productPayload
	if err := transport.DecodeEntity(raw, &payload); err != nil {
		return Product{}, err
	}
	product, ok := mapPayload(payload)
	if !ok {
		return Product{}, errors.New("invalid product response")
	}
	return product, nil
}

// Create adds a product to the owned collection after the server confirms.
func (s *Store) Create(ctx context.Context, req CreateRequest) (Product, error) {
	raw, err := s.api.Post(ctx, "/products", req)
	if err != nil {
		return Product{}, err
	}
	var payload productPayload
	if err := transport.DecodeEntity(raw, &payload); err != nil {
		return Product{}, err
	}
	product, ok := mapPayload(payload)
	if !ok {
		return Product{}, errors.New("invalid product response")
	}

	s.mu.Lock()
	s.owned = append(s.owned, product)
	s.mu.Unlock()
	return product, nil
}

// Update merges the patch over the known record, sends the full payload
// the backend requires, and on success replaces the record in place so
// ordering stays stable.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	s.mu.Lock()
	current, idx := s.findOwned(id)
	s.mu.Unlock()
	if idx < 0 {
		return Product{}, ErrUnknownProduct
	}

	req := UpdateRequest{
		Name:     current.Name,
		Category: current.Category,
		Stock:    current.Stock,
		Price:    current.Price,
		Discount: current.Discount,
	}
	if patch.Name != nil {
		req.Name = *patch.Name
	}
	if patch.Category != nil {
		req.Category = *patch.Category
	}
	if patch.Stock != nil {
		req.Stock = *patch.Stock
	}
	if patch.Price != nil {
		req.Price = *patch.Price
	}
	if patch.Discount != nil {
		req.Discount = *patch.Discount
	}

	raw, err := s.api.Put(ctx, "/products/"+id, req)
	if err != nil {
		return Product{}, err
	}
	var payload productPayload
	if err := transport.DecodeEntity(raw, &payload); err != nil {
		return Product{}, err
	}
	product, ok := mapPayload(payload)
	if !ok {
		return Product{}, errors.New("invalid product response")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, idx := s.findOwned(id); idx >= 0 {
		s.owned[idx] = product
	} else {
		s.owned = append(s.owned, product)
	}
	return product, nil
}

// Delete removes a product from the backend, then from the owned
// collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.api.Delete(ctx, "/products/"+id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, idx := s.findOwned(id); idx >= 0 {
		s.owned = append(s.owned[:idx], s.owned[idx+1:]...)
	}
	return nil
}

// findOwned must be called with the lock held.
func (s *Store) findOwned(id string) (Product, int) {
	for i, p := range s.owned {
		if p.ID == id {
			return p, i
		}
	}
	return Product{}, -1
}

// Owned returns a copy of the owned collection.
func (s *Store) Owned() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product(nil), s.owned...)
}

// All returns a copy of the global collection.
func (s *Store) All() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product(nil), s.all...)
}

// Get looks a product up in the owned collection.
func (s *Store) Get(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, idx := s.findOwned(id)
	return p, idx >= 0
}

// GetAll looks a product up in the global collection (for cart/detail).
func (s *Store) GetAll(id string) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.all {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// OwnedErr returns the recorded owned-fetch error, empty when none.
func (s *Store) OwnedErr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownedErr
}

// AllErr returns the recorded all-fetch error, empty when none.
func (s *Store) AllErr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allErr
}

// ClearOwnedErr clears the owned-fetch error only.
func (s *Store) ClearOwnedErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownedErr = ""
}

// ClearAllErr clears the all-fetch error only.
func (s *Store) ClearAllErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allErr = ""
}

// Categories derives the sorted distinct non-empty categories of the
// owned collection. Recomputed on every call.
func (s *Store) Categories() []string {
	return distinctCategories(s.Owned())
}

// AllCategories derives the categories of the global collection.
func (s *Store) AllCategories() []string {
	return distinctCategories(s.All())
}

func distinctCategories(products []Product) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

// FilterAll narrows the global collection by a case-insensitive name query
// and an exact category, either of which may be empty.
func (s *Store) FilterAll(query, category string) []Product {
	query = strings.ToLower(strings.TrimSpace(query))

	var out []Product
	for _, p := range s.All() {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}
