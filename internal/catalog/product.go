package catalog

import "encoding/json"

// Product is a catalog snapshot entry. Immutable once fetched; a fresh
// fetch replaces the whole collection.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Price    int64  `json:"price"`
	Discount int    `json:"discount"`
	OwnerID  string `json:"created_by,omitempty"`
}

// productPayload is the wire shape: ids may arrive as strings or numbers,
// numeric fields may be absent.
type productPayload struct {
	ID        json.RawMessage `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Stock     *int            `json:"stock"`
	Price     *int64          `json:"price"`
	Discount  *int            `json:"discount"`
	CreatedBy json.RawMessage `json:"created_by"`
}

// mapPayload normalizes one wire product. Returns false when the entry has
// no usable id and must be skipped.
func mapPayload(p productPayload) (Product, bool) {
	id := rawToString(p.ID)
	if id == "" {
		return Product{}, false
	}
	out := Product{
		ID:       id,
		Name:     p.Name,
		Category: p.Category,
		OwnerID:  rawToString(p.CreatedBy),
	}
	if p.Stock != nil {
		out.Stock = *p.Stock
	}
	if p.Price != nil {
		out.Price = *p.Price
	}
	if p.Discount != nil {
		out.Discount = *p.Discount
	}
	return out, true
}

// rawToString renders a JSON scalar (string or number) as a string.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// CreateRequest is the create-product payload; created_by is required by
// the backend and filled from the logged-in user.
type CreateRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stock     int    `json:"stock"`
	Price     int64  `json:"price"`
	Discount  int    `json:"discount"`
	CreatedBy string `json:"created_by"`
}

// UpdateRequest is the full update payload the backend requires. Partial
// updates are merged over the known record before sending.
type UpdateRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Price    int64  `json:"price"`
	Discount int    `json:"discount"`
}

// Patch carries the subset of fields an update wants to change; nil means
// "keep the current value".
type Patch struct {
	Name     *string
	Category *string
	Stock    *int
	Price    *int64
	Discount *int
}
