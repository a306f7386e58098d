package transport

import (
	"encoding/json"
	"fmt"
)

// The backend wraps some responses in {"data": ...} and returns others
// bare. These helpers resolve both shapes to one canonical form at the
// transport boundary.

// DecodeList decodes a list payload enveloped either as a bare array or as
// {"data": array}. A null or missing inner array is an empty list, never an
// error.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var bare []T
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return env.Data, nil
}

// DecodeEntity decodes a single-entity payload, unwrapping {"data": {...}}
// when present. Unlike lists, a malformed entity is an error.
func DecodeEntity[T any](raw json.RawMessage, out *T) error {
	if len(raw) == 0 {
		return fmt.Errorf("decode entity: empty response")
	}

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	return nil
}
