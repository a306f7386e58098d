// Package theme persists the light/dark display preference.
package theme

import (
	"context"

	"github.com/joss/flashmart/internal/kvstore"
)

// StorageKey is where the preference is persisted.
const StorageKey = "flash-sale-theme"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Store reads and writes the theme preference.
type Store struct {
	kv *kvstore.Store
}

func NewStore(kv *kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Current returns the stored preference. Anything but "dark" is light.
func (s *Store) Current(ctx context.Context) Theme {
	v, err := s.kv.Get(ctx, StorageKey)
	if err == nil && Theme(v) == Dark {
		return Dark
	}
	return Light
}

// Set stores the preference.
func (s *Store) Set(ctx context.Context, t Theme) error {
	if t != Dark {
		t = Light
	}
	return s.kv.Set(ctx, StorageKey, string(t))
}

// Toggle flips the preference and returns the new value.
func (s *Store) Toggle(ctx context.Context) (Theme, error) {
	next := Dark
	if s.Current(ctx) == Dark {
		next = Light
	}
	return next, s.Set(ctx, next)
}
