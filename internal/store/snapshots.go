package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// LoadCollection reads the collection persisted under key. On a missing key or
// a corrupt payload it falls back to seed(), persists the seed immediately so
// subsequent loads are stable, and reports the recovery through the store's
// logger. Load never fails hard: persistence corruption is recovered, not
// surfaced.
func LoadCollection[T any](s *Store, key string, seed func() []T) []T {
	raw, err := s.Get(key)
	if err == nil {
		var items []T
		if jsonErr := json.Unmarshal(raw, &items); jsonErr == nil {
			return items
		}
		s.logger.Warn().Str("collection", key).Msg("corrupt snapshot, reseeding")
	} else if !errors.Is(err, ErrNoSnapshot) {
		s.logger.Warn().Err(err).Str("collection", key).Msg("snapshot read failed, reseeding")
	}

	items := seed()
	if err := SaveCollection(s, key, items); err != nil {
		s.logger.Error().Err(err).Str("collection", key).Msg("failed to persist seed dataset")
	}
	return items
}

// SaveCollection serializes the whole collection and rewrites it under key.
func SaveCollection[T any](s *Store, key string, items []T) error {
	// Persist `[]` rather than `null` for empty collections.
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %q: %w", key, err)
	}
	return s.Put(key, raw)
}
