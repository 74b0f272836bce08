package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Put("projects", []byte(`[{"id":"p1"}]`)))

	raw, err := s.Get("projects")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"p1"}]`, string(raw))
}

func TestGetMissingKey(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestPutReplacesWholeSnapshot(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Put("directory", []byte(`["a"]`)))
	require.NoError(t, s.Put("directory", []byte(`["b","c"]`)))

	raw, err := s.Get("directory")
	require.NoError(t, err)
	assert.Equal(t, `["b","c"]`, string(raw))
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Put("resources", []byte(`[]`)))
	require.NoError(t, s.Delete("resources"))

	_, err := s.Get("resources")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCollectionRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	// Ids and ordering must survive the round trip for every snapshot kind.
	for _, key := range []string{KeyProjects, KeyNotifications, KeyThreads, KeyResources, KeyDirectory} {
		items := []record{{ID: "1", Name: "first"}, {ID: "2", Name: "second"}, {ID: "3", Name: "third"}}
		require.NoError(t, SaveCollection(s, key, items))

		loaded := LoadCollection(s, key, func() []record { return nil })
		assert.Equal(t, items, loaded, "collection %q", key)
	}
}

func TestLoadCollectionSeedsWhenMissing(t *testing.T) {
	s := setupTestStore(t)

	seed := func() []record { return []record{{ID: "seed", Name: "seeded"}} }

	loaded := LoadCollection(s, "projects", seed)
	require.Len(t, loaded, 1)
	assert.Equal(t, "seed", loaded[0].ID)

	// The seed is persisted immediately so a second load is stable without
	// invoking the seed again.
	reloaded := LoadCollection(s, "projects", func() []record {
		t.Fatal("seed should not be invoked on the second load")
		return nil
	})
	assert.Equal(t, loaded, reloaded)
}

func TestLoadCollectionReseedsOnCorruption(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Put("projects", []byte(`{not json`)))

	loaded := LoadCollection(s, "projects", func() []record {
		return []record{{ID: "seed"}}
	})
	require.Len(t, loaded, 1)

	// Corruption is repaired in place.
	raw, err := s.Get("projects")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"seed","name":""}]`, string(raw))
}

func TestSaveCollectionEmptyIsNotNull(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, SaveCollection(s, "dm-threads", []record(nil)))
	raw, err := s.Get("dm-threads")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reopen.db")

	s, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Put("projects", []byte(`["x"]`)))
	require.NoError(t, s.Close())

	s2, err := New(path, zerolog.Nop())
	require.NoError(t, err)
	defer s2.Close()

	raw, err := s2.Get("projects")
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, string(raw))
}
