package notify

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/workroom/internal/store"
)

func setupTestLog(t *testing.T) (*Log, *store.Store) {
	t.Helper()
	ds, err := store.New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	// Start from an empty persisted log; seed coverage has its own test.
	require.NoError(t, store.SaveCollection(ds, store.KeyNotifications, []*Notification{}))
	return NewLog(ds, zerolog.Nop(), nil), ds
}

func TestPublishNewestFirst(t *testing.T) {
	l, _ := setupTestLog(t)

	l.Publish(Notification{Type: TypeInfo, Title: "first"})
	l.Publish(Notification{Type: TypeAlert, Title: "second"})

	entries := l.Notifications()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Title)
	assert.Equal(t, "first", entries[1].Title)
}

func TestPublishInvalidTypeFallsBack(t *testing.T) {
	l, _ := setupTestLog(t)

	n := l.Publish(Notification{Type: Type("shout"), Title: "x"})
	assert.Equal(t, TypeInfo, n.Type)
}

func TestUnreadTracking(t *testing.T) {
	l, _ := setupTestLog(t)

	a := l.Publish(Notification{Type: TypeInfo, Title: "a"})
	l.Publish(Notification{Type: TypeSuccess, Title: "b"})
	assert.Equal(t, 2, l.UnreadCount())

	l.MarkRead(a.ID)
	assert.Equal(t, 1, l.UnreadCount())

	// Unknown ids are ignored.
	l.MarkRead("nope")
	assert.Equal(t, 1, l.UnreadCount())

	l.MarkAllRead()
	assert.Equal(t, 0, l.UnreadCount())
}

func TestLogPersistsAcrossReload(t *testing.T) {
	l, ds := setupTestLog(t)
	n := l.Publish(Notification{Type: TypeAlert, Title: "deploy failed", Link: "/projects/atlas"})
	l.MarkRead(n.ID)

	l2 := NewLog(ds, zerolog.Nop(), nil)
	entries := l2.Notifications()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Read)
	assert.Equal(t, "/projects/atlas", entries[0].Link)
}

func TestSeedDataset(t *testing.T) {
	entries := seedNotifications()
	require.NotEmpty(t, entries)
	assert.True(t, entries[0].Type.IsValid())
}
