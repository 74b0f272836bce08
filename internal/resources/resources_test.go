package resources

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/workroom/internal/store"
)

func setupTestLibrary(t *testing.T) (*Library, *store.Store) {
	t.Helper()
	ds, err := store.New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	return NewLibrary(ds, zerolog.Nop(), nil), ds
}

func TestUploadAdmission(t *testing.T) {
	l, _ := setupTestLibrary(t)

	// 6 MB would be rejected as a chat attachment but fits the 10 MB
	// resource ceiling.
	r, err := l.Upload(Resource{Name: "brand-kit.zip", Size: 6 << 20, UploadedBy: "usr-iris"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.NotZero(t, r.UploadedAt)

	_, err = l.Upload(Resource{Name: "raw-footage.mov", Size: 11 << 20})
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "raw-footage.mov")

	// The rejected upload left no side effects.
	assert.Len(t, l.Resources(), 1)
}

func TestDelete(t *testing.T) {
	l, _ := setupTestLibrary(t)

	r, err := l.Upload(Resource{Name: "logo.svg", Size: 1024})
	require.NoError(t, err)

	l.Delete("nope") // unknown ids ignored
	assert.Len(t, l.Resources(), 1)

	l.Delete(r.ID)
	assert.Empty(t, l.Resources())
}

func TestResourcesPersistAcrossReload(t *testing.T) {
	l, ds := setupTestLibrary(t)
	_, err := l.Upload(Resource{Name: "contract.pdf", Size: 2048, Category: "legal"})
	require.NoError(t, err)

	l2 := NewLibrary(ds, zerolog.Nop(), nil)
	files := l2.Resources()
	require.Len(t, files, 1)
	assert.Equal(t, "contract.pdf", files[0].Name)
	assert.Equal(t, "legal", files[0].Category)
}
