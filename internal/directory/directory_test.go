package directory

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/workroom/internal/store"
)

func setupTestStore(t *testing.T) (*Store, *store.Store) {
	t.Helper()
	ds, err := store.New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	require.NoError(t, store.SaveCollection(ds, store.KeyDirectory, []*User{}))
	return NewStore(ds, zerolog.Nop()), ds
}

func TestSeedDataset(t *testing.T) {
	users := seedUsers()
	require.NotEmpty(t, users)

	hasAdmin := false
	for _, u := range users {
		assert.True(t, u.Role.IsValid(), "user %s has invalid role", u.ID)
		if u.IsAdmin() {
			hasAdmin = true
		}
	}
	assert.True(t, hasAdmin, "seed must contain at least one admin")
}

func TestSeedFallbackOnEmptyStore(t *testing.T) {
	ds, err := store.New(filepath.Join(t.TempDir(), "fresh.db"), zerolog.Nop())
	require.NoError(t, err)
	defer ds.Close()

	s := NewStore(ds, zerolog.Nop())
	assert.NotEmpty(t, s.Users())
}

func TestCRUD(t *testing.T) {
	s, _ := setupTestStore(t)

	u := s.CreateUser(User{Name: "Nadia Osei", Username: "nadia", Role: RoleDeveloper})
	require.NotEmpty(t, u.ID)
	assert.Equal(t, "active", u.Status)

	u.Email = "nadia@lumenhq.dev"
	s.UpdateUser(*u)
	assert.Equal(t, "nadia@lumenhq.dev", s.User(u.ID).Email)

	// Unknown ids are ignored.
	s.UpdateUser(User{ID: "nope", Name: "ghost"})
	s.DeleteUser("nope")
	assert.Len(t, s.Users(), 1)

	s.DeleteUser(u.ID)
	assert.Nil(t, s.User(u.ID))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleDeveloper}).IsAdmin())
	assert.True(t, (&User{Role: RoleDeveloper}).IsDeveloper())
	assert.False(t, (&User{Role: RoleDesigner}).IsDeveloper())
	var nilUser *User
	assert.False(t, nilUser.IsAdmin())
}

func TestUsersSortedByName(t *testing.T) {
	s, _ := setupTestStore(t)
	s.CreateUser(User{Name: "Zoe"})
	s.CreateUser(User{Name: "Abe"})

	users := s.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "Abe", users[0].Name)
}
