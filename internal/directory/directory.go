// Package directory stores user records. It is a simple key-value style CRUD
// collection with no invariants: task assignees are not validated against it,
// and the access evaluator only reads role and membership from it.
package directory

import (
	_ "embed"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/lumenhq/workroom/internal/store"
)

// Role is a user's workspace role.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleDesigner  Role = "designer"
	RoleClient    Role = "client"
)

// IsValid checks if the role value is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDeveloper, RoleDesigner, RoleClient:
		return true
	}
	return false
}

// User is one directory record.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Role     Role   `json:"role" yaml:"role"`
	Status   string `json:"status" yaml:"status"` // active | inactive
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsDeveloper reports whether the user holds the developer role.
func (u *User) IsDeveloper() bool {
	return u != nil && u.Role == RoleDeveloper
}

//go:embed seed.yaml
var seedYAML []byte

func seedUsers() []*User {
	var doc struct {
		Users []*User `yaml:"users"`
	}
	if err := yaml.Unmarshal(seedYAML, &doc); err != nil {
		// The seed is embedded and validated by tests; an unparseable seed is
		// a build defect, not a runtime condition.
		panic("directory: invalid embedded seed: " + err.Error())
	}
	return doc.Users
}

// Store holds the user directory in memory and writes the whole collection
// through to the persistence adapter on every mutation.
type Store struct {
	mu     sync.RWMutex
	ds     *store.Store
	logger zerolog.Logger
	users  []*User
}

// NewStore loads the directory collection, reseeding if absent or corrupt.
func NewStore(ds *store.Store, logger zerolog.Logger) *Store {
	s := &Store{
		ds:     ds,
		logger: logger.With().Str("component", "directory").Logger(),
	}
	s.users = store.LoadCollection(ds, store.KeyDirectory, seedUsers)
	return s
}

// Users returns all directory records, sorted by name.
func (s *Store) Users() []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		c := *u
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// User returns the record with the given id, or nil.
func (s *Store) User(id string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u := s.find(id); u != nil {
		c := *u
		return &c
	}
	return nil
}

// CreateUser adds a record. A missing id is generated.
func (s *Store) CreateUser(u User) *User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Status == "" {
		u.Status = "active"
	}
	s.users = append(s.users, &u)
	s.persist()
	c := u
	return &c
}

// UpdateUser replaces the record with the same id. Unknown ids are ignored.
func (s *Store) UpdateUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.find(u.ID)
	if existing == nil {
		return
	}
	*existing = u
	s.persist()
}

// DeleteUser removes the record with the given id. Unknown ids are ignored.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			s.persist()
			return
		}
	}
}

func (s *Store) find(id string) *User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) persist() {
	if err := store.SaveCollection(s.ds, store.KeyDirectory, s.users); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist directory")
	}
}
