// Package notify is the append-only system notification log with per-entry
// read tracking. Entries are never deleted and never expire.
package notify

import (
	_ "embed"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/store"
)

// Type describes the urgency of a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeAlert   Type = "alert"
	TypeSuccess Type = "success"
)

// IsValid checks if the type value is valid.
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeAlert, TypeSuccess:
		return true
	}
	return false
}

// Notification is one system announcement.
type Notification struct {
	ID        string `json:"id" yaml:"id"`
	Type      Type   `json:"type" yaml:"type"`
	Title     string `json:"title" yaml:"title"`
	Message   string `json:"message" yaml:"message"`
	CreatedBy string `json:"created_by" yaml:"created_by"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
	Read      bool   `json:"read" yaml:"read"`
	Link      string `json:"link,omitempty" yaml:"link,omitempty"` // optional deep link
}

//go:embed seed.yaml
var seedYAML []byte

func seedNotifications() []*Notification {
	var doc struct {
		Notifications []*Notification `yaml:"notifications"`
	}
	if err := yaml.Unmarshal(seedYAML, &doc); err != nil {
		panic("notify: invalid embedded seed: " + err.Error())
	}
	return doc.Notifications
}

// Log is the notification log. Newest entries are prepended so the stored
// order is newest-first by convention of insertion.
type Log struct {
	mu      sync.RWMutex
	ds      *store.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
	entries []*Notification
}

// NewLog loads the notifications collection, reseeding if absent or corrupt.
func NewLog(ds *store.Store, logger zerolog.Logger, m *metrics.Metrics) *Log {
	l := &Log{
		ds:      ds,
		logger:  logger.With().Str("component", "notify").Logger(),
		metrics: m,
	}
	l.entries = store.LoadCollection(ds, store.KeyNotifications, seedNotifications)
	return l
}

// Publish appends an announcement to the log. Invalid types fall back to info.
func (l *Log) Publish(n Notification) *Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if !n.Type.IsValid() {
		n.Type = TypeInfo
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().UnixMilli()
	}
	l.entries = append([]*Notification{&n}, l.entries...)
	l.persist()
	l.metrics.RecordMutation("publish_notification")
	c := n
	return &c
}

// Notifications returns all entries, newest first.
func (l *Log) Notifications() []*Notification {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Notification, 0, len(l.entries))
	for _, n := range l.entries {
		c := *n
		out = append(out, &c)
	}
	return out
}

// MarkRead flips one entry to read. Unknown ids are ignored.
func (l *Log) MarkRead(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, n := range l.entries {
		if n.ID == id {
			if !n.Read {
				n.Read = true
				l.persist()
				l.metrics.RecordMutation("mark_read")
			}
			return
		}
	}
}

// MarkAllRead flips every unread entry.
func (l *Log) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := false
	for _, n := range l.entries {
		if !n.Read {
			n.Read = true
			changed = true
		}
	}
	if changed {
		l.persist()
		l.metrics.RecordMutation("mark_all_read")
	}
}

// UnreadCount returns the number of unread entries.
func (l *Log) UnreadCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, n := range l.entries {
		if !n.Read {
			count++
		}
	}
	return count
}

func (l *Log) persist() {
	if err := store.SaveCollection(l.ds, store.KeyNotifications, l.entries); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist notifications")
		return
	}
	l.metrics.RecordSnapshotWrite(store.KeyNotifications)
}
