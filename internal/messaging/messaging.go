// Package messaging owns direct-message threads: private two-participant
// conversations, distinct from in-project team chat. Threads are deduplicated
// per unordered participant pair — at most one thread per pair, ever.
package messaging

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/models"
	"github.com/lumenhq/workroom/internal/store"
)

// Thread is one direct-message conversation between exactly two users.
type Thread struct {
	ID           string               `json:"id"`
	Participants [2]string            `json:"participants"`
	Messages     []models.ChatMessage `json:"messages"`
	LastMessage  string               `json:"last_message"`
	LastUpdated  int64                `json:"last_updated"`
}

// HasParticipant reports whether the user is one of the two participants.
func (t *Thread) HasParticipant(userID string) bool {
	return t.Participants[0] == userID || t.Participants[1] == userID
}

// pairEqual compares the thread's participant pair to {a, b} ignoring order.
func (t *Thread) pairEqual(a, b string) bool {
	return (t.Participants[0] == a && t.Participants[1] == b) ||
		(t.Participants[0] == b && t.Participants[1] == a)
}

// Store holds all DM threads in memory and writes the whole collection
// through on every mutation.
type Store struct {
	mu      sync.RWMutex
	ds      *store.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
	threads []*Thread
}

// NewStore loads the dm-threads collection, reseeding (to empty) if absent
// or corrupt.
func NewStore(ds *store.Store, logger zerolog.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		ds:      ds,
		logger:  logger.With().Str("component", "messaging").Logger(),
		metrics: m,
	}
	s.threads = store.LoadCollection(ds, store.KeyThreads, func() []*Thread { return []*Thread{} })
	return s
}

// OpenThread returns the thread for the unordered pair {userA, userB},
// creating it if none exists. Repeated calls in either argument order return
// the same thread.
func (s *Store) OpenThread(userA, userB string) (*Thread, error) {
	if userA == "" || userB == "" {
		return nil, fmt.Errorf("thread requires two participants")
	}
	if userA == userB {
		return nil, fmt.Errorf("cannot open a thread with a single participant")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.threads {
		if t.pairEqual(userA, userB) {
			return t.clone(), nil
		}
	}

	t := &Thread{
		ID:           uuid.New().String(),
		Participants: [2]string{userA, userB},
		Messages:     []models.ChatMessage{},
		LastUpdated:  time.Now().UnixMilli(),
	}
	s.threads = append(s.threads, t)
	s.persist()
	s.metrics.RecordMutation("open_thread")
	s.logger.Info().Str("thread", t.ID).Msg("thread opened")
	return t.clone(), nil
}

// SendMessage appends a message to a thread. Attachments are admitted against
// the chat ceiling per file; oversized files are rejected by name while the
// rest proceed. An empty text with attachments falls back to an
// attachment-count placeholder for the thread list preview. Unknown thread
// ids are silent no-ops.
func (s *Store) SendMessage(threadID, authorID, text string, attachments []models.Attachment) (*models.ChatMessage, []models.RejectedAttachment) {
	accepted, rejected := models.AdmitAttachments(attachments, models.MaxChatAttachmentBytes)

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(threadID)
	if t == nil {
		return nil, nil
	}

	msg := models.ChatMessage{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		Text:        text,
		Timestamp:   time.Now().UnixMilli(),
		Attachments: accepted,
	}
	t.Messages = append(t.Messages, msg)

	preview := text
	if preview == "" && len(accepted) > 0 {
		preview = fmt.Sprintf("%d attachment(s)", len(accepted))
	}
	t.LastMessage = preview
	t.LastUpdated = msg.Timestamp

	s.persist()
	s.metrics.RecordMutation("send_message")
	return &msg, rejected
}

// Thread returns a snapshot of one thread, or nil if unknown.
func (s *Store) Thread(id string) *Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t := s.find(id); t != nil {
		return t.clone()
	}
	return nil
}

// Threads returns all threads, newest-LastUpdated-first.
func (s *Store) Threads() []*Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedClones(s.threads, func(*Thread) bool { return true })
}

// ThreadsFor returns the user's threads, newest-LastUpdated-first.
func (s *Store) ThreadsFor(userID string) []*Thread {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedClones(s.threads, func(t *Thread) bool { return t.HasParticipant(userID) })
}

func sortedClones(threads []*Thread, keep func(*Thread) bool) []*Thread {
	out := make([]*Thread, 0, len(threads))
	for _, t := range threads {
		if keep(t) {
			out = append(out, t.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastUpdated > out[j].LastUpdated })
	return out
}

func (t *Thread) clone() *Thread {
	c := *t
	c.Messages = append([]models.ChatMessage(nil), t.Messages...)
	return &c
}

func (s *Store) find(id string) *Thread {
	for _, t := range s.threads {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (s *Store) persist() {
	if err := store.SaveCollection(s.ds, store.KeyThreads, s.threads); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist threads")
		return
	}
	s.metrics.RecordSnapshotWrite(store.KeyThreads)
}
