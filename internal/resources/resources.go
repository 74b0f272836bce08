// Package resources is the shared file library: team-wide uploads persisted
// as one collection. Files are admitted against a 10 MB ceiling, independent
// of the 5 MB chat attachment ceiling.
package resources

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/models"
	"github.com/lumenhq/workroom/internal/store"
)

// ErrFileTooLarge is returned when an upload exceeds the resource ceiling.
var ErrFileTooLarge = fmt.Errorf("file exceeds the %d MB resource limit", models.MaxResourceBytes>>20)

// Resource is one shared file record.
type Resource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	Category    string `json:"category"`
	UploadedBy  string `json:"uploaded_by"`
	Description string `json:"description"`
	ContentRef  string `json:"content_ref"`
	UploadedAt  int64  `json:"uploaded_at"`
}

// Library holds the shared resources in memory and writes the whole
// collection through on every mutation.
type Library struct {
	mu      sync.RWMutex
	ds      *store.Store
	logger  zerolog.Logger
	metrics *metrics.Metrics
	files   []*Resource
}

// NewLibrary loads the resources collection, reseeding (to empty) if absent
// or corrupt.
func NewLibrary(ds *store.Store, logger zerolog.Logger, m *metrics.Metrics) *Library {
	l := &Library{
		ds:      ds,
		logger:  logger.With().Str("component", "resources").Logger(),
		metrics: m,
	}
	l.files = store.LoadCollection(ds, store.KeyResources, func() []*Resource { return []*Resource{} })
	return l
}

// Upload admits a file into the library. Oversized files are rejected with
// ErrFileTooLarge and no side effects.
func (l *Library) Upload(r Resource) (*Resource, error) {
	if r.Size > models.MaxResourceBytes {
		return nil, fmt.Errorf("%s: %w", r.Name, ErrFileTooLarge)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.UploadedAt == 0 {
		r.UploadedAt = time.Now().UnixMilli()
	}
	l.files = append(l.files, &r)
	l.persist()
	l.metrics.RecordMutation("upload_resource")
	c := r
	return &c, nil
}

// Delete removes a file record. Unknown ids are ignored.
func (l *Library) Delete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, f := range l.files {
		if f.ID == id {
			l.files = append(l.files[:i], l.files[i+1:]...)
			l.persist()
			l.metrics.RecordMutation("delete_resource")
			return
		}
	}
}

// Resources returns all file records in upload order.
func (l *Library) Resources() []*Resource {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Resource, 0, len(l.files))
	for _, f := range l.files {
		c := *f
		out = append(out, &c)
	}
	return out
}

func (l *Library) persist() {
	if err := store.SaveCollection(l.ds, store.KeyResources, l.files); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist resources")
		return
	}
	l.metrics.RecordSnapshotWrite(store.KeyResources)
}
