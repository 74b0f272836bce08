// Package workspace owns the project collaboration domain: projects with
// phased task plans, briefs, notes and team chat. All mutations are
// synchronous, recompute the derived progress of the touched project, and
// write the whole collection through to the persistence adapter exactly once.
// Mutations against unknown ids are silent no-ops; callers that need feedback
// must check existence first.
package workspace

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/models"
	"github.com/lumenhq/workroom/internal/store"
)

var codeRe = regexp.MustCompile(`[^a-z0-9-]+`)

// GenerateCode converts a project name into a short URL-safe code.
func GenerateCode(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = codeRe.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if len(s) > 24 {
		s = s[:24]
	}
	return s
}

// Store holds all projects in memory and is the only mutation path for them.
type Store struct {
	mu       sync.RWMutex
	ds       *store.Store
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	projects []*Project
}

// NewStore loads the projects collection, reseeding if absent or corrupt.
func NewStore(ds *store.Store, logger zerolog.Logger, m *metrics.Metrics) *Store {
	s := &Store{
		ds:      ds,
		logger:  logger.With().Str("component", "workspace").Logger(),
		metrics: m,
	}
	s.projects = store.LoadCollection(ds, store.KeyProjects, seedProjects)
	for _, p := range s.projects {
		p.recomputeProgress()
	}
	return s
}

// Projects returns a snapshot of all projects in list order.
func (s *Store) Projects() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.Clone())
	}
	return out
}

// Project returns a snapshot of one project, or nil if unknown.
func (s *Store) Project(id string) *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.find(id); p != nil {
		return p.Clone()
	}
	return nil
}

// ProjectByCode returns a snapshot of the project with the given code, or nil.
func (s *Store) ProjectByCode(code string) *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.Code == code {
			return p.Clone()
		}
	}
	return nil
}

// ActivePhase returns the first phase containing an incomplete task, or nil
// when every task is done (or the plan is empty).
func ActivePhase(p *Project) *Phase {
	for _, ph := range p.Phases {
		for _, t := range ph.Tasks {
			if !t.Completed {
				return ph
			}
		}
	}
	return nil
}

// CreateProject creates a project with one empty seed phase and no tasks.
func (s *Store) CreateProject(input CreateProjectInput) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := input.Code
	if code == "" {
		code = GenerateCode(input.Name)
	}
	if code == "" {
		return nil, fmt.Errorf("invalid project name: generates empty code")
	}
	for _, p := range s.projects {
		if p.Code == code {
			return nil, fmt.Errorf("project with code %q already exists", code)
		}
	}

	now := time.Now().UnixMilli()
	p := &Project{
		ID:          uuid.New().String(),
		Code:        code,
		Name:        input.Name,
		ClientName:  input.ClientName,
		Status:      StatusPending,
		Description: input.Description,
		DueDate:     input.DueDate,
		Brief:       Brief{Version: 1, LastUpdatedBy: input.CreatedBy, LastUpdatedAt: now},
		Phases: []*Phase{
			{ID: uuid.New().String(), Name: "Phase 1", Tasks: []*Task{}},
		},
		Notes:         []*Note{},
		Messages:      []models.ChatMessage{},
		AssignedUsers: []string{},
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	p.recomputeProgress()
	s.projects = append(s.projects, p)
	s.persist()
	s.metrics.RecordMutation("create_project")

	s.logger.Info().Str("project", p.ID).Str("code", p.Code).Msg("project created")
	return p.Clone(), nil
}

// UpdateProject applies a field patch. Progress is never settable, and the
// deletion-requested status is owned by the deletion workflow, so attempts to
// set it here are dropped.
func (s *Store) UpdateProject(id string, input UpdateProjectInput) *Project {
	return s.mutate("update_project", id, func(p *Project) {
		if input.Name != nil {
			p.Name = *input.Name
		}
		if input.ClientName != nil {
			p.ClientName = *input.ClientName
		}
		if input.Description != nil {
			p.Description = *input.Description
		}
		if input.DueDate != nil {
			p.DueDate = *input.DueDate
		}
		if input.Status != nil && input.Status.IsValid() && *input.Status != StatusDeletionRequested {
			p.Status = *input.Status
		}
	})
}

// DeleteProject hard-removes a project. Unconditional and non-recoverable at
// this layer; the deletion workflow layers approval on top for callers that
// lack delete authority.
func (s *Store) DeleteProject(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// removeLocked removes the project and persists. Caller must hold s.mu.
func (s *Store) removeLocked(id string) bool {
	for i, p := range s.projects {
		if p.ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			s.persist()
			s.metrics.RecordMutation("delete_project")
			s.logger.Info().Str("project", id).Msg("project removed")
			return true
		}
	}
	return false
}

// ReorderProjects rearranges the project list to match the given id order.
// Ids not present in the list are ignored; projects not named keep their
// relative order after the named ones.
func (s *Store) ReorderProjects(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]*Project, len(s.projects))
	for _, p := range s.projects {
		byID[p.ID] = p
	}

	reordered := make([]*Project, 0, len(s.projects))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && !seen[id] {
			reordered = append(reordered, p)
			seen[id] = true
		}
	}
	for _, p := range s.projects {
		if !seen[p.ID] {
			reordered = append(reordered, p)
		}
	}
	s.projects = reordered
	s.persist()
	s.metrics.RecordMutation("reorder_projects")
}

// AppendChatMessage appends one message to the project chat. Each attachment
// is admitted against the chat ceiling individually; oversized files are
// rejected by name while the rest of the batch proceeds. Returns nil when the
// project is unknown.
func (s *Store) AppendChatMessage(projectID, authorID, text string, attachments []models.Attachment) (*models.ChatMessage, []models.RejectedAttachment) {
	accepted, rejected := models.AdmitAttachments(attachments, models.MaxChatAttachmentBytes)

	var msg *models.ChatMessage
	s.mutate("append_chat_message", projectID, func(p *Project) {
		m := models.ChatMessage{
			ID:          uuid.New().String(),
			AuthorID:    authorID,
			Text:        text,
			Timestamp:   time.Now().UnixMilli(),
			Attachments: accepted,
		}
		p.Messages = append(p.Messages, m)
		msg = &m
	})
	if msg == nil {
		return nil, nil
	}
	return msg, rejected
}

// AddNote appends a note to the project. Invalid note types fall back to the
// plain note type.
func (s *Store) AddNote(projectID, authorID string, input NoteInput) *Note {
	var note *Note
	s.mutate("add_note", projectID, func(p *Project) {
		noteType := input.Type
		if !noteType.IsValid() {
			noteType = NoteTypeNote
		}
		now := time.Now().UnixMilli()
		n := &Note{
			ID:        uuid.New().String(),
			AuthorID:  authorID,
			Title:     input.Title,
			Content:   input.Content,
			Type:      noteType,
			CreatedAt: now,
			UpdatedAt: now,
		}
		p.Notes = append(p.Notes, n)
		c := *n
		note = &c
	})
	return note
}

// UpdateNote edits a note in place. Unknown project or note ids are no-ops.
func (s *Store) UpdateNote(projectID, noteID string, input NoteInput) {
	s.mutate("update_note", projectID, func(p *Project) {
		for _, n := range p.Notes {
			if n.ID == noteID {
				n.Title = input.Title
				n.Content = input.Content
				if input.Type.IsValid() {
					n.Type = input.Type
				}
				n.UpdatedAt = time.Now().UnixMilli()
				return
			}
		}
	})
}

// DeleteNote removes a note. Unknown ids are no-ops.
func (s *Store) DeleteNote(projectID, noteID string) {
	s.mutate("delete_note", projectID, func(p *Project) {
		for i, n := range p.Notes {
			if n.ID == noteID {
				p.Notes = append(p.Notes[:i], p.Notes[i+1:]...)
				return
			}
		}
	})
}

// UpdateBrief replaces the seven brief fields and bumps the version. The
// version is monotonic: it increments on every edit.
func (s *Store) UpdateBrief(projectID, editorID string, input BriefInput) *Project {
	return s.mutate("update_brief", projectID, func(p *Project) {
		p.Brief.Overview = input.Overview
		p.Brief.Objectives = input.Objectives
		p.Brief.TargetAudience = input.TargetAudience
		p.Brief.Scope = input.Scope
		p.Brief.Deliverables = input.Deliverables
		p.Brief.Constraints = input.Constraints
		p.Brief.SuccessCriteria = input.SuccessCriteria
		p.Brief.Version++
		p.Brief.LastUpdatedBy = editorID
		p.Brief.LastUpdatedAt = time.Now().UnixMilli()
	})
}

// AddPhase appends an empty phase to the project plan.
func (s *Store) AddPhase(projectID, name string) *Phase {
	var phase *Phase
	s.mutate("add_phase", projectID, func(p *Project) {
		ph := &Phase{ID: uuid.New().String(), Name: name, Tasks: []*Task{}}
		p.Phases = append(p.Phases, ph)
		c := *ph
		phase = &c
	})
	return phase
}

// DeletePhase removes a phase and cascades to its tasks.
func (s *Store) DeletePhase(projectID, phaseID string) {
	s.mutate("delete_phase", projectID, func(p *Project) {
		for i, ph := range p.Phases {
			if ph.ID == phaseID {
				p.Phases = append(p.Phases[:i], p.Phases[i+1:]...)
				return
			}
		}
	})
}

// CompletePhase marks every task in one phase done in a single step. Used for
// sprint close-out.
func (s *Store) CompletePhase(projectID, phaseID string) *Project {
	return s.mutate("complete_phase", projectID, func(p *Project) {
		for _, ph := range p.Phases {
			if ph.ID == phaseID {
				for _, t := range ph.Tasks {
					t.Completed = true
				}
				return
			}
		}
	})
}

// AddTask appends a task to a phase, optionally pre-assigned. The assignee is
// not validated against the directory.
func (s *Store) AddTask(projectID, phaseID, title, assignedTo string) *Task {
	var task *Task
	s.mutate("add_task", projectID, func(p *Project) {
		for _, ph := range p.Phases {
			if ph.ID == phaseID {
				t := &Task{ID: uuid.New().String(), Title: title, AssignedTo: assignedTo}
				ph.Tasks = append(ph.Tasks, t)
				c := *t
				task = &c
				return
			}
		}
	})
	return task
}

// ToggleTask flips a task's completion flag.
func (s *Store) ToggleTask(projectID, taskID string) *Project {
	return s.mutate("toggle_task", projectID, func(p *Project) {
		for _, ph := range p.Phases {
			for _, t := range ph.Tasks {
				if t.ID == taskID {
					t.Completed = !t.Completed
					return
				}
			}
		}
	})
}

// DeleteTask removes a task from its phase.
func (s *Store) DeleteTask(projectID, taskID string) {
	s.mutate("delete_task", projectID, func(p *Project) {
		for _, ph := range p.Phases {
			for i, t := range ph.Tasks {
				if t.ID == taskID {
					ph.Tasks = append(ph.Tasks[:i], ph.Tasks[i+1:]...)
					return
				}
			}
		}
	})
}

// AssignUser adds a user id to the project team. Duplicates are ignored.
func (s *Store) AssignUser(projectID, userID string) {
	s.mutate("assign_user", projectID, func(p *Project) {
		if p.IsAssigned(userID) {
			return
		}
		p.AssignedUsers = append(p.AssignedUsers, userID)
	})
}

// UnassignUser removes a user id from the project team.
func (s *Store) UnassignUser(projectID, userID string) {
	s.mutate("unassign_user", projectID, func(p *Project) {
		for i, id := range p.AssignedUsers {
			if id == userID {
				p.AssignedUsers = append(p.AssignedUsers[:i], p.AssignedUsers[i+1:]...)
				return
			}
		}
	})
}

// mutate runs fn against the named project, recomputes derived progress,
// performs the single write-through, and returns an immutable snapshot of the
// updated project. Unknown ids are silent no-ops returning nil.
func (s *Store) mutate(op, projectID string, fn func(p *Project)) *Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(projectID)
	if p == nil {
		return nil
	}
	fn(p)
	p.recomputeProgress()
	p.UpdatedAt = time.Now().UnixMilli()
	s.persist()
	s.metrics.RecordMutation(op)
	return p.Clone()
}

func (s *Store) find(id string) *Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// persist rewrites the whole projects collection. Caller must hold s.mu.
func (s *Store) persist() {
	if err := store.SaveCollection(s.ds, store.KeyProjects, s.projects); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist projects")
		return
	}
	s.metrics.RecordSnapshotWrite(store.KeyProjects)
}
