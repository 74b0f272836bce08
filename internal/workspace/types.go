package workspace

import (
	"math"

	"github.com/lumenhq/workroom/internal/models"
)

// Status is a project's lifecycle status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusCompleted  Status = "completed"

	// StatusDeletionRequested is owned by the deletion workflow; ordinary
	// field updates cannot set it.
	StatusDeletionRequested Status = "deletion_requested"
)

// IsValid checks if the status value is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusOnHold, StatusCompleted, StatusDeletionRequested:
		return true
	}
	return false
}

// NoteType categorizes a project note.
type NoteType string

const (
	NoteTypeNote         NoteType = "note"
	NoteTypeDecision     NoteType = "decision"
	NoteTypeArchitecture NoteType = "architecture"
)

// IsValid checks if the note type value is valid.
func (t NoteType) IsValid() bool {
	switch t {
	case NoteTypeNote, NoteTypeDecision, NoteTypeArchitecture:
		return true
	}
	return false
}

// Project is one client project with its full plan, brief, notes and chat.
type Project struct {
	ID            string               `json:"id" yaml:"id"`
	Code          string               `json:"code" yaml:"code"`
	Name          string               `json:"name" yaml:"name"`
	ClientName    string               `json:"client_name" yaml:"client_name"`
	Status        Status               `json:"status" yaml:"status"`
	Progress      int                  `json:"progress" yaml:"progress"` // derived; see recomputeProgress
	DueDate       int64                `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Description   string               `json:"description" yaml:"description"`
	Brief         Brief                `json:"brief" yaml:"brief"`
	Phases        []*Phase             `json:"phases" yaml:"phases"`
	Notes         []*Note              `json:"notes" yaml:"notes"`
	Messages      []models.ChatMessage `json:"messages" yaml:"messages"`
	AssignedUsers []string             `json:"assigned_users" yaml:"assigned_users"`
	CreatedBy     string               `json:"created_by" yaml:"created_by"`
	CreatedAt     int64                `json:"created_at" yaml:"created_at"`
	UpdatedAt     int64                `json:"updated_at" yaml:"updated_at"`
}

// Phase is a named bucket of tasks representing one stage of the plan.
type Phase struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Tasks []*Task `json:"tasks" yaml:"tasks"`
}

// Task is one work item inside a phase.
type Task struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Completed  bool   `json:"completed" yaml:"completed"`
	AssignedTo string `json:"assigned_to,omitempty" yaml:"assigned_to,omitempty"`
}

// Brief is the versioned requirements document attached to a project.
type Brief struct {
	Overview        string `json:"overview" yaml:"overview"`
	Objectives      string `json:"objectives" yaml:"objectives"`
	TargetAudience  string `json:"target_audience" yaml:"target_audience"`
	Scope           string `json:"scope" yaml:"scope"`
	Deliverables    string `json:"deliverables" yaml:"deliverables"`
	Constraints     string `json:"constraints" yaml:"constraints"`
	SuccessCriteria string `json:"success_criteria" yaml:"success_criteria"`
	Version         int    `json:"version" yaml:"version"`
	LastUpdatedBy   string `json:"last_updated_by" yaml:"last_updated_by"`
	LastUpdatedAt   int64  `json:"last_updated_at" yaml:"last_updated_at"`
}

// Fields returns the seven free-text brief fields in document order.
func (b *Brief) Fields() []string {
	return []string{
		b.Overview, b.Objectives, b.TargetAudience, b.Scope,
		b.Deliverables, b.Constraints, b.SuccessCriteria,
	}
}

// Note is an internal project note.
type Note struct {
	ID        string   `json:"id" yaml:"id"`
	AuthorID  string   `json:"author_id" yaml:"author_id"`
	Title     string   `json:"title" yaml:"title"`
	Content   string   `json:"content" yaml:"content"`
	Type      NoteType `json:"type" yaml:"type"`
	CreatedAt int64    `json:"created_at" yaml:"created_at"`
	UpdatedAt int64    `json:"updated_at" yaml:"updated_at"`
}

// IsAssigned reports whether the given user id is on the project team.
func (p *Project) IsAssigned(userID string) bool {
	for _, id := range p.AssignedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.Phases = make([]*Phase, len(p.Phases))
	for i, ph := range p.Phases {
		cp := *ph
		cp.Tasks = make([]*Task, len(ph.Tasks))
		for j, t := range ph.Tasks {
			ct := *t
			cp.Tasks[j] = &ct
		}
		c.Phases[i] = &cp
	}
	c.Notes = make([]*Note, len(p.Notes))
	for i, n := range p.Notes {
		cn := *n
		c.Notes[i] = &cn
	}
	c.Messages = append([]models.ChatMessage(nil), p.Messages...)
	c.AssignedUsers = append([]string(nil), p.AssignedUsers...)
	return &c
}

// recomputeProgress derives Progress from the current task set. This is the
// single source of truth for the field; no operation sets it directly.
func (p *Project) recomputeProgress() {
	total, done := 0, 0
	for _, ph := range p.Phases {
		for _, t := range ph.Tasks {
			total++
			if t.Completed {
				done++
			}
		}
	}
	if total == 0 {
		p.Progress = 0
		return
	}
	p.Progress = int(math.Round(100 * float64(done) / float64(total)))
}

// CreateProjectInput holds the parameters for creating a new project.
type CreateProjectInput struct {
	Code        string
	Name        string
	ClientName  string
	Description string
	DueDate     int64
	CreatedBy   string
}

// UpdateProjectInput holds the field patch for updating a project.
// Nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string
	ClientName  *string
	Description *string
	DueDate     *int64
	Status      *Status
}

// NoteInput holds the editable fields of a note.
type NoteInput struct {
	Title   string
	Content string
	Type    NoteType
}

// BriefInput holds the seven editable brief fields.
type BriefInput struct {
	Overview        string
	Objectives      string
	TargetAudience  string
	Scope           string
	Deliverables    string
	Constraints     string
	SuccessCriteria string
}
