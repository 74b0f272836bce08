// Package access is the single permission evaluator for sensitive project
// sub-resources: the task plan, brief, notes and in-project chat. The project
// summary (name, status, phase names, progress) is visible to any
// authenticated user regardless of the outcome here.
//
// The evaluator is advisory: it shapes what the renderer shows and what
// context the narration service receives. It is not a security boundary.
package access

import (
	"github.com/lumenhq/workroom/internal/directory"
	"github.com/lumenhq/workroom/internal/workspace"
)

// Capabilities is the capability set for one (user, project) pair.
type Capabilities struct {
	// CanViewSensitive grants read access to the task plan, brief, notes
	// and in-project chat.
	CanViewSensitive bool

	// CanEdit grants mutation access to the same sub-resources.
	CanEdit bool
}

// Evaluate computes the capability set for a user on a project.
// Every sensitive-data read path goes through here; the admin-or-assigned
// rule is never re-derived inline elsewhere.
func Evaluate(user *directory.User, project *workspace.Project) Capabilities {
	if user == nil || project == nil {
		return Capabilities{}
	}

	canView := user.IsAdmin() || project.IsAssigned(user.ID)
	return Capabilities{
		CanViewSensitive: canView,
		CanEdit:          user.IsAdmin() || (user.IsDeveloper() && canView),
	}
}
