package narration

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lumenhq/workroom/internal/access"
	"github.com/lumenhq/workroom/internal/cache"
	"github.com/lumenhq/workroom/internal/directory"
	"github.com/lumenhq/workroom/internal/workspace"
)

// recentChatWindow bounds how many in-project chat messages feed the
// narration context.
const recentChatWindow = 20

// ContextBuilder renders the read-only, permission-filtered project snapshot
// handed to the narration service. Snapshots are memoized per project
// revision and capability, so repeated narration requests against an
// unchanged project reuse the rendered context.
type ContextBuilder struct {
	snapshots *cache.LRU[string, string]
}

// NewContextBuilder creates a builder with a bounded snapshot cache.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{snapshots: cache.New[string, string](64)}
}

// ProjectContext returns the narration context for one (user, project) pair.
// Users without sensitive access get a summary-only snapshot: name, status,
// phase names and progress — never the task plan, brief, notes or chat.
func (b *ContextBuilder) ProjectContext(user *directory.User, p *workspace.Project) string {
	caps := access.Evaluate(user, p)

	key := p.ID + ":" + strconv.FormatInt(p.UpdatedAt, 10) + ":" + strconv.FormatBool(caps.CanViewSensitive)
	if snap, ok := b.snapshots.Get(key); ok {
		return snap
	}

	var snap string
	if caps.CanViewSensitive {
		snap = fullSnapshot(p)
	} else {
		snap = summarySnapshot(p)
	}
	b.snapshots.Put(key, snap)
	return snap
}

func summarySnapshot(p *workspace.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Project: %s (%s)\n", p.Name, p.Code)
	fmt.Fprintf(&sb, "Status: %s | Progress: %d%%\n", p.Status, p.Progress)
	if len(p.Phases) > 0 {
		sb.WriteString("Phases:\n")
		for _, ph := range p.Phases {
			fmt.Fprintf(&sb, "- %s\n", ph.Name)
		}
	}
	sb.WriteString("\nDetailed plan, brief, notes and chat are restricted for this user.\n")
	return sb.String()
}

func fullSnapshot(p *workspace.Project) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Project: %s (%s)\n", p.Name, p.Code)
	fmt.Fprintf(&sb, "Client: %s | Status: %s | Progress: %d%%\n", p.ClientName, p.Status, p.Progress)
	if p.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", p.Description)
	}

	sb.WriteString("\n## Plan\n")
	for _, ph := range p.Phases {
		fmt.Fprintf(&sb, "### %s\n", ph.Name)
		for _, t := range ph.Tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s", mark, t.Title)
			if t.AssignedTo != "" {
				fmt.Fprintf(&sb, " (%s)", t.AssignedTo)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n## Brief\n")
	labels := []string{
		"Overview", "Objectives", "Target audience", "Scope",
		"Deliverables", "Constraints", "Success criteria",
	}
	for i, field := range p.Brief.Fields() {
		if field == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", labels[i], field)
	}

	if len(p.Notes) > 0 {
		sb.WriteString("\n## Notes\n")
		for _, n := range p.Notes {
			fmt.Fprintf(&sb, "- [%s] %s: %s\n", n.Type, n.Title, n.Content)
		}
	}

	if len(p.Messages) > 0 {
		sb.WriteString("\n## Recent chat\n")
		msgs := p.Messages
		if len(msgs) > recentChatWindow {
			msgs = msgs[len(msgs)-recentChatWindow:]
		}
		for _, m := range msgs {
			fmt.Fprintf(&sb, "%s: %s\n", m.AuthorID, m.Text)
		}
	}
	return sb.String()
}
