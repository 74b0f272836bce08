// Package search is a stateless cross-entity query over the workspace,
// filtered through the access evaluator. Visibility is strict: a non-admin
// user never sees matches from projects they are not assigned to, in any
// bucket — summary-level visibility does not leak into search.
package search

import (
	"strings"

	"github.com/lumenhq/workroom/internal/access"
	"github.com/lumenhq/workroom/internal/directory"
	"github.com/lumenhq/workroom/internal/metrics"
	"github.com/lumenhq/workroom/internal/models"
	"github.com/lumenhq/workroom/internal/workspace"
)

// Results holds the four ordered result buckets. No ranking is applied:
// results preserve project iteration order, then natural sub-entity order.
type Results struct {
	Projects []*workspace.Project
	Briefs   []BriefHit
	Messages []MessageHit
	Notes    []NoteHit
}

// BriefHit is a brief whose concatenated fields matched the query.
type BriefHit struct {
	ProjectID   string
	ProjectCode string
	ProjectName string
	Brief       workspace.Brief
}

// MessageHit is one chat message whose text matched the query.
type MessageHit struct {
	ProjectID   string
	ProjectCode string
	ProjectName string
	Message     models.ChatMessage
}

// NoteHit is one note whose title or content matched the query.
type NoteHit struct {
	ProjectID   string
	ProjectCode string
	ProjectName string
	Note        workspace.Note
}

// Index queries the workspace store through the access evaluator.
type Index struct {
	ws      *workspace.Store
	metrics *metrics.Metrics
}

// NewIndex creates a search index over the given workspace store.
func NewIndex(ws *workspace.Store, m *metrics.Metrics) *Index {
	return &Index{ws: ws, metrics: m}
}

// Search runs a case-insensitive substring query for the given user. An
// empty or blank query returns all buckets empty.
func (ix *Index) Search(query string, user *directory.User) Results {
	var res Results
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res
	}
	ix.metrics.RecordSearch()

	for _, p := range ix.ws.Projects() {
		if !access.Evaluate(user, p).CanViewSensitive {
			continue
		}

		if matches(q, p.Name, p.Code, p.ClientName, p.Description) {
			res.Projects = append(res.Projects, p)
		}

		if matches(q, strings.Join(p.Brief.Fields(), " ")) {
			res.Briefs = append(res.Briefs, BriefHit{
				ProjectID:   p.ID,
				ProjectCode: p.Code,
				ProjectName: p.Name,
				Brief:       p.Brief,
			})
		}

		for _, m := range p.Messages {
			if matches(q, m.Text) {
				res.Messages = append(res.Messages, MessageHit{
					ProjectID:   p.ID,
					ProjectCode: p.Code,
					ProjectName: p.Name,
					Message:     m,
				})
			}
		}

		for _, n := range p.Notes {
			if matches(q, n.Title, n.Content) {
				res.Notes = append(res.Notes, NoteHit{
					ProjectID:   p.ID,
					ProjectCode: p.Code,
					ProjectName: p.Name,
					Note:        *n,
				})
			}
		}
	}
	return res
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
