package search

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenhq/workroom/internal/directory"
	"github.com/lumenhq/workroom/internal/models"
	"github.com/lumenhq/workroom/internal/store"
	"github.com/lumenhq/workroom/internal/workspace"
)

var (
	adminUser = &directory.User{ID: "usr-admin", Role: directory.RoleAdmin}
	devUser   = &directory.User{ID: "usr-dev", Role: directory.RoleDeveloper}
)

// setupTestIndex builds a workspace with two projects: one assigned to
// devUser, one not. Both contain "orbit" matches in every bucket.
func setupTestIndex(t *testing.T) (*Index, *workspace.Project, *workspace.Project) {
	t.Helper()
	ds, err := store.New(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { ds.Close() })
	require.NoError(t, store.SaveCollection(ds, store.KeyProjects, []*workspace.Project{}))
	ws := workspace.NewStore(ds, zerolog.Nop(), nil)

	seen, err := ws.CreateProject(workspace.CreateProjectInput{
		Name: "Orbit Tracker", ClientName: "Helios Labs", CreatedBy: "usr-admin",
	})
	require.NoError(t, err)
	hidden, err := ws.CreateProject(workspace.CreateProjectInput{
		Name: "Orbit Billing", ClientName: "Helios Labs", CreatedBy: "usr-admin",
	})
	require.NoError(t, err)

	ws.AssignUser(seen.ID, devUser.ID)

	for _, id := range []string{seen.ID, hidden.ID} {
		ws.UpdateBrief(id, "usr-admin", workspace.BriefInput{Overview: "orbit dashboards for ops"})
		ws.AppendChatMessage(id, "usr-admin", "orbit sync is on friday", nil)
		ws.AddNote(id, "usr-admin", workspace.NoteInput{
			Title: "Orbit naming", Content: "keep the orbit prefix", Type: workspace.NoteTypeDecision,
		})
	}
	return NewIndex(ws, nil), ws.Project(seen.ID), ws.Project(hidden.ID)
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	ix, _, _ := setupTestIndex(t)

	for _, q := range []string{"", "   "} {
		res := ix.Search(q, adminUser)
		assert.Empty(t, res.Projects)
		assert.Empty(t, res.Briefs)
		assert.Empty(t, res.Messages)
		assert.Empty(t, res.Notes)
	}
}

func TestSearchVisibility(t *testing.T) {
	ix, seen, hidden := setupTestIndex(t)

	// The non-admin only matches the assigned project, in every bucket.
	res := ix.Search("orbit", devUser)
	require.Len(t, res.Projects, 1)
	assert.Equal(t, seen.ID, res.Projects[0].ID)
	require.Len(t, res.Briefs, 1)
	assert.Equal(t, seen.ID, res.Briefs[0].ProjectID)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, seen.ID, res.Messages[0].ProjectID)
	require.Len(t, res.Notes, 1)
	assert.Equal(t, seen.ID, res.Notes[0].ProjectID)

	// The same query under an admin includes the unassigned project too.
	adminRes := ix.Search("orbit", adminUser)
	assert.Len(t, adminRes.Projects, 2)
	ids := []string{adminRes.Projects[0].ID, adminRes.Projects[1].ID}
	assert.Contains(t, ids, hidden.ID)
}

func TestSearchCaseInsensitive(t *testing.T) {
	ix, _, _ := setupTestIndex(t)

	assert.Len(t, ix.Search("ORBIT", adminUser).Projects, 2)
	assert.Len(t, ix.Search("OrBiT", adminUser).Projects, 2)
}

func TestSearchBucketsAreIndependent(t *testing.T) {
	ix, _, _ := setupTestIndex(t)

	// "friday" only appears in chat messages.
	res := ix.Search("friday", adminUser)
	assert.Empty(t, res.Projects)
	assert.Empty(t, res.Briefs)
	assert.Len(t, res.Messages, 2)
	assert.Empty(t, res.Notes)

	// "dashboards" only appears in briefs.
	res = ix.Search("dashboards", adminUser)
	assert.Empty(t, res.Projects)
	assert.Len(t, res.Briefs, 2)

	// Client name feeds the projects bucket.
	res = ix.Search("helios", adminUser)
	assert.Len(t, res.Projects, 2)
}

func TestSearchPreservesProjectOrder(t *testing.T) {
	ix, seen, hidden := setupTestIndex(t)

	res := ix.Search("orbit", adminUser)
	require.Len(t, res.Projects, 2)
	assert.Equal(t, seen.ID, res.Projects[0].ID)
	assert.Equal(t, hidden.ID, res.Projects[1].ID)
}

func TestSearchMessageHitsAreIndividual(t *testing.T) {
	ix, _, _ := setupTestIndex(t)

	// Each matching message is its own hit.
	res := ix.Search("sync", adminUser)
	assert.Len(t, res.Messages, 2)
	for _, hit := range res.Messages {
		assert.IsType(t, models.ChatMessage{}, hit.Message)
		assert.Contains(t, hit.Message.Text, "sync")
	}
}
