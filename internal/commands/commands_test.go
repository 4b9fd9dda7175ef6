package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/fiches/internal/actions"
	"github.com/balkashynov/fiches/internal/db"
	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/importer"
	"github.com/balkashynov/fiches/internal/models"
	"github.com/balkashynov/fiches/internal/selectors"
)

var clock = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

func fixture() *models.Store {
	store := models.NewStore(clock)
	store.UI.ActiveUniversityID = "u-paris"
	store.Universities = []models.University{
		{
			ID:   "u-paris",
			Name: "Paris",
			Subjects: []models.Subject{
				{ID: "s-bio", Name: "Biologie", Owner: "Alice", Method: models.MethodAudioAKV},
				{ID: "s-chim", Name: "Chimie"},
			},
			Items: []models.Item{
				{ID: "it-101", SubjectID: "s-bio", Title: "Cellule", Status: models.StatusPending, Priority: models.PriorityMedium, Deadline: "2026-10-10"},
				{ID: "it-102", SubjectID: "s-bio", Title: "Tissus", Status: models.StatusInProgress, Priority: models.PriorityHigh, Progress: 40},
				{ID: "it-201", SubjectID: "s-chim", Title: "Atomes", Status: models.StatusValidated, Priority: models.PriorityLow, Progress: 100},
			},
		},
		{
			ID:       "u-lyon",
			Name:     "Lyon",
			Subjects: []models.Subject{{ID: "s-ana", Name: "Anatomie"}},
			Items: []models.Item{
				{ID: "it-301", SubjectID: "s-ana", Title: "Os", Status: models.StatusPending, Priority: models.PriorityMedium},
			},
		},
	}
	return store
}

func newService(adapter db.Adapter) *actions.Service {
	if adapter == nil {
		adapter = db.NewMemory()
	}
	return actions.New(fixture(), actions.Options{
		Adapter: adapter,
		IDs:     &ids.Sequence{Prefix: "new"},
		Now:     func() time.Time { return clock },
	})
}

// execute runs the command line against svc and returns everything printed
func execute(t *testing.T, svc *actions.Service, args ...string) (string, error) {
	t.Helper()
	prev := openService
	openService = func(*cobra.Command) (*actions.Service, func(), error) {
		return svc, func() {}, nil
	}
	t.Cleanup(func() { openService = prev })

	cmd := New()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func item(t *testing.T, svc *actions.Service, id string) models.Item {
	t.Helper()
	for _, u := range svc.Snapshot().Universities {
		if it := u.FindItem(id); it != nil {
			return *it
		}
	}
	t.Fatalf("item %s not found", id)
	return models.Item{}
}

func TestList(t *testing.T) {
	svc := newService(nil)

	output, err := execute(t, svc, "ls")
	require.NoError(t, err)
	assert.Contains(t, output, "Paris: 3 items")
	assert.Contains(t, output, "Cellule")
	assert.Contains(t, output, "OVERDUE (10/10/2026)")
	assert.Contains(t, output, "Alice")
	assert.NotContains(t, output, "it-301")

	output, err = execute(t, svc, "ls", "--search", "tiss")
	require.NoError(t, err)
	assert.Contains(t, output, "Tissus")
	assert.NotContains(t, output, "Cellule")

	output, err = execute(t, svc, "ls", "--sort", "priority", "--desc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(output, "Tissus"), strings.Index(output, "Cellule"))
	assert.Less(t, strings.Index(output, "Cellule"), strings.Index(output, "Atomes"))

	_, err = execute(t, svc, "ls", "--sort", "colour")
	assert.Error(t, err)
}

func TestListJSON(t *testing.T) {
	svc := newService(nil)
	output, err := execute(t, svc, "ls", "--json")
	require.NoError(t, err)

	var rows []struct {
		ID          string `json:"id"`
		SubjectName string `json:"subjectName"`
		Owner       string `json:"owner"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "it-101", rows[0].ID)
	assert.Equal(t, "Biologie", rows[0].SubjectName)
	assert.Equal(t, "Alice", rows[0].Owner)
}

func TestListHonoursFilters(t *testing.T) {
	svc := newService(nil)
	_, err := execute(t, svc, "filter", "set", "overdue", "yes")
	require.NoError(t, err)

	output, err := execute(t, svc, "ls", "--group")
	require.NoError(t, err)
	assert.Contains(t, output, "Cellule")
	assert.NotContains(t, output, "Tissus")
	assert.Contains(t, output, "Biologie  20%  Alice")
}

func TestKPI(t *testing.T) {
	svc := newService(nil)
	output, err := execute(t, svc, "kpi", "--json")
	require.NoError(t, err)

	var kpis selectors.KPIs
	require.NoError(t, json.Unmarshal([]byte(output), &kpis))
	assert.Equal(t, 3, kpis.Total)
	assert.Equal(t, 1, kpis.Validated)
	assert.Equal(t, 33, kpis.ValidatedPercent)
	assert.Equal(t, 1, kpis.Overdue)
	assert.Equal(t, 47, kpis.AverageProgress)

	output, err = execute(t, svc, "kpi")
	require.NoError(t, err)
	assert.Contains(t, output, "📊 Paris")
	assert.Contains(t, output, "1 (33%)")
}

func TestUpdateInline(t *testing.T) {
	svc := newService(nil)
	output, err := execute(t, svc, "update", "Tissus", "+low 90% due:none relire la fin")
	require.NoError(t, err)
	assert.Contains(t, output, "Updated it-102: Tissus")

	it := item(t, svc, "it-102")
	assert.Equal(t, models.PriorityLow, it.Priority)
	assert.Equal(t, 90, it.Progress)
	assert.Equal(t, "relire la fin", it.Comment)
	assert.Equal(t, models.StatusInProgress, it.Status)
}

func TestUpdateFlags(t *testing.T) {
	svc := newService(nil)
	_, err := execute(t, svc, "update", "it-101", "--status", "valide", "--due", "3 days", "--prof", "Dr Martin")
	require.NoError(t, err)

	it := item(t, svc, "it-101")
	assert.Equal(t, models.StatusValidated, it.Status)
	assert.Equal(t, 100, it.Progress)
	assert.Equal(t, "2026-10-18", it.Deadline)
	assert.Equal(t, "Dr Martin", it.Professor)
}

func TestUpdateRejects(t *testing.T) {
	svc := newService(nil)
	before := svc.Snapshot()

	_, err := execute(t, svc, "update", "it-1", "--prio", "high")
	assert.ErrorContains(t, err, "matches 2 items")

	_, err = execute(t, svc, "update", "it-101")
	assert.ErrorContains(t, err, "nothing to update")

	_, err = execute(t, svc, "update", "it-101", "+urgent")
	assert.ErrorContains(t, err, "Invalid priority")

	_, err = execute(t, svc, "update", "Os", "50%")
	assert.ErrorIs(t, err, actions.ErrNotFound, "item of another university")

	assert.Equal(t, before, svc.Snapshot())
}

func TestMove(t *testing.T) {
	svc := newService(nil)

	_, err := execute(t, svc, "move", "it-101", "next")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, item(t, svc, "it-101").Status)

	_, err = execute(t, svc, "move", "Cellule", "review")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInReview, item(t, svc, "it-101").Status)

	_, err = execute(t, svc, "move", "Atomes", "prev")
	require.NoError(t, err)
	atomes := item(t, svc, "it-201")
	assert.Equal(t, models.StatusInReview, atomes.Status)
	assert.Equal(t, 100, atomes.Progress)

	_, err = execute(t, svc, "move", "it-101", "archived")
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	svc := newService(nil)
	output, err := execute(t, svc, "rm", "Atomes")
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted it-201: Atomes")
	assert.Len(t, svc.Snapshot().Universities[0].Items, 2)

	_, err = execute(t, svc, "rm", "Atomes")
	assert.ErrorIs(t, err, actions.ErrNotFound)
}

func TestSubjectCommands(t *testing.T) {
	svc := newService(nil)

	output, err := execute(t, svc, "subject", "ls")
	require.NoError(t, err)
	assert.Contains(t, output, "Biologie")
	assert.Contains(t, output, "NB + audio + AKV")
	assert.Contains(t, output, "Owners: Alice")

	_, err = execute(t, svc, "subject", "assign", "chimie", "--owner", "Bob", "--method", "nb_audio_poly")
	require.NoError(t, err)
	chimie := svc.Snapshot().Universities[0].Subjects[1]
	assert.Equal(t, "Bob", chimie.Owner)
	assert.Equal(t, models.MethodAudioPoly, chimie.Method)

	_, err = execute(t, svc, "subject", "assign", "Biologie", "--remark", "audio fait")
	require.NoError(t, err)
	bio := svc.Snapshot().Universities[0].Subjects[0]
	assert.Equal(t, "Alice", bio.Owner, "omitted flags keep their value")
	assert.Equal(t, models.MethodAudioAKV, bio.Method)
	assert.Equal(t, "audio fait", bio.Remark)

	_, err = execute(t, svc, "subject", "assign", "chimie")
	assert.Error(t, err)

	output, err = execute(t, svc, "subject", "deadline", "s-bio", "15/12/2026")
	require.NoError(t, err)
	assert.Contains(t, output, "Set 2026-12-15 on 2 items in Biologie")
	assert.Equal(t, "2026-12-15", item(t, svc, "it-102").Deadline)

	output, err = execute(t, svc, "subject", "rm", "biologie")
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted Biologie and 2 items")
	assert.Len(t, svc.Snapshot().Universities[0].Items, 1)
}

func TestUniversityCommands(t *testing.T) {
	svc := newService(nil)

	output, err := execute(t, svc, "uni", "ls")
	require.NoError(t, err)
	assert.Contains(t, output, "Paris")
	assert.Contains(t, output, "Lyon")

	_, err = execute(t, svc, "uni", "use", "lyon")
	require.NoError(t, err)
	assert.Equal(t, "u-lyon", svc.Snapshot().UI.ActiveUniversityID)

	_, err = execute(t, svc, "rm", "Os")
	require.NoError(t, err, "items of the new active university resolve")

	_, err = execute(t, svc, "uni", "rm", "u-lyon")
	require.NoError(t, err)
	store := svc.Snapshot()
	require.Len(t, store.Universities, 1)
	assert.Equal(t, "u-paris", store.UI.ActiveUniversityID)

	_, err = execute(t, svc, "uni", "use", "Nice")
	assert.ErrorIs(t, err, actions.ErrNotFound)
}

func TestFilterAndView(t *testing.T) {
	svc := newService(nil)

	_, err := execute(t, svc, "filter", "set", "owner", "Alice")
	require.NoError(t, err)
	output, err := execute(t, svc, "filter", "set", "status", "en", "cours")
	require.NoError(t, err)
	assert.Contains(t, output, "owner=Alice, status=En cours")

	_, err = execute(t, svc, "view", "kanban")
	require.NoError(t, err)
	output, err = execute(t, svc, "filter", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "View: kanban")

	_, err = execute(t, svc, "filter", "clear")
	require.NoError(t, err)
	assert.True(t, svc.Snapshot().UI.Filters.IsZero())

	_, err = execute(t, svc, "view", "gantt")
	assert.ErrorIs(t, err, actions.ErrInvalid)
	_, err = execute(t, svc, "filter", "set", "colour", "red")
	assert.ErrorIs(t, err, actions.ErrInvalid)
}

func TestImportCSV(t *testing.T) {
	svc := newService(nil)
	path := filepath.Join(t.TempDir(), "Marseille.csv")
	require.NoError(t, os.WriteFile(path, []byte("Matière,Fiches de cours\nBio,M1\n,M2\n"), 0o644))

	output, err := execute(t, svc, "import", path)
	require.NoError(t, err)
	assert.Contains(t, output, "New items: 2")
	assert.Contains(t, output, "New universities: 1")

	store := svc.Snapshot()
	require.Len(t, store.Universities, 3)
	assert.Equal(t, "Marseille", store.Universities[2].Name)
	assert.Equal(t, store.Universities[2].ID, store.UI.ActiveUniversityID)

	_, err = execute(t, svc, "import", filepath.Join(t.TempDir(), "notes.txt"))
	assert.Error(t, err)
}

func TestExportPurgeRestore(t *testing.T) {
	svc := newService(nil)
	path := filepath.Join(t.TempDir(), "backup.json")

	output, err := execute(t, svc, "export", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Exported 2 universities")

	_, err = execute(t, svc, "purge")
	assert.Error(t, err, "purge needs --yes")
	assert.Len(t, svc.Snapshot().Universities, 2)

	_, err = execute(t, svc, "purge", "--yes")
	require.NoError(t, err)
	assert.Empty(t, svc.Snapshot().Universities)

	output, err = execute(t, svc, "restore", path, "--mode", "replace")
	require.NoError(t, err)
	assert.Contains(t, output, "(replace)")
	store := svc.Snapshot()
	require.Len(t, store.Universities, 2)
	assert.Equal(t, "u-paris", store.UI.ActiveUniversityID)

	_, err = execute(t, svc, "restore", path, "--mode", "append")
	assert.ErrorIs(t, err, actions.ErrInvalid)
}

func TestRestoreRejectsInvalidFile(t *testing.T) {
	svc := newService(nil)
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"universities":[{"id":""}]}`), 0o644))

	_, err := execute(t, svc, "restore", path)
	assert.ErrorIs(t, err, importer.ErrInvalidSnapshot)
	assert.Len(t, svc.Snapshot().Universities, 2)
}

func TestExportToStdout(t *testing.T) {
	svc := newService(nil)
	output, err := execute(t, svc, "export", "-")
	require.NoError(t, err)

	store, err := importer.DecodeSnapshot(strings.NewReader(output))
	require.NoError(t, err)
	assert.Len(t, store.Universities, 2)
}

func TestVersion(t *testing.T) {
	SetVersion("1.2.0", "abc123", "2026-10-01")
	t.Cleanup(func() { SetVersion("dev", "none", "unknown") })

	output, err := execute(t, newService(nil), "version")
	require.NoError(t, err)
	assert.Equal(t, "fiches 1.2.0 (commit abc123, built 2026-10-01)\n", output)
}

// offlineItems fails every item write
type offlineItems struct{ *db.Memory }

func (offlineItems) UpsertItem(context.Context, models.Item, int) error {
	return errors.New("backend offline")
}

func TestSyncFailureIsAWarning(t *testing.T) {
	svc := newService(offlineItems{db.NewMemory()})

	output, err := execute(t, svc, "update", "it-101", "--progress", "10")
	require.NoError(t, err)
	assert.Contains(t, output, "Saved locally, but 1 of 1 remote writes failed: ")
	assert.Equal(t, 10, item(t, svc, "it-101").Progress)
}

func TestLookup(t *testing.T) {
	store := fixture()

	it, err := resolveItem(store, "it-10")
	assert.ErrorContains(t, err, "matches 2 items")
	it, err = resolveItem(store, "it-2")
	require.NoError(t, err)
	assert.Equal(t, "Atomes", it.Title)
	it, err = resolveItem(store, "tissus")
	require.NoError(t, err)
	assert.Equal(t, "it-102", it.ID)

	_, err = resolveItem(store, "6f1c2e8a-8d7b-4e5b-9f3a-2b1c0d9e8f7a")
	assert.ErrorIs(t, err, actions.ErrNotFound)
	_, err = resolveItem(store, " ")
	assert.Error(t, err)

	u, err := resolveUniversity(store, "LYON")
	require.NoError(t, err)
	assert.Equal(t, "u-lyon", u.ID)

	store.UI.ActiveUniversityID = ""
	_, err = resolveSubject(store, "s-bio")
	assert.ErrorContains(t, err, "no university selected")
}
