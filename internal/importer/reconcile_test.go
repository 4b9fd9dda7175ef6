package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/models"
)

var now = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func workbook() []Sheet {
	return []Sheet{
		{Name: "Paris", Rows: [][]string{
			{"Matière", "Fiches de cours actualisées"},
			{"Bio", "Topic A"},
			{"", "Topic B"},
			{"bio ", "Topic A"},
			{"Chimie", "Atomes"},
		}},
	}
}

func TestApplyCreatesUniversitySubjectsAndItems(t *testing.T) {
	store := models.NewStore(now)
	gen := &ids.Sequence{Prefix: "t"}

	report, err := Apply(store, ExtractSheets(workbook()), gen, now)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 3, report.Created)
	assert.Equal(t, 2, report.CreatedSubjects)
	assert.Equal(t, 1, report.CreatedUniversities)

	require.Len(t, store.Universities, 1)
	univ := store.Universities[0]
	assert.Equal(t, "Paris", univ.Name)
	assert.Equal(t, univ.ID, store.UI.ActiveUniversityID)
	assert.Equal(t, []string{univ.ID}, report.Universities)

	require.Len(t, univ.Subjects, 2)
	assert.Equal(t, "Bio", univ.Subjects[0].Name)
	assert.Equal(t, "", univ.Subjects[0].Owner)

	require.Len(t, univ.Items, 3)
	for _, it := range univ.Items {
		assert.Equal(t, models.StatusPending, it.Status)
		assert.Equal(t, models.PriorityMedium, it.Priority)
		assert.Equal(t, 0, it.Progress)
		assert.Empty(t, it.Deadline)
		assert.Equal(t, now, it.UpdatedAt)
	}
	assert.Equal(t, univ.Subjects[0].ID, univ.Items[1].SubjectID, "carried-forward row stays under Bio")
	assert.Equal(t, "Bio", univ.Items[1].SubjectNameCache)
}

func TestApplyIsIdempotent(t *testing.T) {
	store := models.NewStore(now)
	gen := &ids.Sequence{}
	_, err := Apply(store, ExtractSheets(workbook()), gen, now)
	require.NoError(t, err)
	before := store.Clone()

	later := now.Add(time.Hour)
	report, err := Apply(store, ExtractSheets(workbook()), gen, later)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.CreatedSubjects)
	assert.Equal(t, 0, report.CreatedUniversities)
	assert.Equal(t, 4, report.Rows)
	require.Len(t, store.Universities[0].Items, len(before.Universities[0].Items))
	for i, it := range store.Universities[0].Items {
		assert.Equal(t, before.Universities[0].Items[i].ID, it.ID)
		assert.Equal(t, later, it.UpdatedAt, "duplicates refresh updatedAt")
	}
}

func TestApplyMatchesExistingUniversityCaseInsensitively(t *testing.T) {
	store := models.NewStore(now)
	store.Universities = []models.University{
		{ID: "u0", Name: "Autre"},
		{
			ID:       "u1",
			Name:     "PARIS",
			Subjects: []models.Subject{{ID: "s1", Name: "BIO", Owner: "Alice"}},
			Items: []models.Item{
				{ID: "i1", SubjectID: "s1", Title: "Topic A", Status: models.StatusInProgress, Progress: 40},
			},
		},
	}
	store.UI.ActiveUniversityID = "u0"

	report, err := Apply(store, ExtractSheets(workbook()), &ids.Sequence{}, now)
	require.NoError(t, err)

	assert.Equal(t, "u1", store.UI.ActiveUniversityID)
	assert.Equal(t, 0, report.CreatedUniversities)
	univ := store.Universities[1]
	assert.Len(t, univ.Subjects, 2)
	assert.Equal(t, "Alice", univ.Subjects[0].Owner)
	assert.Equal(t, 2, report.Created, "Topic B and Atomes")
	assert.Equal(t, models.StatusInProgress, univ.Items[0].Status, "existing item untouched")
	assert.Equal(t, 40, univ.Items[0].Progress)
}

func TestApplyMatchesTitlesWithCollapsedSpaces(t *testing.T) {
	store := models.NewStore(now)
	store.Universities = []models.University{{
		ID:       "u1",
		Name:     "Paris",
		Subjects: []models.Subject{{ID: "s1", Name: "Bio  Cellulaire"}},
		Items: []models.Item{
			{ID: "i1", SubjectID: "s1", Title: "A  B", Status: models.StatusInReview, Progress: 80},
		},
	}}
	groups := ExtractSheets([]Sheet{{Name: "Paris", Rows: [][]string{
		{"Bio Cellulaire", "A B"},
		{"bio\tcellulaire", " A   B "},
	}}})

	report, err := Apply(store, groups, &ids.Sequence{}, now)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.CreatedSubjects)
	univ := store.Universities[0]
	require.Len(t, univ.Items, 1)
	assert.Equal(t, "A  B", univ.Items[0].Title, "existing title kept as is")
	assert.Equal(t, now, univ.Items[0].UpdatedAt)
}

func TestApplyWithoutDataFails(t *testing.T) {
	store := models.NewStore(now)
	groups := ExtractSheets([]Sheet{{Name: "Vide", Rows: [][]string{{"Matière", "Fiches de cours"}}}})

	_, err := Apply(store, groups, &ids.Sequence{}, now)
	assert.ErrorIs(t, err, ErrNoValidData)
	assert.Empty(t, store.Universities)
	assert.Equal(t, "", store.UI.ActiveUniversityID)
}

func TestApplyMultipleSheetsActivatesLast(t *testing.T) {
	store := models.NewStore(now)
	groups := ExtractSheets([]Sheet{
		{Name: "Paris", Rows: [][]string{{"Bio", "A"}}},
		{Name: "Lyon", Rows: [][]string{{"Bio", "A"}}},
	})
	report, err := Apply(store, groups, &ids.Sequence{}, now)
	require.NoError(t, err)
	require.Len(t, store.Universities, 2)
	assert.Equal(t, store.Universities[1].ID, store.UI.ActiveUniversityID)
	assert.Equal(t, 2, report.Created)
	assert.NotEqual(t, store.Universities[0].Subjects[0].ID, store.Universities[1].Subjects[0].ID)
}
