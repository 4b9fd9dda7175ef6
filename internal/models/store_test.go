package models

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	original := DefaultStore(counter(), now)

	copied := original.Clone()
	copied.Universities[0].Name = "Autre"
	copied.Universities[0].Subjects[0].Owner = "Quelqu'un"
	copied.Universities[0].Items[0].Comment = "modifié"
	copied.Universities[0].Items = append(copied.Universities[0].Items, Item{ID: "x"})

	assert.Equal(t, "Sorbonne Paris Nord", original.Universities[0].Name)
	assert.Equal(t, "Dr. Martin", original.Universities[0].Subjects[0].Owner)
	assert.Equal(t, "", original.Universities[0].Items[0].Comment)
	assert.Len(t, original.Universities[0].Items, 6)
}

func TestTriStateJSON(t *testing.T) {
	tests := []struct {
		in   TriState
		json string
	}{
		{Any, "null"},
		{Yes, "true"},
		{No, "false"},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.json, string(data))

		var back TriState
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, tt.in, back)
	}

	var f Filters
	require.NoError(t, json.Unmarshal([]byte(`{"overdueOnly":true}`), &f))
	assert.Equal(t, Any, f.HasDeadline, "absent hasDeadline means any")

	var bad TriState
	assert.Error(t, json.Unmarshal([]byte(`"maybe"`), &bad))
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2026-05-04", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("2026-05-04T18:30:00.000Z", time.UTC)
	require.True(t, ok)
	assert.Equal(t, 4, d.Day())

	_, ok = ParseDate("", time.UTC)
	assert.False(t, ok)
	_, ok = ParseDate("bientôt", time.UTC)
	assert.False(t, ok)
}

func TestParseEnums(t *testing.T) {
	s, err := ParseStatus("validé")
	require.NoError(t, err)
	assert.Equal(t, StatusValidated, s)

	s, err = ParseStatus("en_cours")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)

	p, err := ParsePriority("high")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	m, err := ParseMethod("nb_audio_poly")
	require.NoError(t, err)
	assert.Equal(t, MethodAudioPoly, m)
	assert.Equal(t, "NB + audio + poly", m.Label())

	for _, st := range Statuses {
		assert.True(t, st.Valid())
		assert.GreaterOrEqual(t, st.Rank(), 0)
	}
	assert.Equal(t, StatusValidated, StatusValidated.Next())
	assert.Equal(t, StatusPending, StatusPending.Prev())
}

func TestFindByName(t *testing.T) {
	store := DefaultStore(counter(), time.Now())
	assert.NotNil(t, store.FindUniversityByName("  sorbonne paris NORD "))
	u := &store.Universities[0]
	sub := u.FindSubjectByName(" biochimie")
	require.NotNil(t, sub)
	assert.Equal(t, "Biochimie", sub.Name)
	assert.Len(t, u.ItemsOf(sub.ID), 3)
}

func TestItemKeyCollapsesSpaces(t *testing.T) {
	stored := Item{SubjectID: "s1", Title: "A  B"}
	assert.Equal(t, stored.Key(), Item{SubjectID: "s1", Title: " A\tB "}.Key())
	assert.NotEqual(t, stored.Key(), Item{SubjectID: "s2", Title: "A B"}.Key())
	assert.NotEqual(t, stored.Key(), Item{SubjectID: "s1", Title: "a b"}.Key(), "titles stay case sensitive")
	assert.Equal(t, "bio cellulaire", SubjectKey("  Bio   Cellulaire"))
}

func TestIndexes(t *testing.T) {
	store := DefaultStore(counter(), time.Now())
	u := &store.Universities[0]
	assert.Equal(t, 0, store.UniversityIndex(u.ID))
	assert.Equal(t, -1, store.UniversityIndex("missing"))
	last := len(u.Items) - 1
	assert.Equal(t, last, u.ItemIndex(u.Items[last].ID))
	assert.Equal(t, 1, u.SubjectIndex(u.Subjects[1].ID))
	assert.Equal(t, -1, u.SubjectIndex("missing"))
}
