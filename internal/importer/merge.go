package importer

import (
	"strings"
	"time"

	"github.com/balkashynov/fiches/internal/models"
)

// MergeReport counts what a snapshot merge changed
type MergeReport struct {
	AddedUniversities int
	AddedSubjects     int
	AddedItems        int
	MergedItems       int
	// SkippedItems are incoming items whose subject exists on neither side
	SkippedItems int
}

// Merge folds imported into a copy of local and returns the result.
//
// Universities and subjects match by id, items by (subject, title).
// Existing local values are never overwritten except a subject owner,
// which takes a non-empty incoming owner. Incoming owners are trimmed. Item fields are only filled when
// the local value is empty or zero. A nil local store yields a copy of
// imported. Neither argument is modified.
func Merge(local, imported *models.Store, now time.Time) (*models.Store, MergeReport) {
	var report MergeReport
	if local == nil {
		merged := imported.Clone()
		for i := range merged.Universities {
			trimOwners(merged.Universities[i].Subjects)
		}
		return merged, report
	}
	merged := local.Clone()
	if merged.Version == 0 {
		merged.Version = models.SchemaVersion
	}
	merged.UpdatedAt = now
	if imported == nil {
		return merged, report
	}
	if imported.UI != (models.UIState{}) {
		merged.UI = imported.UI
	}

	for _, in := range imported.Universities {
		univ := merged.FindUniversity(in.ID)
		if univ == nil {
			added := in.Clone()
			trimOwners(added.Subjects)
			merged.Universities = append(merged.Universities, added)
			report.AddedUniversities++
			continue
		}
		mergeUniversity(univ, in, now, &report)
	}
	return merged, report
}

func mergeUniversity(univ *models.University, in models.University, now time.Time, report *MergeReport) {
	for _, s := range in.Subjects {
		s.Owner = strings.TrimSpace(s.Owner)
		existing := univ.FindSubject(s.ID)
		if existing == nil {
			univ.Subjects = append(univ.Subjects, s)
			report.AddedSubjects++
			continue
		}
		if s.Owner != "" {
			existing.Owner = s.Owner
		}
	}

	byKey := make(map[models.DedupKey]int, len(univ.Items))
	for i, it := range univ.Items {
		byKey[it.Key()] = i
	}
	for _, it := range in.Items {
		at, ok := byKey[it.Key()]
		if !ok {
			if univ.FindSubject(it.SubjectID) == nil {
				report.SkippedItems++
				continue
			}
			univ.Items = append(univ.Items, it)
			byKey[it.Key()] = len(univ.Items) - 1
			report.AddedItems++
			continue
		}
		fillEmpty(&univ.Items[at], it)
		univ.Items[at].UpdatedAt = now
		report.MergedItems++
	}
}

// trimOwners trims subject owners in place; owner filters compare exact values
func trimOwners(subjects []models.Subject) {
	for i := range subjects {
		subjects[i].Owner = strings.TrimSpace(subjects[i].Owner)
	}
}

// fillEmpty copies incoming values into fields that are empty locally.
// id, subjectId, title and subjectNameCache are never touched.
func fillEmpty(local *models.Item, in models.Item) {
	if local.Status == "" {
		local.Status = in.Status
	}
	if local.Priority == "" {
		local.Priority = in.Priority
	}
	if local.Deadline == "" {
		local.Deadline = in.Deadline
	}
	if local.Progress == 0 {
		local.Progress = in.Progress
	}
	if local.Comment == "" {
		local.Comment = in.Comment
	}
	if local.Professor == "" {
		local.Professor = in.Professor
	}
	if local.Status == models.StatusValidated {
		local.Progress = 100
	}
}
