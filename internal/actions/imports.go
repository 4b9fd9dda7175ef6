package actions

import (
	"context"
	"strings"

	"github.com/balkashynov/fiches/internal/importer"
	"github.com/balkashynov/fiches/internal/models"
)

// ImportMode selects how a JSON snapshot meets the current data
type ImportMode int

const (
	// Merge fills gaps in the current data without clobbering it
	Merge ImportMode = iota
	// Replace discards the current data
	Replace
)

func (m ImportMode) String() string {
	if m == Replace {
		return "replace"
	}
	return "merge"
}

// ParseImportMode accepts "merge" or "replace"
func ParseImportMode(input string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "merge":
		return Merge, nil
	case "replace":
		return Replace, nil
	}
	return Merge, invalid("import mode %q (expected merge or replace)", input)
}

// ImportWorkbook reconciles spreadsheet sheets into the store. The whole
// pass runs under the service lock; the touched universities are then
// pushed to the backend, universities first, subjects, then items.
func (s *Service) ImportWorkbook(ctx context.Context, sheets []importer.Sheet) (importer.Report, error) {
	groups := importer.ExtractSheets(sheets)

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := importer.Apply(s.store, groups, s.ids, s.now())
	if err != nil {
		return report, err
	}
	s.log.Info("workbook imported", "rows", report.Rows, "created", report.Created, "universities", len(report.Universities))

	touched := make([]models.University, 0, len(report.Universities))
	for _, id := range report.Universities {
		if u := s.store.FindUniversity(id); u != nil {
			touched = append(touched, *u)
		}
	}
	return report, s.commit(ctx, s.pushAll(touched)...)
}

// ImportSnapshot applies a decoded JSON snapshot. Replace swaps the store
// wholesale; Merge folds the snapshot into the current data. Either way
// the result is pushed to the backend in full.
func (s *Service) ImportSnapshot(ctx context.Context, imported *models.Store, mode ImportMode) (importer.MergeReport, error) {
	var report importer.MergeReport
	if imported == nil {
		return report, invalid("empty snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next *models.Store
	switch mode {
	case Replace:
		next = imported.Clone()
		if next.UI == (models.UIState{}) {
			next.UI = models.DefaultUI()
		}
		report.AddedUniversities = len(next.Universities)
	case Merge:
		next, report = importer.Merge(s.store, imported, s.now())
	default:
		return report, invalid("import mode %d", mode)
	}
	importer.RepairUI(next)

	var drops []write
	if mode == Replace {
		drops = s.stale(s.store, next)
	}
	s.store = next
	s.log.Info("snapshot imported", "mode", mode.String(), "universities", len(next.Universities))

	return report, s.commit(ctx, append([][]write{drops}, s.pushAll(next.Universities)...)...)
}

// stale lists the deletes that bring the backend from old to next
func (s *Service) stale(old, next *models.Store) []write {
	var drops []write
	for _, u := range old.Universities {
		kept := next.FindUniversity(u.ID)
		if kept == nil {
			drops = append(drops, s.drop("university", u.ID, s.adapter.DeleteUniversity))
			continue
		}
		for _, subj := range u.Subjects {
			if kept.FindSubject(subj.ID) == nil {
				drops = append(drops, s.drop("subject", subj.ID, s.adapter.DeleteSubject))
			}
		}
		for _, it := range u.Items {
			if kept.FindItem(it.ID) == nil && kept.FindSubject(it.SubjectID) != nil {
				drops = append(drops, s.drop("item", it.ID, s.adapter.DeleteItem))
			}
		}
	}
	return drops
}
