// Package importer reconciles external data with the dashboard store:
// spreadsheet rows, JSON snapshots and snapshot merges.
package importer

import (
	"errors"
	"time"

	"github.com/balkashynov/fiches/internal/ids"
	"github.com/balkashynov/fiches/internal/models"
)

// ErrNoValidData is returned when a workbook yields no usable row
var ErrNoValidData = errors.New("no valid data found (expected subject / item columns)")

// Report summarises a spreadsheet import
type Report struct {
	Rows                int
	Created             int
	CreatedSubjects     int
	CreatedUniversities int
	// Universities lists the ids of the universities touched, in sheet order
	Universities []string
}

// Apply merges the extracted groups into store. Each group maps to the
// university with the same (case-insensitive) name, created when missing;
// subjects are found or created by name and items are de-duplicated on
// (subject, title). The last group's university becomes active.
// When groups is empty the store is left untouched and ErrNoValidData returned.
func Apply(store *models.Store, groups []Group, gen ids.Generator, now time.Time) (Report, error) {
	var report Report
	if len(groups) == 0 {
		return report, ErrNoValidData
	}

	for _, g := range groups {
		univ := store.FindUniversityByName(g.University)
		if univ == nil {
			store.Universities = append(store.Universities, models.University{
				ID:       gen.NewID(),
				Name:     g.University,
				Subjects: []models.Subject{},
				Items:    []models.Item{},
			})
			univ = &store.Universities[len(store.Universities)-1]
			report.CreatedUniversities++
		}
		store.UI.ActiveUniversityID = univ.ID
		report.Universities = appendUnique(report.Universities, univ.ID)

		subjects := make(map[string]int, len(univ.Subjects))
		for i, s := range univ.Subjects {
			if _, ok := subjects[models.SubjectKey(s.Name)]; !ok {
				subjects[models.SubjectKey(s.Name)] = i
			}
		}
		existing := make(map[models.DedupKey]int, len(univ.Items))
		for i, it := range univ.Items {
			existing[it.Key()] = i
		}

		for _, row := range g.Rows {
			report.Rows++

			key := models.SubjectKey(row.Subject)
			pos, ok := subjects[key]
			if !ok {
				univ.Subjects = append(univ.Subjects, models.Subject{
					ID:   gen.NewID(),
					Name: NormalizeText(row.Subject),
				})
				pos = len(univ.Subjects) - 1
				subjects[key] = pos
				report.CreatedSubjects++
			}
			subject := univ.Subjects[pos]

			item := models.Item{
				SubjectID:        subject.ID,
				SubjectNameCache: subject.Name,
				Title:            NormalizeText(row.Title),
			}
			if at, dup := existing[item.Key()]; dup {
				univ.Items[at].UpdatedAt = now
				continue
			}
			item.ID = gen.NewID()
			item.Status = models.StatusPending
			item.Priority = models.PriorityMedium
			item.UpdatedAt = now
			univ.Items = append(univ.Items, item)
			existing[item.Key()] = len(univ.Items) - 1
			report.Created++
		}
	}
	store.UpdatedAt = now
	return report, nil
}

func appendUnique(list []string, id string) []string {
	for _, v := range list {
		if v == id {
			return list
		}
	}
	return append(list, id)
}
