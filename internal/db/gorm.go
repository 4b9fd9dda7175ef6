package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/balkashynov/fiches/internal/models"
)

// Gorm stores the dashboard in three relational tables
type Gorm struct {
	db   *gorm.DB
	path string
	log  *slog.Logger
}

var _ Adapter = (*Gorm)(nil)
var _ Notifier = (*Gorm)(nil)

func upsertOn(columns ...string) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
}

// fetchOrder is the display order; created_at and id only break ties left
// by single-row writes
const fetchOrder = "position, created_at, id"

// FetchAll loads every table in display order
func (g *Gorm) FetchAll(ctx context.Context) (*models.Store, error) {
	tx := g.db.WithContext(ctx)

	var univs []universityRecord
	if err := tx.Order(fetchOrder).Find(&univs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch universities: %w", err)
	}
	if len(univs) == 0 {
		return nil, nil
	}
	var subjects []subjectRecord
	if err := tx.Order(fetchOrder).Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subjects: %w", err)
	}
	var items []itemRecord
	if err := tx.Order(fetchOrder).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}

	store := &models.Store{Version: models.SchemaVersion, Universities: make([]models.University, 0, len(univs))}
	index := make(map[string]int, len(univs))
	for i, u := range univs {
		index[u.ID] = i
		store.Universities = append(store.Universities, models.University{
			ID:       u.ID,
			Name:     u.Name,
			Subjects: []models.Subject{},
			Items:    []models.Item{},
		})
	}

	// Rows pointing at a missing parent are left out
	owner := make(map[string]int, len(subjects))
	for _, s := range subjects {
		at, ok := index[s.UniversityID]
		if !ok {
			continue
		}
		owner[s.ID] = at
		store.Universities[at].Subjects = append(store.Universities[at].Subjects, s.model())
	}
	for _, it := range items {
		at, ok := owner[it.SubjectID]
		if !ok {
			continue
		}
		store.Universities[at].Items = append(store.Universities[at].Items, it.model())
	}
	return store, nil
}

func (g *Gorm) UpsertUniversity(ctx context.Context, id, name string, position int) error {
	rec := universityRecord{ID: id, Name: name, Position: position, CreatedAt: time.Now().UTC()}
	err := g.db.WithContext(ctx).
		Clauses(upsertOn("name", "position", "updated_at")).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save university %s: %w", id, err)
	}
	return nil
}

func (g *Gorm) UpsertSubject(ctx context.Context, universityID string, subject models.Subject, position int) error {
	rec := subjectRecord{
		ID:           subject.ID,
		UniversityID: universityID,
		Name:         subject.Name,
		Owner:        subject.Owner,
		Method:       string(subject.Method),
		Remark:       subject.Remark,
		Position:     position,
		CreatedAt:    time.Now().UTC(),
	}
	err := g.db.WithContext(ctx).
		Clauses(upsertOn("university_id", "name", "owner", "method", "remark", "position", "updated_at")).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save subject %s: %w", subject.ID, err)
	}
	return nil
}

func (g *Gorm) UpsertItem(ctx context.Context, item models.Item, position int) error {
	rec, err := newItemRecord(item)
	if err != nil {
		return err
	}
	rec.Position = position
	rec.CreatedAt = time.Now().UTC()
	err = g.db.WithContext(ctx).
		Clauses(upsertOn("subject_id", "subject_name_cache", "title", "status", "priority",
			"deadline", "progress", "comment", "professor", "position", "updated_at")).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.ID, err)
	}
	return nil
}

func (g *Gorm) DeleteUniversity(ctx context.Context, id string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subjects := tx.Model(&subjectRecord{}).Select("id").Where("university_id = ?", id)
		if err := tx.Where("subject_id IN (?)", subjects).Delete(&itemRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("university_id = ?", id).Delete(&subjectRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&universityRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete university %s: %w", id, err)
	}
	return nil
}

func (g *Gorm) DeleteSubject(ctx context.Context, id string) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subject_id = ?", id).Delete(&itemRecord{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&subjectRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete subject %s: %w", id, err)
	}
	return nil
}

func (g *Gorm) DeleteItem(ctx context.Context, id string) error {
	if err := g.db.WithContext(ctx).Where("id = ?", id).Delete(&itemRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}
