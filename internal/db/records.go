package db

import (
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/balkashynov/fiches/internal/models"
)

// universityRecord represents a row of the universities table
type universityRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"not null"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (universityRecord) TableName() string { return "universities" }

// subjectRecord represents a row of the subjects table
type subjectRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	UniversityID string `gorm:"index;size:64;not null"`
	Name         string `gorm:"not null"`
	Owner        string
	Method       string
	Remark       string
	Position     int       `gorm:"not null;default:0"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (subjectRecord) TableName() string { return "subjects" }

// itemRecord represents a row of the items table. UpdatedAt is the item's
// own mutation stamp and is never set by gorm.
type itemRecord struct {
	ID               string `gorm:"primaryKey;size:64"`
	SubjectID        string `gorm:"index;size:64;not null"`
	SubjectNameCache string
	Title            string `gorm:"not null"`
	Status           string `gorm:"size:16;not null"`
	Priority         string `gorm:"size:16;not null"`
	Deadline         *datatypes.Date
	Progress         int
	Comment          string
	Professor        string
	Position         int       `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"index"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime:false"`
}

func (itemRecord) TableName() string { return "items" }

func newItemRecord(it models.Item) (itemRecord, error) {
	rec := itemRecord{
		ID:               it.ID,
		SubjectID:        it.SubjectID,
		SubjectNameCache: it.SubjectNameCache,
		Title:            it.Title,
		Status:           string(it.Status),
		Priority:         string(it.Priority),
		Progress:         it.Progress,
		Comment:          it.Comment,
		Professor:        it.Professor,
		UpdatedAt:        it.UpdatedAt,
	}
	if it.HasDeadline() {
		day, ok := models.ParseDate(it.Deadline, time.UTC)
		if !ok {
			return rec, fmt.Errorf("item %s: invalid deadline %q", it.ID, it.Deadline)
		}
		d := datatypes.Date(day)
		rec.Deadline = &d
	}
	return rec, nil
}

func (r itemRecord) model() models.Item {
	it := models.Item{
		ID:               r.ID,
		SubjectID:        r.SubjectID,
		SubjectNameCache: r.SubjectNameCache,
		Title:            r.Title,
		Status:           models.Status(r.Status),
		Priority:         models.Priority(r.Priority),
		Progress:         r.Progress,
		Comment:          r.Comment,
		Professor:        r.Professor,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.Deadline != nil {
		it.Deadline = time.Time(*r.Deadline).Format(models.DateLayout)
	}
	return it
}

func (r subjectRecord) model() models.Subject {
	return models.Subject{
		ID:     r.ID,
		Name:   r.Name,
		Owner:  r.Owner,
		Method: models.Method(r.Method),
		Remark: r.Remark,
	}
}
