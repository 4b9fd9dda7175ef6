package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// SchemaVersion is the current snapshot format version
const SchemaVersion = 1

// DateLayout is the storage format of item deadlines
const DateLayout = "2006-01-02"

// Store is the root of the dashboard data model
type Store struct {
	Version      int          `json:"version"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	UI           UIState      `json:"ui"`
	Universities []University `json:"universities" validate:"dive"`
}

// University groups the subjects and items of one institution (a dashboard tab)
type University struct {
	ID       string    `json:"id" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Subjects []Subject `json:"subjects" validate:"dive"`
	Items    []Item    `json:"items" validate:"dive"`
}

// Subject is a course within a university, with one responsible owner
type Subject struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Owner  string `json:"owner"`
	Method Method `json:"method" validate:"omitempty,oneof=NB_AUDIO_AKV NB_AUDIO_POLY NB_AUDIO_POLY_ACC"`
	Remark string `json:"remark"`
}

// Item is a single deliverable (fiche) of a subject
type Item struct {
	ID               string    `json:"id" validate:"required"`
	SubjectID        string    `json:"subjectId" validate:"required"`
	SubjectNameCache string    `json:"subjectNameCache"`
	Title            string    `json:"title" validate:"required"`
	Status           Status    `json:"status" validate:"oneof=EN_ATTENTE EN_COURS EN_RELECTURE VALIDE"`
	Priority         Priority  `json:"priority" validate:"oneof=BASSE MOYENNE HAUTE"`
	Deadline         string    `json:"deadline"`
	Progress         int       `json:"progress" validate:"min=0,max=100"`
	Comment          string    `json:"comment"`
	Professor        string    `json:"professor"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasDeadline reports whether the item carries a non-empty deadline
func (i Item) HasDeadline() bool {
	return strings.TrimSpace(i.Deadline) != ""
}

// DeadlineDate parses the deadline as a calendar date in loc.
// Full RFC 3339 timestamps are accepted and truncated to their date.
func (i Item) DeadlineDate(loc *time.Location) (time.Time, bool) {
	return ParseDate(i.Deadline, loc)
}

// ParseDate parses an ISO date (or the date part of an RFC 3339 timestamp)
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if len(value) > len(DateLayout) && value[len(DateLayout)] == 'T' {
		value = value[:len(DateLayout)]
	}
	d, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// TriState is an optional boolean: Any (no constraint), Yes or No
type TriState int

const (
	Any TriState = iota
	Yes
	No
)

// TriStateOf converts a boolean into Yes or No
func TriStateOf(b bool) TriState {
	if b {
		return Yes
	}
	return No
}

func (t TriState) String() string {
	switch t {
	case Yes:
		return "true"
	case No:
		return "false"
	case Any:
		return "any"
	}
	return fmt.Sprintf("TriState(%d)", int(t))
}

// MarshalJSON encodes Any as null, Yes as true and No as false
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `""`:
		*t = Any
	case "true":
		*t = Yes
	case "false":
		*t = No
	default:
		return fmt.Errorf("invalid tri-state value %s", data)
	}
	return nil
}

// Filters narrows the items shown for the active university.
// Empty string fields mean "no constraint".
type Filters struct {
	SubjectID   string   `json:"subjectId"`
	Owner       string   `json:"owner"`
	Status      Status   `json:"status" validate:"omitempty,oneof=EN_ATTENTE EN_COURS EN_RELECTURE VALIDE"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=BASSE MOYENNE HAUTE"`
	OverdueOnly bool     `json:"overdueOnly"`
	HasDeadline TriState `json:"hasDeadline"`
}

// IsZero reports whether no filter is set
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// UIState is the persisted presentation state
type UIState struct {
	ActiveUniversityID string  `json:"activeUniversityId"`
	Filters            Filters `json:"filters"`
	View               View    `json:"view" validate:"omitempty,oneof=table kanban calendar"`
}

// DefaultUI returns the UI state of a fresh dashboard
func DefaultUI() UIState {
	return UIState{View: ViewTable}
}

// NewStore returns an empty store
func NewStore(now time.Time) *Store {
	return &Store{
		Version:      SchemaVersion,
		UpdatedAt:    now,
		UI:           DefaultUI(),
		Universities: []University{},
	}
}

// FindUniversity returns a pointer into the store, or nil
func (s *Store) FindUniversity(id string) *University {
	if s == nil || id == "" {
		return nil
	}
	for i := range s.Universities {
		if s.Universities[i].ID == id {
			return &s.Universities[i]
		}
	}
	return nil
}

// FindUniversityByName matches names case-insensitively
func (s *Store) FindUniversityByName(name string) *University {
	if s == nil {
		return nil
	}
	name = strings.ToLower(strings.TrimSpace(name))
	for i := range s.Universities {
		if strings.ToLower(strings.TrimSpace(s.Universities[i].Name)) == name {
			return &s.Universities[i]
		}
	}
	return nil
}

// UniversityIndex returns the position of the university, or -1
func (s *Store) UniversityIndex(id string) int {
	for i := range s.Universities {
		if s.Universities[i].ID == id {
			return i
		}
	}
	return -1
}

// SubjectIndex returns the position of the subject, or -1
func (u *University) SubjectIndex(id string) int {
	for i := range u.Subjects {
		if u.Subjects[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemIndex returns the position of the item, or -1
func (u *University) ItemIndex(id string) int {
	for i := range u.Items {
		if u.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *University) FindSubject(id string) *Subject {
	for i := range u.Subjects {
		if u.Subjects[i].ID == id {
			return &u.Subjects[i]
		}
	}
	return nil
}

// FindSubjectByName matches names case-insensitively, ignoring extra spaces
func (u *University) FindSubjectByName(name string) *Subject {
	key := SubjectKey(name)
	for i := range u.Subjects {
		if SubjectKey(u.Subjects[i].Name) == key {
			return &u.Subjects[i]
		}
	}
	return nil
}

func (u *University) FindItem(id string) *Item {
	for i := range u.Items {
		if u.Items[i].ID == id {
			return &u.Items[i]
		}
	}
	return nil
}

// ItemsOf returns the items of a subject in stored order
func (u *University) ItemsOf(subjectID string) []Item {
	var items []Item
	for _, it := range u.Items {
		if it.SubjectID == subjectID {
			items = append(items, it)
		}
	}
	return items
}

// CollapseSpace trims s and collapses internal whitespace runs to one space
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SubjectKey is the matching key of subject names
func SubjectKey(name string) string {
	return strings.ToLower(CollapseSpace(name))
}

// DedupKey identifies an item within a university
type DedupKey struct {
	SubjectID string
	Title     string
}

// Key returns the de-duplication key of the item. The title is compared
// the way imported titles are stored.
func (i Item) Key() DedupKey {
	return DedupKey{SubjectID: i.SubjectID, Title: CollapseSpace(i.Title)}
}

// Clone returns a deep copy sharing no slices with s
func (s *Store) Clone() *Store {
	if s == nil {
		return nil
	}
	out := *s
	out.Universities = make([]University, len(s.Universities))
	for i, u := range s.Universities {
		out.Universities[i] = u.Clone()
	}
	return &out
}

// Clone returns a deep copy of the university
func (u University) Clone() University {
	out := u
	out.Subjects = append(make([]Subject, 0, len(u.Subjects)), u.Subjects...)
	out.Items = append(make([]Item, 0, len(u.Items)), u.Items...)
	return out
}
