package models

import (
	"fmt"
	"strings"
)

// Status is the production state of an item (fiche)
type Status string

const (
	StatusPending    Status = "EN_ATTENTE"
	StatusInProgress Status = "EN_COURS"
	StatusInReview   Status = "EN_RELECTURE"
	StatusValidated  Status = "VALIDE"
)

// Statuses lists every status in workflow order
var Statuses = []Status{StatusPending, StatusInProgress, StatusInReview, StatusValidated}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusInReview, StatusValidated:
		return true
	}
	return false
}

// Label returns the display label of the status
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusInProgress:
		return "En cours"
	case StatusInReview:
		return "En relecture"
	case StatusValidated:
		return "Validé"
	}
	return string(s)
}

// Rank is the position of the status in the workflow, -1 if unknown
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusInReview:
		return 2
	case StatusValidated:
		return 3
	}
	return -1
}

// Next returns the following status in the workflow, or s itself at the end
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusInProgress
	case StatusInProgress:
		return StatusInReview
	case StatusInReview, StatusValidated:
		return StatusValidated
	}
	return s
}

// Prev returns the preceding status in the workflow, or s itself at the start
func (s Status) Prev() Status {
	switch s {
	case StatusPending, StatusInProgress:
		return StatusPending
	case StatusInReview:
		return StatusInProgress
	case StatusValidated:
		return StatusInReview
	}
	return s
}

// ParseStatus accepts a status code or its label, case-insensitively
func ParseStatus(input string) (Status, error) {
	input = strings.TrimSpace(input)
	for _, s := range Statuses {
		if strings.EqualFold(input, string(s)) || strings.EqualFold(input, s.Label()) {
			return s, nil
		}
	}
	switch strings.ToLower(input) {
	case "pending", "todo", "attente":
		return StatusPending, nil
	case "in-progress", "wip", "cours":
		return StatusInProgress, nil
	case "review", "in-review", "relecture":
		return StatusInReview, nil
	case "valide", "done", "validated":
		return StatusValidated, nil
	}
	return "", fmt.Errorf("unknown status %q", input)
}

// Priority is the urgency of an item
type Priority string

const (
	PriorityLow    Priority = "BASSE"
	PriorityMedium Priority = "MOYENNE"
	PriorityHigh   Priority = "HAUTE"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Basse"
	case PriorityMedium:
		return "Moyenne"
	case PriorityHigh:
		return "Haute"
	}
	return string(p)
}

func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}
	return -1
}

// ParsePriority accepts codes, labels, english names and 1/2/3
func ParsePriority(input string) (Priority, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	switch input {
	case "basse", "low", "1":
		return PriorityLow, nil
	case "moyenne", "medium", "med", "2":
		return PriorityMedium, nil
	case "haute", "high", "3":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority %q", input)
}

// Method is the production method of a subject. The empty method is unknown.
type Method string

const (
	MethodUnknown      Method = ""
	MethodAudioAKV     Method = "NB_AUDIO_AKV"
	MethodAudioPoly    Method = "NB_AUDIO_POLY"
	MethodAudioPolyACC Method = "NB_AUDIO_POLY_ACC"
)

// Methods lists the known production methods
var Methods = []Method{MethodAudioAKV, MethodAudioPoly, MethodAudioPolyACC}

// Valid reports whether m is a known method or unknown (empty)
func (m Method) Valid() bool {
	switch m {
	case MethodUnknown, MethodAudioAKV, MethodAudioPoly, MethodAudioPolyACC:
		return true
	}
	return false
}

func (m Method) Label() string {
	switch m {
	case MethodAudioAKV:
		return "NB + audio + AKV"
	case MethodAudioPoly:
		return "NB + audio + poly"
	case MethodAudioPolyACC:
		return "NB + audio + poly + ACC"
	case MethodUnknown:
		return ""
	}
	return string(m)
}

// ParseMethod accepts a method code case-insensitively; empty means unknown
func ParseMethod(input string) (Method, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return MethodUnknown, nil
	}
	for _, m := range Methods {
		if strings.EqualFold(input, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown method %q", input)
}

// View is the dashboard presentation mode
type View string

const (
	ViewTable    View = "table"
	ViewKanban   View = "kanban"
	ViewCalendar View = "calendar"
)

// Views lists the available views
var Views = []View{ViewTable, ViewKanban, ViewCalendar}

func (v View) Valid() bool {
	switch v {
	case ViewTable, ViewKanban, ViewCalendar:
		return true
	}
	return false
}

func ParseView(input string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(input)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown view %q", input)
	}
	return v, nil
}
