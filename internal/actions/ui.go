package actions

import (
	"context"
	"strings"

	"github.com/balkashynov/fiches/internal/models"
)

// Filter fields accepted by ApplyFilter
const (
	FilterSubject  = "subject"
	FilterOwner    = "owner"
	FilterStatus   = "status"
	FilterPriority = "priority"
	FilterOverdue  = "overdue"
	FilterDeadline = "deadline"
)

// FilterFields lists the filter fields in display order
var FilterFields = []string{FilterSubject, FilterOwner, FilterStatus, FilterPriority, FilterOverdue, FilterDeadline}

// SetActiveUniversity switches the dashboard tab
func (s *Service) SetActiveUniversity(ctx context.Context, universityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.FindUniversity(universityID) == nil {
		return notFound("university", universityID)
	}
	if s.store.UI.ActiveUniversityID != universityID {
		// Subject ids belong to one university
		s.store.UI.Filters.SubjectID = ""
	}
	s.store.UI.ActiveUniversityID = universityID
	return s.commit(ctx)
}

// SetView selects table, kanban or calendar
func (s *Service) SetView(ctx context.Context, name string) error {
	view, err := models.ParseView(name)
	if err != nil {
		return invalid("%v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.UI.View = view
	return s.commit(ctx)
}

// ApplyFilter sets one filter. A blank, "all" or "any" value clears it.
// The subject filter takes a subject id or name of the active university.
func (s *Service) ApplyFilter(ctx context.Context, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value = strings.TrimSpace(value)
	reset := value == "" || strings.EqualFold(value, "all") || strings.EqualFold(value, "any")
	filters := s.store.UI.Filters

	switch strings.ToLower(strings.TrimSpace(field)) {
	case FilterSubject:
		filters.SubjectID = ""
		if !reset {
			univ, err := s.active()
			if err != nil {
				return err
			}
			subject := univ.FindSubject(value)
			if subject == nil {
				subject = univ.FindSubjectByName(value)
			}
			if subject == nil {
				return notFound("subject", value)
			}
			filters.SubjectID = subject.ID
		}
	case FilterOwner:
		filters.Owner = ""
		if !reset {
			filters.Owner = value
		}
	case FilterStatus:
		filters.Status = ""
		if !reset {
			status, err := models.ParseStatus(value)
			if err != nil {
				return invalid("%v", err)
			}
			filters.Status = status
		}
	case FilterPriority:
		filters.Priority = ""
		if !reset {
			priority, err := models.ParsePriority(value)
			if err != nil {
				return invalid("%v", err)
			}
			filters.Priority = priority
		}
	case FilterOverdue:
		filters.OverdueOnly = false
		if !reset {
			on, err := parseSwitch(value)
			if err != nil {
				return err
			}
			filters.OverdueOnly = on
		}
	case FilterDeadline:
		filters.HasDeadline = models.Any
		if !reset {
			on, err := parseSwitch(value)
			if err != nil {
				return err
			}
			filters.HasDeadline = models.TriStateOf(on)
		}
	default:
		return invalid("unknown filter %q (expected one of %s)", field, strings.Join(FilterFields, ", "))
	}

	s.store.UI.Filters = filters
	return s.commit(ctx)
}

// ClearFilters removes every filter
func (s *Service) ClearFilters(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.UI.Filters = models.Filters{}
	return s.commit(ctx)
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "y", "on", "1", "oui":
		return true, nil
	case "false", "no", "n", "off", "0", "non":
		return false, nil
	}
	return false, invalid("expected yes or no, got %q", value)
}
