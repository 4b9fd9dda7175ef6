package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/fiches/internal/models"
)

// ParsedUpdate represents item changes parsed from inline syntax.
// Nil fields were not mentioned.
type ParsedUpdate struct {
	Status    *models.Status
	Priority  *models.Priority
	Deadline  *string
	Progress  *int
	Professor *string
	// Comment is whatever text is left once the markers are removed
	Comment *string
	Errors  []string
}

var (
	priorityRegex  = regexp.MustCompile(`(?:^|\s)\+([\p{L}0-9]+)`)
	statusRegex    = regexp.MustCompile(`(?i)\b(?:status|statut|s):(\S+)`)
	progressRegex  = regexp.MustCompile(`(?:^|\s)(\d{1,3})%`)
	dueRegex       = regexp.MustCompile(`(?i)\b(?:due|deadline):(\S+)`)
	professorRegex = regexp.MustCompile(`(?i)\bprof:(\S+)`)
)

// ParseUpdate extracts item changes from a short expression
// Syntax: "+high status:valide 80% due:3days prof:Dupont free comment"
// Underscores in status and prof values stand for spaces.
func ParseUpdate(input string, today time.Time) ParsedUpdate {
	var result ParsedUpdate

	// Extract priority (+high, +3, +haute, etc.)
	if m := priorityRegex.FindStringSubmatch(input); len(m) > 1 {
		if p, err := models.ParsePriority(m[1]); err == nil {
			result.Priority = &p
		} else {
			result.Errors = append(result.Errors, "Invalid priority '"+m[1]+"'. Use: low, medium, high, 1, 2, or 3")
		}
		input = priorityRegex.ReplaceAllString(input, " ")
	}

	// Extract status (status:valide, s:wip, statut:en_cours)
	if m := statusRegex.FindStringSubmatch(input); len(m) > 1 {
		if st, err := models.ParseStatus(strings.ReplaceAll(m[1], "_", " ")); err == nil {
			result.Status = &st
		} else {
			result.Errors = append(result.Errors, "Invalid status '"+m[1]+"'. Use: pending, wip, review or valide")
		}
		input = statusRegex.ReplaceAllString(input, " ")
	}

	// Extract progress (80%)
	if m := progressRegex.FindStringSubmatch(input); len(m) > 1 {
		n, _ := strconv.Atoi(m[1])
		if n <= 100 {
			result.Progress = &n
		} else {
			result.Errors = append(result.Errors, "Invalid progress '"+m[1]+"%'. Use a value between 0 and 100")
		}
		input = progressRegex.ReplaceAllString(input, " ")
	}

	// Extract deadline (due:3days, due:15/12/2026, due:none)
	if m := dueRegex.FindStringSubmatch(input); len(m) > 1 {
		if d, err := ParseDeadline(m[1], today); err == nil {
			result.Deadline = &d
		} else {
			result.Errors = append(result.Errors, "Invalid due date '"+m[1]+"': "+err.Error())
		}
		input = dueRegex.ReplaceAllString(input, " ")
	}

	// Extract professor (prof:Dupont, prof:Jean_Dupont)
	if m := professorRegex.FindStringSubmatch(input); len(m) > 1 {
		prof := strings.ReplaceAll(m[1], "_", " ")
		result.Professor = &prof
		input = professorRegex.ReplaceAllString(input, " ")
	}

	// Clean up the remaining text (remove extra spaces)
	if comment := strings.Join(strings.Fields(input), " "); comment != "" {
		result.Comment = &comment
	}
	return result
}

// IsEmpty reports whether nothing was recognised
func (u ParsedUpdate) IsEmpty() bool {
	return u.Status == nil && u.Priority == nil && u.Deadline == nil &&
		u.Progress == nil && u.Professor == nil && u.Comment == nil
}
