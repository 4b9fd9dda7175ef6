package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/fiches/internal/models"
)

var (
	frenchDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeRegex   = regexp.MustCompile(`^(\d+)\s*(day|days|d|jour|jours|j|week|weeks|w|semaine|semaines)$`)
)

// ParseDeadline turns user input into a YYYY-MM-DD deadline.
// Supported formats:
// - yyyy-mm-dd (e.g., "2026-12-15")
// - dd/mm/yyyy (e.g., "15/12/2026")
// - X days / X weeks, counted from today (e.g., "3 days", "2weeks", "10j")
// - today, tomorrow
// - none, clear or blank, which clear the deadline (empty result)
func ParseDeadline(input string, today time.Time) (string, error) {
	raw := strings.TrimSpace(input)
	input = strings.ToLower(raw)
	switch input {
	case "", "none", "clear", "-":
		return "", nil
	case "today", "aujourd'hui":
		return today.Format(models.DateLayout), nil
	case "tomorrow", "demain":
		return today.AddDate(0, 0, 1).Format(models.DateLayout), nil
	}

	if day, ok := models.ParseDate(raw, today.Location()); ok {
		return day.Format(models.DateLayout), nil
	}

	// Try dd/mm/yyyy format
	if day, err := parseDateFormat(input, today.Location()); err == nil {
		return day.Format(models.DateLayout), nil
	}

	// Try relative formats
	if day, err := parseRelative(input, today); err == nil {
		return day.Format(models.DateLayout), nil
	}

	return "", fmt.Errorf("invalid date %q. Use: yyyy-mm-dd, dd/mm/yyyy, X days, X weeks, today or none", input)
}

// parseDateFormat parses dd/mm/yyyy format
func parseDateFormat(input string, loc *time.Location) (time.Time, error) {
	matches := frenchDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)

	// Check if date is valid (handles leap years, etc.)
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}
	return date, nil
}

// parseRelative parses "3 days", "2 weeks" and their short forms
func parseRelative(input string, today time.Time) (time.Time, error) {
	matches := relativeRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid relative format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "week", "weeks", "w", "semaine", "semaines":
		if amount > 104 {
			return time.Time{}, fmt.Errorf("weeks must be at most 104")
		}
		return today.AddDate(0, 0, amount*7), nil
	default:
		if amount > 730 {
			return time.Time{}, fmt.Errorf("days must be at most 730")
		}
		return today.AddDate(0, 0, amount), nil
	}
}

// FormatDeadline renders an item's deadline for display, relative to today
func FormatDeadline(it models.Item, today time.Time) string {
	if !it.HasDeadline() {
		return ""
	}
	due, ok := it.DeadlineDate(time.UTC)
	if !ok {
		return it.Deadline
	}

	// Calendar days, counted in UTC so DST shifts do not matter
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	daysDiff := int(due.Sub(start).Hours() / 24)

	// Always show the actual date to avoid confusion
	dateStr := due.Format("02/01/2006")

	switch {
	case it.Status == models.StatusValidated:
		return dateStr
	case daysDiff < 0:
		return fmt.Sprintf("⚠️ OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("🔥 Due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("📅 Due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("📅 %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("📅 %s", dateStr)
	}
}
