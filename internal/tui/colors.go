package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/fiches/internal/models"
)

// Color constants for the fiches board theme
const (
	ColorCardBackground = "#1B1530" // Dark purple
	ColorBorder         = "#3A3F55" // Grey-blue

	// Text Colors
	ColorPrimaryText   = "#E6EAF2"
	ColorSecondaryText = "#B1B8C7"
	ColorDisabledText  = "#6D7383"
	ColorHelpText      = "240"

	// Accent Colors (Purple theme)
	ColorAccentMain   = "#7C3AED" // Active tab, selected row border
	ColorAccentBright = "#A78BFA" // Headers, highlights

	// State Colors
	ColorError   = "#EF4444" // Overdue, high priority
	ColorSuccess = "#22C55E" // Validated
	ColorWarning = "#F59E0B" // Due soon, in review
	ColorInfo    = "#38BDF8" // In progress
)

// statusColor maps a status to its badge color
func statusColor(s models.Status) lipgloss.Color {
	switch s {
	case models.StatusValidated:
		return lipgloss.Color(ColorSuccess)
	case models.StatusInReview:
		return lipgloss.Color(ColorWarning)
	case models.StatusInProgress:
		return lipgloss.Color(ColorInfo)
	}
	return lipgloss.Color(ColorSecondaryText)
}

// priorityColor maps a priority to its color
func priorityColor(p models.Priority) lipgloss.Color {
	switch p {
	case models.PriorityHigh:
		return lipgloss.Color(ColorError)
	case models.PriorityMedium:
		return lipgloss.Color(ColorWarning)
	}
	return lipgloss.Color(ColorSecondaryText)
}

// progressBar renders a fixed-width bar such as ▰▰▰▱▱ 60%
func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "▰"
		} else {
			bar += "▱"
		}
	}
	color := lipgloss.Color(ColorAccentBright)
	if percent == 100 {
		color = lipgloss.Color(ColorSuccess)
	}
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}
