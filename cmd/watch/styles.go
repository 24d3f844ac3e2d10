package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/joshua1code/Q-bot-FD/internal/types"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// LabelStyle for field labels.
	LabelStyle = lipgloss.NewStyle().Faint(true).Width(12)
)

// FormatPriceWithColor formats a price with an indicator based on comparison with the previous price.
func FormatPriceWithColor(current, previous float64) string {
	priceStr := fmt.Sprintf("%.4f", current)

	if previous == 0 {
		return priceStr
	}

	if current > previous {
		return priceStr + " ▲"
	} else if current < previous {
		return priceStr + " ▼"
	}

	return priceStr
}

// FormatStatus renders a status with a marker for the terminal ones.
func FormatStatus(status types.SessionStatus) string {
	switch status {
	case types.SessionStatusCompleted:
		return string(status) + " ✓"
	case types.SessionStatusFailed:
		return string(status) + " ✗"
	default:
		return string(status)
	}
}
