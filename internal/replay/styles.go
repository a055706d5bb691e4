// Package replay renders a persisted session's turn log for
// inspection, adapted from internal/replay/styles.go's component color
// scheme, scoped to the handful of event kinds a turn log actually
// has (message, memory, hold, next, error).
package replay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")) // Gray - timestamps, metadata

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	// Messages - blue, the main visible output of a turn.
	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12"))

	// Memory writes - cyan.
	memoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	// Hold set/resume - yellow.
	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))

	// Next directive - green for End, magenta for Goto, red (errorStyle)
	// for Error, gray otherwise.
	endStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
	gotoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("13"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	seqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Width(5).
			Align(lipgloss.Right)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	divider = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Render(strings.Repeat("━", 60))
)
