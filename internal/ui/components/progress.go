package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar represents a progress bar component
type ProgressBar struct {
	Width       int
	Current     time.Duration
	Total       time.Duration
	BarChar     string
	EmptyChar   string
	ShowTime    bool
	Style       lipgloss.Style
	FilledStyle lipgloss.Style
	EmptyStyle  lipgloss.Style
	TimeStyle   lipgloss.Style
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) ProgressBar {
	return ProgressBar{
		Width:       width,
		BarChar:     "━",
		EmptyChar:   "─",
		ShowTime:    true,
		Style:       lipgloss.NewStyle(),
		FilledStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		EmptyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		TimeStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// SetProgress sets the current position
func (p *ProgressBar) SetProgress(current, total time.Duration) {
	p.Current = current
	p.Total = total
}

// Percent returns the filled fraction in [0, 1]
func (p ProgressBar) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1, float64(p.Current)/float64(p.Total)))
}

// View renders the bar with elapsed time on the left and total and remaining
// time on the right.
func (p ProgressBar) View() string {
	var sb strings.Builder

	barWidth := p.Width
	if barWidth < 10 {
		barWidth = 10
	}

	filled := int(float64(barWidth) * p.Percent())
	sb.WriteString(p.FilledStyle.Render(strings.Repeat(p.BarChar, filled)))
	sb.WriteString(p.EmptyStyle.Render(strings.Repeat(p.EmptyChar, barWidth-filled)))

	if p.ShowTime {
		remaining := p.Total - p.Current
		if remaining < 0 {
			remaining = 0
		}
		left := FormatDuration(p.Current)
		right := fmt.Sprintf("-%s  %s", FormatDuration(remaining), FormatDuration(p.Total))
		gap := barWidth - lipgloss.Width(left) - lipgloss.Width(right)
		if gap < 1 {
			gap = 1
		}
		sb.WriteString("\n")
		sb.WriteString(p.TimeStyle.Render(left + strings.Repeat(" ", gap) + right))
	}

	return p.Style.Render(sb.String())
}

// FormatTime renders seconds as minutes:seconds with zero-padded seconds.
// NaN, infinite and negative values render as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	minutes := int(math.Floor(seconds / 60))
	secs := int(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatDuration formats a duration as minutes:seconds
func FormatDuration(d time.Duration) string {
	return FormatTime(d.Seconds())
}
