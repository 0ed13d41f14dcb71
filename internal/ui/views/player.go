package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/tourguide/api"
	"github.com/jscyril/tourguide/internal/player"
	"github.com/jscyril/tourguide/internal/ui/components"
)

// PlayerView displays the current stop and its playback state
type PlayerView struct {
	Width       int
	Height      int
	TourTitle   string
	TrackCount  int
	Track       api.Track
	State       player.State
	ProgressBar components.ProgressBar

	// Styles
	HeaderStyle   lipgloss.Style
	BadgeStyle    lipgloss.Style
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	TextStyle     lipgloss.Style
	StatusStyle   lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewPlayerView creates a new player view
func NewPlayerView(width, height int, tourTitle string, trackCount int) PlayerView {
	return PlayerView{
		Width:       width,
		Height:      height,
		TourTitle:   tourTitle,
		TrackCount:  trackCount,
		ProgressBar: components.NewProgressBar(width - 8),
		HeaderStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Bold(true),
		BadgeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("216")).
			Background(lipgloss.Color("52")).
			Bold(true).
			Padding(0, 1),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")),
		SubtitleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		TextStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("94")).
			Padding(1, 2),
	}
}

// SetState updates the displayed track and playback state
func (v *PlayerView) SetState(track api.Track, state player.State) {
	v.Track = track
	v.State = state
	v.ProgressBar.SetProgress(state.Position, state.Duration(track))
}

// View renders the player view
func (v PlayerView) View() string {
	var sb strings.Builder

	sb.WriteString(v.HeaderStyle.Render("⌖ " + strings.ToUpper(v.TourTitle)))
	sb.WriteString("\n\n")

	sb.WriteString(v.BadgeStyle.Render(fmt.Sprintf("TRACK %d / %d", v.Track.ID, v.TrackCount)))
	sb.WriteString("\n\n")

	sb.WriteString(v.StatusStyle.Render(statusIcon(v.State.Status) + " "))
	sb.WriteString(v.TitleStyle.Render(v.Track.Title))
	sb.WriteString("\n")
	if v.Track.Subtitle != "" {
		sb.WriteString(v.SubtitleStyle.Render(v.Track.Subtitle))
		sb.WriteString("\n")
	}
	if v.Track.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(v.TextStyle.Width(v.Width - 8).Render(v.Track.Description))
		sb.WriteString("\n")
	}
	if v.Track.ImageRef != "" {
		sb.WriteString(v.SubtitleStyle.Render("🖼  " + v.Track.ImageRef))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(v.ProgressBar.View())
	sb.WriteString("\n")
	sb.WriteString(v.SubtitleStyle.Render(statusLabel(v.State.Status)))

	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}

func statusIcon(s api.Status) string {
	switch s {
	case api.StatusPlaying:
		return "▶"
	case api.StatusPaused:
		return "⏸"
	case api.StatusLoading:
		return "…"
	case api.StatusEnded:
		return "■"
	default:
		return "○"
	}
}

func statusLabel(s api.Status) string {
	switch s {
	case api.StatusIdle:
		return "no audio for this stop"
	case api.StatusLoading:
		return "loading…"
	default:
		return s.String()
	}
}
