package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/tourguide/api"
)

// TrackList represents a scrollable list of tracks with a cursor and a
// marker on the track currently loaded in the player.
type TrackList struct {
	Items         []api.Track
	Selected      int
	Playing       int
	Height        int
	Width         int
	Offset        int
	Title         string
	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	TitleStyle    lipgloss.Style
	MutedStyle    lipgloss.Style
}

// NewTrackList creates a new track list
func NewTrackList(height, width int) TrackList {
	return TrackList{
		Height: height,
		Width:  width,
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("94")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		NormalStyle: lipgloss.NewStyle().
			Padding(0, 1),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("223")).
			MarginBottom(1),
		MutedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

// SetItems sets the list items
func (l *TrackList) SetItems(items []api.Track) {
	l.Items = items
	l.Selected = 0
	l.Offset = 0
}

// Focus moves the cursor to index, typically the playing track.
func (l *TrackList) Focus(index int) {
	if index < 0 || index >= len(l.Items) {
		return
	}
	l.Selected = index
	l.ensureVisible()
}

// Update handles messages for the track list
func (l TrackList) Update(msg tea.Msg) (TrackList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		case "home":
			l.Selected = 0
			l.Offset = 0
		case "end":
			if len(l.Items) > 0 {
				l.Selected = len(l.Items) - 1
				l.ensureVisible()
			}
		}
	}
	return l, nil
}

// MoveUp moves selection up
func (l *TrackList) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
		l.ensureVisible()
	}
}

// MoveDown moves selection down
func (l *TrackList) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
		l.ensureVisible()
	}
}

// ensureVisible ensures the selected item is visible
func (l *TrackList) ensureVisible() {
	visibleHeight := l.visibleHeight()
	if l.Selected < l.Offset {
		l.Offset = l.Selected
	} else if l.Selected >= l.Offset+visibleHeight {
		l.Offset = l.Selected - visibleHeight + 1
	}
}

func (l *TrackList) visibleHeight() int {
	h := l.Height - 2 // title and footer
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the track list
func (l TrackList) View() string {
	var sb strings.Builder

	if l.Title != "" {
		sb.WriteString(l.TitleStyle.Render(l.Title))
		sb.WriteString("\n")
	}

	if len(l.Items) == 0 {
		sb.WriteString(l.NormalStyle.Render("No tracks"))
		return sb.String()
	}

	end := l.Offset + l.visibleHeight()
	if end > len(l.Items) {
		end = len(l.Items)
	}

	for i := l.Offset; i < end; i++ {
		track := l.Items[i]

		marker := " "
		if i == l.Playing {
			marker = "♪"
		}
		line := fmt.Sprintf("%s %2d. %s", marker, track.ID, truncate(track.Title, l.Width-20))
		suffix := FormatDuration(track.Duration)
		if !track.Audio.Available() {
			suffix = "no audio · " + suffix
		}

		if i == l.Selected {
			sb.WriteString(l.SelectedStyle.Render(line + "  " + suffix))
		} else {
			sb.WriteString(l.NormalStyle.Render(line) + l.MutedStyle.Render("  "+suffix))
		}
		if track.Subtitle != "" {
			sb.WriteString("\n")
			sb.WriteString(l.MutedStyle.Render("      " + track.Subtitle))
		}

		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(l.Items) > l.visibleHeight() {
		sb.WriteString("\n")
		sb.WriteString(l.MutedStyle.Render(fmt.Sprintf("  [%d/%d]", l.Selected+1, len(l.Items))))
	}

	return sb.String()
}

// truncate truncates a string to maxLen runes
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
