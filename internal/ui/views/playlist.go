package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/tourguide/api"
	"github.com/jscyril/tourguide/internal/ui/components"
)

// TrackChosenMsg is sent when a stop is picked in the overlay
type TrackChosenMsg struct {
	Index int
}

// PlaylistView is the overlay listing every stop of the tour
type PlaylistView struct {
	Width       int
	Height      int
	TrackList   components.TrackList
	BorderStyle lipgloss.Style
	HelpStyle   lipgloss.Style
}

// NewPlaylistView creates a new playlist overlay
func NewPlaylistView(width, height int, tracks []api.Track) PlaylistView {
	trackList := components.NewTrackList(height-6, width-8)
	trackList.Title = "Tour stops"
	trackList.SetItems(tracks)

	return PlaylistView{
		Width:     width,
		Height:    height,
		TrackList: trackList,
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(1, 2),
		HelpStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Open positions the cursor on the playing track
func (v *PlaylistView) Open(playing int) {
	v.TrackList.Playing = playing
	v.TrackList.Focus(playing)
}

// Update handles messages
func (v PlaylistView) Update(msg tea.Msg) (PlaylistView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			index := v.TrackList.Selected
			return v, func() tea.Msg {
				return TrackChosenMsg{Index: index}
			}
		default:
			v.TrackList, _ = v.TrackList.Update(msg)
		}
	}
	return v, nil
}

// View renders the overlay
func (v PlaylistView) View() string {
	var sb strings.Builder
	sb.WriteString(v.TrackList.View())
	sb.WriteString("\n\n")
	sb.WriteString(v.HelpStyle.Render("[Enter] Select  [↑↓] Navigate  [Esc] Close"))
	return v.BorderStyle.Width(v.Width - 4).Render(sb.String())
}
