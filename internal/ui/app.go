package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/jscyril/tourguide/api"
	"github.com/jscyril/tourguide/internal/config"
	"github.com/jscyril/tourguide/internal/player"
	"github.com/jscyril/tourguide/internal/ui/views"
	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

const noticeTTL = 4 * time.Second

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// Views
	playerView   views.PlayerView
	playlistView views.PlaylistView

	// Components
	controller *player.Controller
	events     <-chan api.AudioEvent
	keys       config.KeyMap
	messages   config.MessagesConfig
	seekStep   time.Duration

	// State
	ctx       context.Context
	notice    string
	noticeSeq int

	// Styles
	noticeStyle lipgloss.Style
	helpStyle   lipgloss.Style
}

// AudioEventMsg carries a notification from the playback primitive
type AudioEventMsg struct {
	Event api.AudioEvent
}

// noticeExpiredMsg clears the notice it was scheduled for
type noticeExpiredMsg struct {
	seq int
}

// NewModel creates a new application model
func NewModel(ctx context.Context, ctrl *player.Controller, events <-chan api.AudioEvent, cfg *config.Config) Model {
	cat := ctrl.Catalog()
	m := Model{
		width:      80,
		height:     24,
		controller: ctrl,
		events:     events,
		keys:       cfg.KeyBindings,
		messages:   cfg.Messages,
		seekStep:   cfg.Playback.SeekStep(),
		ctx:        ctx,
		noticeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("124")).
			Padding(0, 1),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}

	m.playerView = views.NewPlayerView(m.width, m.height-4, cat.Title(), cat.Len())
	m.playlistView = views.NewPlaylistView(m.width, m.height-4, cat.Tracks())
	m.refresh()

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.listenForEvents()
}

// listenForEvents returns a command that waits for the next audio event
func (m Model) listenForEvents() tea.Cmd {
	events := m.events
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			return AudioEventMsg{Event: ev}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewSizes()

	case AudioEventMsg:
		if m.controller.HandleEvent(msg.Event) && msg.Event.Type == api.EventError {
			cmds = append(cmds, m.setNotice(m.messages.PlaybackFailed))
		}
		cmds = append(cmds, m.listenForEvents())

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}

	case views.TrackChosenMsg:
		if err := m.controller.ChooseTrack(msg.Index); err != nil {
			zlog.Error().Err(err).Int("index", msg.Index).Msg("choose track")
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || keyMatches(m.keys.Quit, msg) {
			return m, tea.Quit
		}
		if m.controller.State().PlaylistOpen {
			cmds = append(cmds, m.updatePlaylist(msg))
		} else {
			cmds = append(cmds, m.handleKey(msg))
		}
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

// handleKey applies player shortcuts while the overlay is closed
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var err error
	switch {
	case keyMatches(m.keys.PlayPause, msg):
		err = m.controller.TogglePlay()
	case keyMatches(m.keys.Next, msg):
		err = m.controller.NextTrack()
	case keyMatches(m.keys.Previous, msg):
		err = m.controller.PrevTrack()
	case keyMatches(m.keys.SeekForward, msg):
		err = m.controller.SeekBy(m.seekStep)
	case keyMatches(m.keys.SeekBack, msg):
		err = m.controller.SeekBy(-m.seekStep)
	case keyMatches(m.keys.Playlist, msg):
		m.controller.OpenPlaylist()
		m.playlistView.Open(m.controller.State().CurrentIndex)
	}
	return m.reportError(err)
}

// updatePlaylist routes keys to the overlay
func (m *Model) updatePlaylist(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" || keyMatches(m.keys.Playlist, msg) {
		m.controller.ClosePlaylist()
		return nil
	}
	var cmd tea.Cmd
	m.playlistView, cmd = m.playlistView.Update(msg)
	return cmd
}

// reportError turns a controller error into a notice
func (m *Model) reportError(err error) tea.Cmd {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playerrors.ErrNoAudioAvailable):
		return m.setNotice(m.messages.NoAudio)
	case errors.Is(err, playerrors.ErrPlaybackStart):
		return m.setNotice(m.messages.PlaybackFailed)
	default:
		zlog.Warn().Err(err).Msg("player command failed")
		return nil
	}
}

// setNotice shows text and schedules its removal
func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// refresh copies controller state into the views
func (m *Model) refresh() {
	state := m.controller.State()
	m.playerView.SetState(m.controller.CurrentTrack(), state)
	m.playlistView.TrackList.Playing = state.CurrentIndex
}

// updateViewSizes updates view dimensions
func (m *Model) updateViewSizes() {
	m.playerView.Width = m.width
	m.playerView.Height = m.height - 4
	m.playerView.ProgressBar.Width = m.width - 8
	m.playlistView.Width = m.width
	m.playlistView.Height = m.height - 4
	m.playlistView.TrackList.Height = m.height - 10
	m.playlistView.TrackList.Width = m.width - 8
}

// View renders the UI
func (m Model) View() string {
	var sb string

	if m.controller.State().PlaylistOpen {
		sb += m.playlistView.View()
	} else {
		sb += m.playerView.View()
		sb += "\n"
		sb += m.helpStyle.Render(m.help())
	}

	if m.notice != "" {
		sb += "\n" + m.noticeStyle.Render(m.notice)
	}

	return sb
}

func (m Model) help() string {
	return "[" + m.keys.PlayPause + "] Play/Pause  [" +
		m.keys.SeekBack + "/" + m.keys.SeekForward + "] Seek  [" +
		m.keys.Previous + "/" + m.keys.Next + "] Prev/Next  [" +
		m.keys.Playlist + "] Stops  [" + m.keys.Quit + "] Quit"
}

// keyMatches reports whether msg is the configured binding. The name
// "space" is accepted for the space bar.
func keyMatches(binding string, msg tea.KeyMsg) bool {
	key := msg.String()
	if key == binding {
		return true
	}
	return binding == "space" && key == " "
}

// Run starts the bubbletea program
func Run(ctx context.Context, ctrl *player.Controller, events <-chan api.AudioEvent, cfg *config.Config) error {
	model := NewModel(ctx, ctrl, events, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
