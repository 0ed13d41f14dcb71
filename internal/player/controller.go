package player

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/jscyril/tourguide/api"
	"github.com/jscyril/tourguide/internal/catalog"
	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

// Controller is the only component that talks to the playback primitive.
// Every binding of a source gets a fresh token; notifications carrying an
// older token are ignored.
type Controller struct {
	mu        sync.RWMutex
	catalog   *catalog.Catalog
	primitive api.Primitive
	state     State
	binding   uint64
}

// NewController creates a controller and loads the first track.
func NewController(cat *catalog.Catalog, primitive api.Primitive) (*Controller, error) {
	c := &Controller{
		catalog:   cat,
		primitive: primitive,
	}
	if err := c.SelectTrack(0); err != nil {
		return nil, err
	}
	return c, nil
}

// Catalog returns the catalog being played
func (c *Controller) Catalog() *catalog.Catalog {
	return c.catalog
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CurrentTrack returns the selected track
func (c *Controller) CurrentTrack() api.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	track, _ := c.catalog.At(c.state.CurrentIndex)
	return track
}

// SelectTrack switches to the track at index. Playback stops, position
// resets and the new source (if any) starts loading.
func (c *Controller) SelectTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectLocked(index)
}

func (c *Controller) selectLocked(index int) error {
	track, err := c.catalog.At(index)
	if err != nil {
		zlog.Error().Err(err).Int("index", index).Msg("invalid track selection")
		return err
	}

	c.binding++
	status := api.StatusIdle
	if track.Audio.Available() {
		status = api.StatusLoading
	}
	c.state = State{
		CurrentIndex: index,
		Status:       status,
		PlaylistOpen: c.state.PlaylistOpen,
	}

	zlog.Debug().Int("track", track.ID).Uint64("binding", c.binding).Stringer("status", status).Msg("track selected")
	if err := c.primitive.BindSource(c.binding, track.Audio); err != nil {
		zlog.Warn().Err(err).Int("track", track.ID).Msg("bind source")
	}
	return nil
}

// NextTrack moves to the following track, wrapping to the first.
func (c *Controller) NextTrack() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectLocked(c.catalog.Next(c.state.CurrentIndex))
}

// PrevTrack moves to the preceding track, wrapping to the last.
func (c *Controller) PrevTrack() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectLocked(c.catalog.Prev(c.state.CurrentIndex))
}

// Play requests playback of the current track. It returns an error matching
// ErrNoAudioAvailable, without changing state, when the track has no audio.
// Playing is set optimistically and reverted if the primitive refuses.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	track, err := c.catalog.At(c.state.CurrentIndex)
	if err != nil {
		return err
	}
	if !track.Audio.Available() {
		zlog.Info().Int("track", track.ID).Msg("play requested on track without audio")
		return playerrors.NoAudio(track.ID)
	}
	if c.state.Playing {
		return nil
	}

	previous := c.state
	if c.state.Status == api.StatusEnded {
		c.state.Position = 0
	}
	c.state.Playing = true
	c.state.Status = api.StatusPlaying

	if err := c.primitive.Play(); err != nil {
		c.state = previous
		zlog.Warn().Err(err).Int("track", track.ID).Msg("playback start failed")
		return playerrors.PlaybackStart(track.ID, err)
	}
	return nil
}

// Pause halts playback
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Playing {
		return nil
	}
	c.state.Playing = false
	c.state.Status = c.state.resting()

	if err := c.primitive.Pause(); err != nil {
		return errors.Wrap(err, "pause")
	}
	return nil
}

// TogglePlay pauses when playing and plays otherwise
func (c *Controller) TogglePlay() error {
	if c.State().Playing {
		return c.Pause()
	}
	return c.Play()
}

// Seek moves to target. It is a no-op for tracks without audio and never
// changes whether the player is playing.
func (c *Controller) Seek(target time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(target)
}

// SeekBy moves relative to the current position
func (c *Controller) SeekBy(delta time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seekLocked(c.state.Position + delta)
}

func (c *Controller) seekLocked(target time.Duration) error {
	if c.state.Status == api.StatusIdle {
		return nil
	}

	track, err := c.catalog.At(c.state.CurrentIndex)
	if err != nil {
		return err
	}
	if target < 0 {
		target = 0
	}
	if limit := c.state.Duration(track); target > limit {
		target = limit
	}

	c.state.Position = target
	if c.state.Status == api.StatusEnded {
		c.state.Status = api.StatusPaused
	}

	if err := c.primitive.SetPosition(target); err != nil {
		return errors.Wrap(err, "seek")
	}
	return nil
}

// OpenPlaylist shows the overlay
func (c *Controller) OpenPlaylist() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PlaylistOpen = true
}

// ClosePlaylist hides the overlay
func (c *Controller) ClosePlaylist() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PlaylistOpen = false
}

// TogglePlaylist flips overlay visibility
func (c *Controller) TogglePlaylist() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.PlaylistOpen = !c.state.PlaylistOpen
}

// ChooseTrack selects a track from the overlay and closes it.
func (c *Controller) ChooseTrack(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.selectLocked(index); err != nil {
		return err
	}
	c.state.PlaylistOpen = false
	return nil
}

// HandleEvent applies a primitive notification. It reports false for
// notifications that belong to a superseded binding.
func (c *Controller) HandleEvent(ev api.AudioEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Binding != c.binding {
		zlog.Debug().Stringer("event", ev.Type).Uint64("binding", ev.Binding).Uint64("current", c.binding).Msg("dropping stale notification")
		return false
	}

	switch ev.Type {
	case api.EventProgress:
		c.state.Position = ev.Position

	case api.EventMetadataReady:
		c.state.KnownDuration = ev.Duration
		c.state.DurationKnown = true
		if c.state.Status == api.StatusLoading {
			c.state.Status = api.StatusPaused
		}

	case api.EventStateChange:
		c.state.Playing = ev.Playing
		if ev.Playing {
			c.state.Status = api.StatusPlaying
		} else if c.state.Status == api.StatusPlaying {
			c.state.Status = c.state.resting()
		}

	case api.EventEnded:
		c.state.Playing = false
		c.state.Status = api.StatusEnded
		if c.state.DurationKnown {
			c.state.Position = c.state.KnownDuration
		}

	case api.EventError:
		zlog.Warn().Err(ev.Err).Int("index", c.state.CurrentIndex).Msg("playback failed")
		c.state.Playing = false
		if c.state.Status == api.StatusPlaying || c.state.Status == api.StatusLoading {
			c.state.Status = api.StatusPaused
		}
	}
	return true
}
