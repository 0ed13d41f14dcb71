// Package player holds the tour player's state and the controller that
// maps it onto a playback primitive.
package player

import (
	"time"

	"github.com/jscyril/tourguide/api"
)

// State is the player's view of playback. Playing is the intended state and
// is reconciled against primitive notifications as they arrive.
type State struct {
	CurrentIndex  int
	Status        api.Status
	Playing       bool
	Position      time.Duration
	KnownDuration time.Duration
	DurationKnown bool
	PlaylistOpen  bool
}

// Duration returns the real duration once metadata has loaded, otherwise the
// track's nominal duration.
func (s State) Duration(track api.Track) time.Duration {
	if s.DurationKnown {
		return s.KnownDuration
	}
	return track.Duration
}

// Remaining returns the time left in the track, never negative.
func (s State) Remaining(track api.Track) time.Duration {
	rest := s.Duration(track) - s.Position
	if rest < 0 {
		return 0
	}
	return rest
}

// resting is the status to fall back to when playback stops without ending.
func (s State) resting() api.Status {
	switch {
	case s.Status == api.StatusIdle:
		return api.StatusIdle
	case s.DurationKnown:
		return api.StatusPaused
	default:
		return api.StatusLoading
	}
}
