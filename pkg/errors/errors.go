package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for common conditions
var (
	ErrNoAudioAvailable = errors.New("no audio available for track")
	ErrPlaybackStart    = errors.New("playback failed to start")
	ErrOutOfRange       = errors.New("track index out of range")
	ErrInvalidFormat    = errors.New("unsupported audio format")
	ErrInvalidCatalog   = errors.New("invalid catalog")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op      string // Operation that failed
	TrackID int    // Track ID if applicable
	Err     error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.TrackID > 0 {
		return fmt.Sprintf("%s failed for track %d: %v", e.Op, e.TrackID, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op string, trackID int, err error) *PlayerError {
	return &PlayerError{Op: op, TrackID: trackID, Err: err}
}

// NoAudio reports a play request on a track without an audio reference.
func NoAudio(trackID int) error {
	return errors.WithHint(
		NewPlayerError("play", trackID, ErrNoAudioAvailable),
		"this stop has no audio yet",
	)
}

// PlaybackStart reports that the primitive refused or failed to start playback.
func PlaybackStart(trackID int, cause error) error {
	return NewPlayerError("play", trackID, errors.Mark(cause, ErrPlaybackStart))
}

// OutOfRange is an assertion failure: callers must never request an index
// outside [0, length).
func OutOfRange(index, length int) error {
	return errors.Mark(
		errors.AssertionFailedf("track index %d outside [0, %d)", index, length),
		ErrOutOfRange,
	)
}
