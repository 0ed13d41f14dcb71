package api

import "time"

// Track is one stop of the guided tour.
type Track struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Subtitle    string        `json:"subtitle"`
	Description string        `json:"description"`
	Duration    time.Duration `json:"duration"` // nominal, used until real metadata loads
	ImageRef    string        `json:"image"`
	Audio       AudioSource   `json:"-"`
}

// AudioSource is an optional reference to an audio resource (file path or URL).
// The zero value means the track has no playable audio.
type AudioSource struct {
	ref string
}

// NoAudio returns an empty audio source.
func NoAudio() AudioSource {
	return AudioSource{}
}

// AudioFrom returns an audio source bound to ref. An empty ref yields NoAudio.
func AudioFrom(ref string) AudioSource {
	return AudioSource{ref: ref}
}

// Ref returns the reference and whether one is present.
func (s AudioSource) Ref() (string, bool) {
	return s.ref, s.ref != ""
}

// Available reports whether the source has a reference.
func (s AudioSource) Available() bool {
	return s.ref != ""
}

// Status is the player state machine position.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPaused
	StatusPlaying
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPaused:
		return "paused"
	case StatusPlaying:
		return "playing"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EventType identifies a notification from the playback primitive.
type EventType int

const (
	EventProgress EventType = iota
	EventMetadataReady
	EventStateChange
	EventEnded
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventProgress:
		return "progress"
	case EventMetadataReady:
		return "metadata_ready"
	case EventStateChange:
		return "state_change"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// AudioEvent is a notification emitted by a Primitive. Binding identifies the
// source the event belongs to; consumers drop events for superseded bindings.
type AudioEvent struct {
	Type     EventType
	Binding  uint64
	Position time.Duration // EventProgress
	Duration time.Duration // EventMetadataReady
	Playing  bool          // EventStateChange
	Err      error         // EventError
}

// Primitive is the native playback capability. Calls are requests; the
// outcome is reported asynchronously on Events. Callers may hold locks that
// the Events consumer also needs, so calls must not block indefinitely and
// must fail once the primitive has stopped.
type Primitive interface {
	BindSource(binding uint64, source AudioSource) error
	Play() error
	Pause() error
	SetPosition(position time.Duration) error
	Events() <-chan AudioEvent
}
