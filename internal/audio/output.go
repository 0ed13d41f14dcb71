package audio

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is the sound device the engine mixes into.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// SpeakerOutput plays through the system speaker.
type SpeakerOutput struct{}

func (SpeakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (SpeakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (SpeakerOutput) Clear()                  { speaker.Clear() }
func (SpeakerOutput) Lock()                   { speaker.Lock() }
func (SpeakerOutput) Unlock()                 { speaker.Unlock() }
