package audio

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/gabriel-vasile/mimetype"

	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

// SupportedFormats returns list of supported audio formats
func SupportedFormats() []string {
	return []string{".mp3", ".wav", ".flac"}
}

// IsSupported checks if a file format is supported
func IsSupported(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio stream. The format is taken from the name's
// extension; names without a known extension are content-sniffed.
func DecodeAudio(r io.ReadSeekCloser, name string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !IsSupported(ext) {
		sniffed, err := sniff(r)
		if err != nil {
			return nil, beep.Format{}, err
		}
		ext = sniffed
	}

	switch ext {
	case ".mp3":
		return mp3.Decode(r)
	case ".wav":
		return wav.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, errors.Wrapf(playerrors.ErrInvalidFormat, "%s", ext)
	}
}

// sniff detects the container from the leading bytes and rewinds r.
func sniff(r io.ReadSeeker) (string, error) {
	mime, err := mimetype.DetectReader(r)
	if err != nil {
		return "", errors.Wrap(err, "detect content type")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", errors.Wrap(err, "rewind")
	}
	return mime.Extension(), nil
}

// Probe decodes a local file far enough to report its duration.
func Probe(path string) (time.Duration, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open")
	}

	streamer, format, err := DecodeAudio(file, path)
	if err != nil {
		file.Close()
		return 0, errors.Wrap(err, "decode")
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}
