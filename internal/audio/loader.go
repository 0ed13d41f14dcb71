package audio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
)

// maxRemoteSize bounds how much of a remote resource is buffered in memory.
const maxRemoteSize = 256 << 20

// Loader resolves an audio reference into a decoded, seekable stream.
type Loader interface {
	Load(ctx context.Context, ref string) (beep.StreamSeekCloser, beep.Format, error)
}

// SourceLoader loads local paths, file:// URLs and http(s) URLs.
type SourceLoader struct {
	client *http.Client
}

// NewSourceLoader creates a loader whose remote fetches time out after timeout.
func NewSourceLoader(timeout time.Duration) *SourceLoader {
	return &SourceLoader{client: &http.Client{Timeout: timeout}}
}

// Load opens and decodes ref
func (l *SourceLoader) Load(ctx context.Context, ref string) (beep.StreamSeekCloser, beep.Format, error) {
	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.loadRemote(ctx, u)
		case "file":
			return loadFile(u.Path)
		}
	}
	return loadFile(ref)
}

func loadFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "open")
	}
	streamer, format, err := DecodeAudio(file, path)
	if err != nil {
		file.Close()
		return nil, beep.Format{}, errors.Wrap(err, "decode")
	}
	return streamer, format, nil
}

// loadRemote buffers the whole resource so the decoder can seek.
func (l *SourceLoader) loadRemote(ctx context.Context, u *url.URL) (beep.StreamSeekCloser, beep.Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "build request")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, beep.Format{}, errors.Newf("fetch: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "read body")
	}
	if len(data) > maxRemoteSize {
		return nil, beep.Format{}, errors.Newf("resource exceeds %d bytes", maxRemoteSize)
	}

	streamer, format, err := DecodeAudio(memoryFile{bytes.NewReader(data)}, u.Path)
	if err != nil {
		return nil, beep.Format{}, errors.Wrap(err, "decode")
	}
	return streamer, format, nil
}

// memoryFile adapts an in-memory buffer to io.ReadSeekCloser.
type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }
