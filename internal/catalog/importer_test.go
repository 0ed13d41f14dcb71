package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

func writeSilence(t *testing.T, path string, samples int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(samples), format))
}

func TestImporter_Import(t *testing.T) {
	dir := t.TempDir()
	writeSilence(t, filepath.Join(dir, "02-garden.wav"), 12000)
	writeSilence(t, filepath.Join(dir, "01-entrance.wav"), 8000)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "extra"), 0755))
	writeSilence(t, filepath.Join(dir, "extra", "03-cellar.wav"), 100)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("notes"), 0644))
	// Claims to be audio but is not decodable.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.mp3"), []byte("nope"), 0644))

	c, err := NewImporter(2).Import(context.Background(), dir, "Imported")
	require.NoError(t, err)

	assert.Equal(t, "Imported", c.Title())
	tracks := c.Tracks()
	require.Len(t, tracks, 3)

	assert.Equal(t, 1, tracks[0].ID)
	assert.Equal(t, "01-entrance", tracks[0].Title)
	assert.Equal(t, time.Second, tracks[0].Duration)
	assert.Equal(t, "02-garden", tracks[1].Title)
	assert.Equal(t, 2*time.Second, tracks[1].Duration)
	assert.Equal(t, "03-cellar", tracks[2].Title)
	assert.Equal(t, time.Second, tracks[2].Duration)

	for _, tr := range tracks {
		ref, ok := tr.Audio.Ref()
		assert.True(t, ok)
		assert.True(t, filepath.IsAbs(ref))
	}
}

func TestImporter_EmptyDirectory(t *testing.T) {
	_, err := NewImporter(0).Import(context.Background(), t.TempDir(), "Empty")
	assert.True(t, errors.Is(err, playerrors.ErrInvalidCatalog))
}

func TestImporter_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeSilence(t, filepath.Join(dir, "a.wav"), 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImporter(1).Import(ctx, dir, "x")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRoundUpSecond(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, time.Second},
		{10 * time.Millisecond, time.Second},
		{time.Second, time.Second},
		{1500 * time.Millisecond, 2 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundUpSecond(tt.in))
	}
}
