package player

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscyril/tourguide/api"
	"github.com/jscyril/tourguide/internal/catalog"
	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

type bindCall struct {
	binding uint64
	source  api.AudioSource
}

// fakePrimitive records requests and never emits on its own.
type fakePrimitive struct {
	binds   []bindCall
	plays   int
	pauses  int
	seeks   []time.Duration
	playErr error
	events  chan api.AudioEvent
}

func newFakePrimitive() *fakePrimitive {
	return &fakePrimitive{events: make(chan api.AudioEvent)}
}

func (p *fakePrimitive) BindSource(binding uint64, source api.AudioSource) error {
	p.binds = append(p.binds, bindCall{binding, source})
	return nil
}

func (p *fakePrimitive) Play() error {
	p.plays++
	return p.playErr
}

func (p *fakePrimitive) Pause() error {
	p.pauses++
	return nil
}

func (p *fakePrimitive) SetPosition(position time.Duration) error {
	p.seeks = append(p.seeks, position)
	return nil
}

func (p *fakePrimitive) Events() <-chan api.AudioEvent { return p.events }

func (p *fakePrimitive) lastBinding() uint64 {
	return p.binds[len(p.binds)-1].binding
}

// tourCatalog has audio on the first track only.
func tourCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("Test Tour", []api.Track{
		{ID: 1, Title: "Welcome", Duration: 135 * time.Second, Audio: api.AudioFrom("welcome.mp3")},
		{ID: 2, Title: "The House", Duration: 180 * time.Second},
		{ID: 3, Title: "Vineyards", Duration: 150 * time.Second},
	})
	require.NoError(t, err)
	return c
}

func newTestController(t *testing.T) (*Controller, *fakePrimitive) {
	t.Helper()
	p := newFakePrimitive()
	c, err := NewController(tourCatalog(t), p)
	require.NoError(t, err)
	return c, p
}

func TestNewController_LoadsFirstTrack(t *testing.T) {
	c, p := newTestController(t)

	s := c.State()
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, api.StatusLoading, s.Status)
	assert.False(t, s.Playing)
	require.Len(t, p.binds, 1)
	ref, ok := p.binds[0].source.Ref()
	assert.True(t, ok)
	assert.Equal(t, "welcome.mp3", ref)
}

func TestSelectTrack_ResetsState(t *testing.T) {
	for i := 0; i < 3; i++ {
		c, p := newTestController(t)
		require.NoError(t, c.Play())
		c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: p.lastBinding(), Duration: 2 * time.Minute})
		c.HandleEvent(api.AudioEvent{Type: api.EventProgress, Binding: p.lastBinding(), Position: 42 * time.Second})

		require.NoError(t, c.SelectTrack(i))

		s := c.State()
		assert.Equal(t, i, s.CurrentIndex)
		assert.False(t, s.Playing)
		assert.Zero(t, s.Position)
		assert.False(t, s.DurationKnown)
	}
}

func TestSelectTrack_WithoutAudioUnbinds(t *testing.T) {
	c, p := newTestController(t)

	require.NoError(t, c.SelectTrack(1))

	assert.Equal(t, api.StatusIdle, c.State().Status)
	assert.False(t, p.binds[len(p.binds)-1].source.Available())
}

func TestSelectTrack_OutOfRange(t *testing.T) {
	c, _ := newTestController(t)

	for _, idx := range []int{-1, 3, 100} {
		err := c.SelectTrack(idx)
		assert.True(t, errors.Is(err, playerrors.ErrOutOfRange), "index %d", idx)
		assert.True(t, errors.HasAssertionFailure(err))
	}
	assert.Equal(t, 0, c.State().CurrentIndex)
}

func TestNavigation_Circular(t *testing.T) {
	c, _ := newTestController(t)

	require.NoError(t, c.PrevTrack())
	assert.Equal(t, 2, c.State().CurrentIndex)

	require.NoError(t, c.NextTrack())
	assert.Equal(t, 0, c.State().CurrentIndex)

	for i := 0; i < 3; i++ {
		require.NoError(t, c.SelectTrack(i))
		require.NoError(t, c.NextTrack())
		require.NoError(t, c.PrevTrack())
		assert.Equal(t, i, c.State().CurrentIndex)
	}
}

func TestPlay_NoAudio(t *testing.T) {
	c, p := newTestController(t)
	require.NoError(t, c.SelectTrack(2))
	before := c.State()

	err := c.Play()

	require.Error(t, err)
	assert.True(t, errors.Is(err, playerrors.ErrNoAudioAvailable))
	assert.Equal(t, before, c.State())
	assert.Zero(t, p.plays)
}

func TestPlay_StartFailureReverts(t *testing.T) {
	c, p := newTestController(t)
	p.playErr = errors.New("device unavailable")

	err := c.Play()

	assert.True(t, errors.Is(err, playerrors.ErrPlaybackStart))
	assert.False(t, c.State().Playing)
	assert.Equal(t, 0, c.State().CurrentIndex)
}

func TestPlay_AsyncFailureReconciles(t *testing.T) {
	c, p := newTestController(t)
	require.NoError(t, c.Play())
	require.True(t, c.State().Playing)

	c.HandleEvent(api.AudioEvent{Type: api.EventError, Binding: p.lastBinding(), Err: errors.New("decode error")})

	s := c.State()
	assert.False(t, s.Playing)
	assert.Equal(t, api.StatusPaused, s.Status)
	assert.Equal(t, 0, s.CurrentIndex)
}

func TestPause(t *testing.T) {
	c, p := newTestController(t)
	c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: p.lastBinding(), Duration: time.Minute})
	require.NoError(t, c.Play())
	assert.Equal(t, api.StatusPlaying, c.State().Status)

	require.NoError(t, c.Pause())

	assert.False(t, c.State().Playing)
	assert.Equal(t, api.StatusPaused, c.State().Status)
	assert.Equal(t, 1, p.pauses)
}

func TestTogglePlay(t *testing.T) {
	c, p := newTestController(t)

	require.NoError(t, c.TogglePlay())
	assert.True(t, c.State().Playing)
	require.NoError(t, c.TogglePlay())
	assert.False(t, c.State().Playing)
	assert.Equal(t, 1, p.plays)
	assert.Equal(t, 1, p.pauses)
}

func TestSeek_KeepsPlayState(t *testing.T) {
	tests := []struct {
		name    string
		playing bool
	}{
		{"paused", false},
		{"playing", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p := newTestController(t)
			c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: p.lastBinding(), Duration: 2 * time.Minute})
			if tt.playing {
				require.NoError(t, c.Play())
			}

			require.NoError(t, c.Seek(75*time.Second))

			s := c.State()
			assert.Equal(t, 75*time.Second, s.Position)
			assert.Equal(t, tt.playing, s.Playing)
			assert.Equal(t, []time.Duration{75 * time.Second}, p.seeks)
		})
	}
}

func TestSeek_NoAudioIsNoop(t *testing.T) {
	c, p := newTestController(t)
	require.NoError(t, c.SelectTrack(1))

	require.NoError(t, c.Seek(30*time.Second))

	assert.Zero(t, c.State().Position)
	assert.Empty(t, p.seeks)
}

func TestSeekBy_Clamps(t *testing.T) {
	c, p := newTestController(t)
	c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: p.lastBinding(), Duration: 10 * time.Second})

	require.NoError(t, c.SeekBy(-5*time.Second))
	assert.Zero(t, c.State().Position)

	require.NoError(t, c.SeekBy(time.Minute))
	assert.Equal(t, 10*time.Second, c.State().Position)
}

func TestSeekBy_ClampsToNominalWhileLoading(t *testing.T) {
	c, p := newTestController(t)
	require.Equal(t, api.StatusLoading, c.State().Status)

	for i := 0; i < 40; i++ {
		require.NoError(t, c.SeekBy(5*time.Second))
	}

	s := c.State()
	assert.Equal(t, 135*time.Second, s.Position)
	assert.Equal(t, api.StatusLoading, s.Status)
	assert.Equal(t, 135*time.Second, p.seeks[len(p.seeks)-1])
}

func TestHandleEvent_StaleIgnored(t *testing.T) {
	c, p := newTestController(t)
	stale := p.lastBinding()
	require.NoError(t, c.NextTrack())
	require.NoError(t, c.PrevTrack())

	applied := c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: stale, Duration: time.Hour})
	assert.False(t, applied)
	assert.False(t, c.State().DurationKnown)

	applied = c.HandleEvent(api.AudioEvent{Type: api.EventEnded, Binding: stale})
	assert.False(t, applied)
	assert.NotEqual(t, api.StatusEnded, c.State().Status)
}

func TestHandleEvent_MetadataAndProgress(t *testing.T) {
	c, p := newTestController(t)
	track := c.CurrentTrack()
	assert.Equal(t, 135*time.Second, c.State().Duration(track))

	c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: p.lastBinding(), Duration: 140 * time.Second})
	c.HandleEvent(api.AudioEvent{Type: api.EventProgress, Binding: p.lastBinding(), Position: 40 * time.Second})

	s := c.State()
	assert.Equal(t, api.StatusPaused, s.Status)
	assert.Equal(t, 140*time.Second, s.Duration(track))
	assert.Equal(t, 100*time.Second, s.Remaining(track))
	assert.False(t, s.Playing)
}

func TestEnded_Recoverable(t *testing.T) {
	c, p := newTestController(t)
	c.HandleEvent(api.AudioEvent{Type: api.EventMetadataReady, Binding: p.lastBinding(), Duration: time.Minute})
	require.NoError(t, c.Play())
	c.HandleEvent(api.AudioEvent{Type: api.EventEnded, Binding: p.lastBinding()})
	require.Equal(t, api.StatusEnded, c.State().Status)
	assert.Equal(t, time.Minute, c.State().Position)

	require.NoError(t, c.Seek(10*time.Second))
	assert.Equal(t, api.StatusPaused, c.State().Status)
	assert.False(t, c.State().Playing)

	c.HandleEvent(api.AudioEvent{Type: api.EventEnded, Binding: p.lastBinding()})
	require.NoError(t, c.Play())
	assert.True(t, c.State().Playing)
	assert.Zero(t, c.State().Position)
}

func TestScenario_EndThenNextWithoutAudio(t *testing.T) {
	c, p := newTestController(t)

	require.NoError(t, c.Play())
	assert.True(t, c.State().Playing)

	c.HandleEvent(api.AudioEvent{Type: api.EventEnded, Binding: p.lastBinding()})
	assert.False(t, c.State().Playing)
	assert.Equal(t, api.StatusEnded, c.State().Status)

	require.NoError(t, c.NextTrack())
	s := c.State()
	assert.Equal(t, 1, s.CurrentIndex)
	assert.False(t, s.Playing)
	assert.Zero(t, s.Position)

	err := c.Play()
	assert.True(t, errors.Is(err, playerrors.ErrNoAudioAvailable))
	assert.False(t, c.State().Playing)
}

func TestPlaylistOverlay_DoesNotTouchPlayback(t *testing.T) {
	c, p := newTestController(t)
	require.NoError(t, c.Play())
	c.HandleEvent(api.AudioEvent{Type: api.EventProgress, Binding: p.lastBinding(), Position: 12 * time.Second})
	before := c.State()

	c.OpenPlaylist()
	assert.True(t, c.State().PlaylistOpen)
	c.ClosePlaylist()
	c.TogglePlaylist()
	c.TogglePlaylist()

	after := c.State()
	assert.False(t, after.PlaylistOpen)
	assert.Equal(t, before.CurrentIndex, after.CurrentIndex)
	assert.Equal(t, before.Playing, after.Playing)
	assert.Equal(t, before.Position, after.Position)
	assert.Len(t, p.binds, 1)
}

func TestChooseTrack_ClosesOverlay(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenPlaylist()

	require.NoError(t, c.ChooseTrack(2))

	s := c.State()
	assert.Equal(t, 2, s.CurrentIndex)
	assert.False(t, s.PlaylistOpen)
}
