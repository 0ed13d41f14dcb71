package audio

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/faiface/beep"
	zlog "github.com/rs/zerolog/log"

	"github.com/jscyril/tourguide/api"
	playerrors "github.com/jscyril/tourguide/pkg/errors"
)

// ErrStopped is returned by requests made after the engine has shut down.
var ErrStopped = errors.New("audio engine stopped")

// Ensure Engine implements Primitive interface at compile time
var _ api.Primitive = (*Engine)(nil)

// Config tunes the engine.
type Config struct {
	ProgressInterval time.Duration
	Buffer           time.Duration
}

type commandType int

const (
	cmdBind commandType = iota
	cmdPlay
	cmdPause
	cmdSeek
	cmdLoaded
	cmdEnded
)

type command struct {
	kind     commandType
	binding  uint64
	source   api.AudioSource
	position time.Duration
	loaded   *loadResult
}

type loadResult struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	err      error
}

// Engine is the playback primitive: it owns one bound source at a time and
// processes requests on a single goroutine. Every event carries the binding
// token of the source it was produced for.
type Engine struct {
	cfg      Config
	loader   Loader
	output   Output
	commands chan command
	events   chan api.AudioEvent
	done     chan struct{}

	mu         sync.RWMutex
	binding    uint64
	loading    bool
	wantPlay   bool
	pendSeek   bool // position requested before the source finished loading
	seekTo     time.Duration
	playing    bool
	queued     bool // sequence registered with the output
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	outputRate beep.SampleRate
	cancelLoad context.CancelFunc
}

// NewEngine creates a new engine instance
func NewEngine(cfg Config, loader Loader, output Output) *Engine {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 250 * time.Millisecond
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 100 * time.Millisecond
	}
	return &Engine{
		cfg:      cfg,
		loader:   loader,
		output:   output,
		commands: make(chan command, 16),
		events:   make(chan api.AudioEvent, 32),
		done:     make(chan struct{}),
	}
}

// Start begins the engine goroutines
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
	go e.trackPosition(ctx)
}

// Events returns the events channel. It is closed when the engine stops.
func (e *Engine) Events() <-chan api.AudioEvent {
	return e.events
}

// BindSource replaces the current source. A source without a reference
// leaves the engine unbound.
func (e *Engine) BindSource(binding uint64, source api.AudioSource) error {
	return e.send(command{kind: cmdBind, binding: binding, source: source})
}

// Play requests playback. If the source is still loading, playback starts
// once it is ready.
func (e *Engine) Play() error {
	return e.send(command{kind: cmdPlay})
}

// Pause requests a halt
func (e *Engine) Pause() error {
	return e.send(command{kind: cmdPause})
}

// SetPosition seeks; the target is clamped to the stream bounds. A position
// set while the source is loading becomes its starting point.
func (e *Engine) SetPosition(position time.Duration) error {
	return e.send(command{kind: cmdSeek, position: position})
}

// send queues a request, failing once the engine has stopped.
func (e *Engine) send(cmd command) error {
	select {
	case <-e.done:
		return ErrStopped
	default:
	}
	select {
	case e.commands <- cmd:
		return nil
	case <-e.done:
		return ErrStopped
	}
}

// run is the main command processing loop
func (e *Engine) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.cleanup()
			return
		case cmd := <-e.commands:
			e.handle(ctx, cmd)
		}
	}
}

func (e *Engine) handle(ctx context.Context, cmd command) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch cmd.kind {
	case cmdBind:
		e.bind(ctx, cmd.binding, cmd.source)

	case cmdLoaded:
		e.loaded(ctx, cmd.binding, cmd.loaded)

	case cmdPlay:
		if e.streamer == nil {
			if e.loading {
				e.wantPlay = true
				return
			}
			e.emit(ctx, api.AudioEvent{
				Type: api.EventError,
				Err:  playerrors.NewPlayerError("play", 0, playerrors.ErrNoAudioAvailable),
			})
			return
		}
		e.start(ctx)

	case cmdPause:
		e.wantPlay = false
		if e.playing && e.ctrl != nil {
			e.output.Lock()
			e.ctrl.Paused = true
			e.output.Unlock()
		}
		e.playing = false
		e.emit(ctx, api.AudioEvent{Type: api.EventStateChange, Playing: false})

	case cmdSeek:
		e.seek(ctx, cmd.position)

	case cmdEnded:
		if cmd.binding != e.binding || !e.queued {
			return
		}
		e.queued = false
		e.playing = false
		e.ctrl = nil
		e.emit(ctx, api.AudioEvent{Type: api.EventEnded})
	}
}

// bind drops the current source and starts loading the new one.
func (e *Engine) bind(ctx context.Context, binding uint64, source api.AudioSource) {
	e.release()
	e.binding = binding

	ref, ok := source.Ref()
	if !ok {
		return
	}

	e.loading = true
	loadCtx, cancel := context.WithCancel(ctx)
	e.cancelLoad = cancel
	go func() {
		streamer, format, err := e.loader.Load(loadCtx, ref)
		e.enqueue(ctx, command{
			kind:    cmdLoaded,
			binding: binding,
			loaded:  &loadResult{streamer: streamer, format: format, err: err},
		})
	}()
}

func (e *Engine) loaded(ctx context.Context, binding uint64, res *loadResult) {
	if binding != e.binding {
		// Superseded while loading.
		if res.streamer != nil {
			res.streamer.Close()
		}
		return
	}

	e.loading = false
	if res.err != nil {
		e.wantPlay = false
		e.pendSeek = false
		e.emit(ctx, api.AudioEvent{Type: api.EventError, Err: playerrors.NewPlayerError("load", 0, res.err)})
		return
	}

	e.streamer = res.streamer
	e.format = res.format
	e.emit(ctx, api.AudioEvent{
		Type:     api.EventMetadataReady,
		Duration: res.format.SampleRate.D(res.streamer.Len()),
	})

	if e.pendSeek {
		e.pendSeek = false
		e.seek(ctx, e.seekTo)
	}

	if e.wantPlay {
		e.wantPlay = false
		e.start(ctx)
	}
}

// start resumes the bound stream, registering it with the output if needed.
func (e *Engine) start(ctx context.Context) {
	if e.playing {
		return
	}

	if !e.queued {
		rate := e.format.SampleRate
		if e.outputRate == 0 {
			if err := e.output.Init(rate, rate.N(e.cfg.Buffer)); err != nil {
				e.emit(ctx, api.AudioEvent{Type: api.EventError, Err: playerrors.NewPlayerError("speaker_init", 0, err)})
				return
			}
			e.outputRate = rate
		}

		if e.streamer.Position() >= e.streamer.Len() {
			if err := e.streamer.Seek(0); err != nil {
				e.emit(ctx, api.AudioEvent{Type: api.EventError, Err: playerrors.NewPlayerError("rewind", 0, err)})
				return
			}
		}

		var s beep.Streamer = e.streamer
		if rate != e.outputRate {
			s = beep.Resample(4, rate, e.outputRate, s)
		}
		e.ctrl = &beep.Ctrl{Streamer: s}

		binding := e.binding
		e.output.Play(beep.Seq(e.ctrl, beep.Callback(func() {
			// Runs under the output lock; hand off instead of blocking.
			go e.enqueue(ctx, command{kind: cmdEnded, binding: binding})
		})))
		e.queued = true
	} else {
		e.output.Lock()
		e.ctrl.Paused = false
		e.output.Unlock()
	}

	e.playing = true
	e.emit(ctx, api.AudioEvent{Type: api.EventStateChange, Playing: true})
}

func (e *Engine) seek(ctx context.Context, pos time.Duration) {
	if e.streamer == nil {
		if e.loading {
			e.pendSeek = true
			e.seekTo = pos
		}
		return
	}

	n := e.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if n > e.streamer.Len() {
		n = e.streamer.Len()
	}

	e.output.Lock()
	err := e.streamer.Seek(n)
	e.output.Unlock()
	if err != nil {
		e.emit(ctx, api.AudioEvent{Type: api.EventError, Err: playerrors.NewPlayerError("seek", 0, err)})
		return
	}
	e.emit(ctx, api.AudioEvent{Type: api.EventProgress, Position: e.format.SampleRate.D(n)})
}

// trackPosition reports playback position periodically
func (e *Engine) trackPosition(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.mu.RLock()
			if e.playing && e.streamer != nil {
				e.output.Lock()
				pos := e.streamer.Position()
				e.output.Unlock()
				e.emit(ctx, api.AudioEvent{Type: api.EventProgress, Position: e.format.SampleRate.D(pos)})
			}
			e.mu.RUnlock()
		}
	}
}

// release stops and closes the current source. Caller holds e.mu.
func (e *Engine) release() {
	if e.cancelLoad != nil {
		e.cancelLoad()
		e.cancelLoad = nil
	}
	if e.queued {
		e.output.Clear()
		e.queued = false
	}
	if e.streamer != nil {
		if err := e.streamer.Close(); err != nil {
			zlog.Debug().Err(err).Msg("close streamer")
		}
		e.streamer = nil
	}
	e.ctrl = nil
	e.loading = false
	e.wantPlay = false
	e.pendSeek = false
	e.playing = false
}

// emit stamps the current binding on ev and delivers it. Caller holds e.mu.
func (e *Engine) emit(ctx context.Context, ev api.AudioEvent) {
	ev.Binding = e.binding
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}

func (e *Engine) enqueue(ctx context.Context, cmd command) {
	select {
	case e.commands <- cmd:
	case <-ctx.Done():
	}
}

// cleanup releases resources
func (e *Engine) cleanup() {
	e.mu.Lock()
	e.release()
	e.mu.Unlock()
	close(e.done)
	close(e.events)
}
