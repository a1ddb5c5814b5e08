package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// State is the lifecycle state of the active playback session. Only
// StateIdle, StateSpeaking and StateStopping are externally observable:
// completed and failed sessions collapse back to idle as soon as their
// engine is released.
type State int32

const (
	StateIdle State = iota
	StateSpeaking
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSpeaking:
		return "speaking"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ControllerConfig configures a playback controller
type ControllerConfig struct {
	// NewEngine builds the synthesis engine for each session.
	// Required.
	NewEngine EngineFactory

	// NewSink builds the audio output for each session.
	// Defaults to the platform playback device.
	NewSink SinkFactory

	// Voice and RateWPM are passed to every synthesis request
	Voice   string
	RateWPM int

	// OnWarning receives non-fatal synthesis errors. Optional.
	OnWarning func(err error)
}

// session is one request-to-vocalize-and-release cycle. The engine and
// sink handles are owned exclusively by the session worker; release runs
// exactly once on every exit path.
type session struct {
	id      string
	text    string
	cancel  context.CancelFunc
	done    chan struct{}
	release sync.Once
}

// Controller owns the speech playback lifecycle: it vocalizes text on a
// background worker, guarantees at most one active synthesis at a time, and
// supports cooperative interruption. A later Speak never starts before the
// earlier session has fully released its engine.
type Controller struct {
	config ControllerConfig

	// speakMu serializes Speak callers so sessions start in issue order
	speakMu sync.Mutex

	mu       sync.Mutex
	active   *session
	speaking atomic.Bool
	state    atomic.Int32
}

// NewController creates a playback controller
func NewController(config ControllerConfig) (*Controller, error) {
	if config.NewEngine == nil {
		return nil, fmt.Errorf("engine factory is required")
	}
	if config.NewSink == nil {
		config.NewSink = NewPlayerSink
	}
	if config.RateWPM <= 0 {
		config.RateWPM = DefaultRateWPM
	}
	if config.OnWarning == nil {
		config.OnWarning = func(error) {}
	}
	return &Controller{config: config}, nil
}

// Speak vocalizes text on a background worker. Empty or whitespace-only
// text is a no-op. If a previous session is still speaking, Speak blocks
// the calling goroutine until that session has released its engine, then
// starts the new one; it returns as soon as the new worker is launched,
// without waiting for playback.
func (c *Controller) Speak(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	c.speakMu.Lock()
	defer c.speakMu.Unlock()

	// Join the previous worker. It is always progressing toward a
	// terminal state, so this wait is bounded by playback length.
	c.mu.Lock()
	prev := c.active
	c.mu.Unlock()
	if prev != nil {
		<-prev.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.NewString(),
		text:   text,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// The flag flips before the worker launches so a Stop issued right
	// after Speak cannot slip between the two.
	c.mu.Lock()
	c.active = s
	c.speaking.Store(true)
	c.state.Store(int32(StateSpeaking))
	c.mu.Unlock()

	go c.run(ctx, s)
}

// Stop interrupts the active session, if any. It only signals cancellation;
// the worker performs the actual engine release. Idempotent, non-blocking,
// and safe to call while the worker is mid-synthesis.
func (c *Controller) Stop() {
	c.mu.Lock()
	s := c.active
	if s == nil || !c.speaking.Load() {
		c.mu.Unlock()
		return
	}
	c.state.Store(int32(StateStopping))
	c.mu.Unlock()

	s.cancel()
}

// IsSpeaking reports whether a session currently holds the engine
func (c *Controller) IsSpeaking() bool {
	return c.speaking.Load()
}

// State returns the observable lifecycle state
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Wait blocks until the active session, if any, reaches a terminal state
func (c *Controller) Wait() {
	c.mu.Lock()
	s := c.active
	c.mu.Unlock()

	if s != nil {
		<-s.done
	}
}

// run is the session worker. Cleanup is unconditional: the engine and sink
// are released exactly once whether synthesis completes, fails, or is
// stopped mid-flight.
func (c *Controller) run(ctx context.Context, s *session) {
	var engine Engine
	var sink Sink

	cleanup := func() {
		s.release.Do(func() {
			if engine != nil {
				_ = engine.Close()
			}
			if sink != nil {
				_ = sink.Close()
			}
			s.cancel()
			c.speaking.Store(false)
			c.state.Store(int32(StateIdle))
			close(s.done)
		})
	}
	defer cleanup()

	engine, err := c.config.NewEngine()
	if err != nil {
		c.config.OnWarning(fmt.Errorf("speech synthesis unavailable: %w", err))
		return
	}

	sink, err = c.config.NewSink()
	if err != nil {
		c.config.OnWarning(fmt.Errorf("audio output unavailable: %w", err))
		return
	}

	req := SynthesizeRequest{
		Text:    s.text,
		Voice:   c.config.Voice,
		RateWPM: c.config.RateWPM,
	}

	err = engine.Synthesize(ctx, req, func(chunk Chunk) error {
		return sink.Write(ctx, chunk)
	})
	if err == nil {
		err = sink.Drain(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		c.config.OnWarning(fmt.Errorf("speech synthesis error: %w", err))
	}
}
