package speech

import (
	"context"
	"sync"
	"testing"
	"time"
)

// engineTracker observes engine lifetimes across a test so mutual exclusion
// and release-exactly-once can be asserted.
type engineTracker struct {
	mu        sync.Mutex
	active    int
	maxActive int
	created   int
	closes    []int
}

func (tr *engineTracker) factory(duration time.Duration, err error) EngineFactory {
	return func() (Engine, error) {
		tr.mu.Lock()
		tr.active++
		if tr.active > tr.maxActive {
			tr.maxActive = tr.active
		}
		tr.created++
		id := tr.created - 1
		tr.closes = append(tr.closes, 0)
		tr.mu.Unlock()

		return &fakeEngine{tracker: tr, id: id, duration: duration, err: err}, nil
	}
}

type fakeEngine struct {
	tracker  *engineTracker
	id       int
	duration time.Duration
	err      error

	mu     sync.Mutex
	closed bool
}

func (f *fakeEngine) Synthesize(ctx context.Context, req SynthesizeRequest, callback ChunkCallback) error {
	if err := callback(Chunk{Data: []byte{1, 2}, SampleRate: 22050, Channels: 1}); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.duration):
		return f.err
	}
}

func (f *fakeEngine) ListVoices() []Voice { return nil }

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	f.tracker.mu.Lock()
	f.tracker.active--
	f.tracker.closes[f.id]++
	f.tracker.mu.Unlock()
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	chunks int
	closed int
}

func (s *fakeSink) Write(ctx context.Context, chunk Chunk) error {
	s.mu.Lock()
	s.chunks++
	s.mu.Unlock()
	return nil
}

func (s *fakeSink) Drain(ctx context.Context) error { return nil }

func (s *fakeSink) Close() error {
	s.mu.Lock()
	s.closed++
	s.mu.Unlock()
	return nil
}

func newTestController(t *testing.T, tr *engineTracker, duration time.Duration, synthErr error, warnings *[]error) *Controller {
	t.Helper()

	var warnMu sync.Mutex
	c, err := NewController(ControllerConfig{
		NewEngine: tr.factory(duration, synthErr),
		NewSink:   func() (Sink, error) { return &fakeSink{}, nil },
		OnWarning: func(err error) {
			if warnings == nil {
				return
			}
			warnMu.Lock()
			*warnings = append(*warnings, err)
			warnMu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return c
}

func waitIdle(t *testing.T, c *Controller, within time.Duration) {
	t.Helper()

	deadline := time.After(within)
	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-deadline:
		t.Fatalf("controller did not reach idle within %v", within)
	}
}

func TestSpeakEmptyTextIsNoOp(t *testing.T) {
	tr := &engineTracker{}
	c := newTestController(t, tr, 50*time.Millisecond, nil, nil)

	c.Speak("")
	c.Speak("   \t\n")

	if c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = true after empty Speak, want false")
	}
	if tr.created != 0 {
		t.Fatalf("engines created = %d, want 0", tr.created)
	}
}

func TestSpeakRunsToCompletion(t *testing.T) {
	tr := &engineTracker{}
	c := newTestController(t, tr, 30*time.Millisecond, nil, nil)

	c.Speak("hello")
	if !c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = false immediately after Speak, want true")
	}

	waitIdle(t, c, time.Second)
	if c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = true after completion, want false")
	}
	if got := tr.closes[0]; got != 1 {
		t.Fatalf("engine released %d times, want exactly 1", got)
	}
}

func TestStopInterruptsActiveSession(t *testing.T) {
	tr := &engineTracker{}
	c := newTestController(t, tr, 5*time.Second, nil, nil)

	c.Speak("a very long sentence")
	c.Stop()

	// The worker must release well before natural completion
	waitIdle(t, c, time.Second)
	if c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = true after Stop, want false")
	}
	if got := tr.closes[0]; got != 1 {
		t.Fatalf("engine released %d times, want exactly 1", got)
	}

	// Second stop is a no-op
	c.Stop()
	if got := tr.closes[0]; got != 1 {
		t.Fatalf("engine released %d times after second Stop, want exactly 1", got)
	}
}

func TestStopWhenIdleIsNoOp(t *testing.T) {
	tr := &engineTracker{}
	c := newTestController(t, tr, 30*time.Millisecond, nil, nil)

	c.Stop()
	c.Stop()

	if c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = true, want false")
	}
	if got := c.State(); got != StateIdle {
		t.Fatalf("State() = %v, want %v", got, StateIdle)
	}
}

func TestSpeakSerializesSessions(t *testing.T) {
	tr := &engineTracker{}
	first := 150 * time.Millisecond
	c := newTestController(t, tr, first, nil, nil)

	start := time.Now()
	c.Speak("a")
	c.Speak("b") // must join "a" before starting
	elapsed := time.Since(start)

	if elapsed < first {
		t.Fatalf("second Speak returned after %v, want >= %v (serialization)", elapsed, first)
	}

	waitIdle(t, c, time.Second)

	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.maxActive > 1 {
		t.Fatalf("max concurrent engines = %d, want 1", tr.maxActive)
	}
	if tr.created != 2 {
		t.Fatalf("engines created = %d, want 2", tr.created)
	}
	for id, n := range tr.closes {
		if n != 1 {
			t.Fatalf("engine %d released %d times, want exactly 1", id, n)
		}
	}
}

func TestSynthesisErrorIsNonFatalWarning(t *testing.T) {
	tr := &engineTracker{}
	var warnings []error
	c := newTestController(t, tr, 10*time.Millisecond, context.DeadlineExceeded, &warnings)

	c.Speak("hello")
	waitIdle(t, c, time.Second)

	if c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = true after failed session, want false")
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	if got := tr.closes[0]; got != 1 {
		t.Fatalf("engine released %d times after error, want exactly 1", got)
	}
}

func TestEngineFactoryFailureLeavesControllerIdle(t *testing.T) {
	var warnings []error
	var warnMu sync.Mutex
	c, err := NewController(ControllerConfig{
		NewEngine: func() (Engine, error) { return nil, context.DeadlineExceeded },
		NewSink:   func() (Sink, error) { return &fakeSink{}, nil },
		OnWarning: func(err error) {
			warnMu.Lock()
			warnings = append(warnings, err)
			warnMu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}

	c.Speak("hello")
	waitIdle(t, c, time.Second)

	if c.IsSpeaking() {
		t.Fatalf("IsSpeaking() = true, want false")
	}
	warnMu.Lock()
	defer warnMu.Unlock()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
}

func TestControllerRequiresEngineFactory(t *testing.T) {
	if _, err := NewController(ControllerConfig{}); err == nil {
		t.Fatalf("NewController() error = nil, want error")
	}
}
