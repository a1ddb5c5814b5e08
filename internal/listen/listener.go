package listen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hollis/parley/internal/audio"
	"github.com/hollis/parley/internal/transcribe"
)

// Sentinel failures the orchestrator turns into distinct user feedback.
var (
	// ErrNoSpeech is returned when no speech onset is detected within
	// the configured timeout
	ErrNoSpeech = errors.New("no speech detected")

	// ErrUnintelligible is returned when speech was detected but the
	// recognizer produced no text
	ErrUnintelligible = errors.New("could not understand audio")
)

// DeviceError wraps microphone or recognizer failures
type DeviceError struct {
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device error: %v", e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Config holds utterance capture settings
type Config struct {
	// Timeout is how long to wait for speech to start
	Timeout time.Duration

	// PhraseTimeLimit is the maximum utterance duration once speech
	// has started
	PhraseTimeLimit time.Duration

	// Calibration is how long to sample ambient noise before listening
	Calibration time.Duration

	Capture audio.CaptureConfig
	VAD     audio.VADConfig
}

// DefaultConfig returns the capture settings used by the assistant
func DefaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		PhraseTimeLimit: 35 * time.Second,
		Calibration:     time.Second,
		Capture:         audio.DefaultCaptureConfig(),
		VAD:             audio.DefaultVADConfig(),
	}
}

// preRollFrames is how many onset-detection frames are replayed into the
// recognizer when speech starts, so the first syllable is not clipped.
const preRollFrames = 10

// Listener captures one utterance from the microphone and transcribes it
type Listener struct {
	config      Config
	recognizer  transcribe.Recognizer
	newCapturer func(audio.CaptureConfig) (audio.Capturer, error)
}

// New creates a Listener backed by the platform microphone
func New(config Config, recognizer transcribe.Recognizer) *Listener {
	return &Listener{
		config:      config,
		recognizer:  recognizer,
		newCapturer: audio.NewCapturer,
	}
}

// NewWithCapturer creates a Listener with a custom capturer factory
func NewWithCapturer(config Config, recognizer transcribe.Recognizer, newCapturer func(audio.CaptureConfig) (audio.Capturer, error)) *Listener {
	return &Listener{
		config:      config,
		recognizer:  recognizer,
		newCapturer: newCapturer,
	}
}

// CaptureUtterance records one utterance and returns its transcript.
// It calibrates against ambient noise first, then waits up to
// Config.Timeout for speech onset and records until the speaker pauses or
// PhraseTimeLimit elapses. Failures are ErrNoSpeech, ErrUnintelligible, or
// a *DeviceError.
func (l *Listener) CaptureUtterance(ctx context.Context) (string, error) {
	capturer, err := l.newCapturer(l.config.Capture)
	if err != nil {
		return "", &DeviceError{Err: err}
	}

	if err := capturer.Start(ctx); err != nil {
		return "", &DeviceError{Err: err}
	}
	defer capturer.Stop()

	vad := audio.NewVAD(l.config.VAD)

	if err := l.calibrate(ctx, capturer, vad); err != nil {
		return "", err
	}

	text, err := l.record(ctx, capturer, vad)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnintelligible
	}
	return text, nil
}

// calibrate gathers ambient-noise frames and tunes the VAD threshold
func (l *Listener) calibrate(ctx context.Context, capturer audio.Capturer, vad *audio.VAD) error {
	if l.config.Calibration <= 0 {
		return nil
	}

	deadline := time.NewTimer(l.config.Calibration)
	defer deadline.Stop()

	var frames [][]byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			vad.Calibrate(frames)
			return nil
		case sample, ok := <-capturer.Samples():
			if !ok {
				return &DeviceError{Err: fmt.Errorf("capture stopped during calibration")}
			}
			frames = append(frames, sample.Data)
		case err, ok := <-capturer.Errors():
			if ok && err != nil {
				return &DeviceError{Err: err}
			}
		}
	}
}

// record waits for speech onset and feeds the utterance to the recognizer
func (l *Listener) record(ctx context.Context, capturer audio.Capturer, vad *audio.VAD) (string, error) {
	onset := time.NewTimer(l.config.Timeout)
	defer onset.Stop()

	var phraseLimit <-chan time.Time
	var preRoll [][]byte
	speaking := false

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-onset.C:
			return "", ErrNoSpeech

		case <-phraseLimit:
			return l.finish()

		case sample, ok := <-capturer.Samples():
			if !ok {
				return "", &DeviceError{Err: fmt.Errorf("capture stopped unexpectedly")}
			}

			_, started, ended := vad.ProcessFrame(sample.Data)

			if !speaking {
				preRoll = append(preRoll, sample.Data)
				if len(preRoll) > preRollFrames {
					preRoll = preRoll[1:]
				}

				if !started {
					continue
				}

				// Speech onset: stop the timeout clock, start the
				// phrase clock, replay buffered frames
				speaking = true
				onset.Stop()
				limit := time.NewTimer(l.config.PhraseTimeLimit)
				defer limit.Stop()
				phraseLimit = limit.C

				for _, frame := range preRoll {
					if _, err := l.recognizer.Accept(ctx, frame); err != nil {
						return "", &DeviceError{Err: err}
					}
				}
				preRoll = nil
				continue
			}

			if _, err := l.recognizer.Accept(ctx, sample.Data); err != nil {
				return "", &DeviceError{Err: err}
			}

			if ended {
				return l.finish()
			}

		case err, ok := <-capturer.Errors():
			if ok && err != nil {
				return "", &DeviceError{Err: err}
			}
		}
	}
}

func (l *Listener) finish() (string, error) {
	result, err := l.recognizer.Flush()
	if err != nil {
		return "", &DeviceError{Err: err}
	}
	return result.Text, nil
}
