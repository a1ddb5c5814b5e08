package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hollis/parley/internal/listen"
	"github.com/hollis/parley/internal/llm"
	"github.com/hollis/parley/internal/output"
)

// Mode is the active input mode
type Mode string

const (
	ModeText  Mode = "text"
	ModeVoice Mode = "voice"
)

// Speaker is the playback surface the assistant drives. Satisfied by
// *speech.Controller.
type Speaker interface {
	Speak(text string)
	Stop()
	IsSpeaking() bool
	Wait()
}

// UtteranceCapturer records one utterance and transcribes it. Satisfied by
// *listen.Listener.
type UtteranceCapturer interface {
	CaptureUtterance(ctx context.Context) (string, error)
}

// Assistant holds the single conversation session: the active mode, the
// last exchange, and the wiring from user actions to the collaborators.
type Assistant struct {
	client     llm.Client
	listener   UtteranceCapturer
	speaker    Speaker
	transcript output.Transcript
	sessionID  string

	mu           sync.Mutex
	mode         Mode
	lastInput    string
	lastResponse string
	turns        int
}

// NewAssistant wires the collaborators into a session. transcript may be
// nil when no transcript file is configured.
func NewAssistant(client llm.Client, listener UtteranceCapturer, speaker Speaker, transcript output.Transcript) *Assistant {
	return &Assistant{
		client:     client,
		listener:   listener,
		speaker:    speaker,
		transcript: transcript,
		sessionID:  uuid.NewString(),
		mode:       ModeText,
	}
}

// SessionID identifies this conversation session
func (a *Assistant) SessionID() string {
	return a.sessionID
}

// Mode returns the active input mode
func (a *Assistant) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// SetMode switches input modes. Switching resets the session state and
// stops any active playback; setting the current mode again is a no-op.
func (a *Assistant) SetMode(mode Mode) {
	a.mu.Lock()
	if a.mode == mode {
		a.mu.Unlock()
		return
	}
	a.mode = mode
	a.mu.Unlock()

	a.Reset()
	a.logEvent("mode", string(mode))
}

// Submit sends a query to the language model and records the exchange.
// On failure the error text is kept as the visible response, matching how
// the interactive surface renders it, and the error is also returned so
// callers can tell the two apart.
func (a *Assistant) Submit(ctx context.Context, input string) (string, error) {
	reply, err := a.client.GenerateReply(ctx, input)
	if err != nil {
		reply = fmt.Sprintf("Error: %v", err)
	}

	a.mu.Lock()
	a.lastInput = input
	a.lastResponse = reply
	a.turns += 2
	turn := a.turns
	a.mu.Unlock()

	a.logTurn(turn-1, "user", input)
	a.logTurn(turn, "assistant", reply)

	return reply, err
}

// ListenAndSubmit captures one utterance and submits it as the query.
// Capture failures are returned without calling the language model.
func (a *Assistant) ListenAndSubmit(ctx context.Context) (string, string, error) {
	if a.listener == nil {
		return "", "", &listen.DeviceError{Err: errors.New("voice input is not configured")}
	}

	input, err := a.listener.CaptureUtterance(ctx)
	if err != nil {
		a.logEvent("capture", CaptureFeedback(err))
		return "", "", err
	}

	reply, err := a.Submit(ctx, input)
	return input, reply, err
}

// SpeakResponse vocalizes the last assistant response
func (a *Assistant) SpeakResponse() {
	a.mu.Lock()
	response := a.lastResponse
	a.mu.Unlock()

	a.speaker.Speak(response)
}

// StopSpeaking interrupts playback; no-op when idle
func (a *Assistant) StopSpeaking() {
	a.speaker.Stop()
}

// IsSpeaking reports whether a response is being vocalized
func (a *Assistant) IsSpeaking() bool {
	return a.speaker.IsSpeaking()
}

// LastInput returns the most recent user query
func (a *Assistant) LastInput() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastInput
}

// LastResponse returns the most recent assistant reply
func (a *Assistant) LastResponse() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastResponse
}

// ClearInput forgets the last query without touching the response
func (a *Assistant) ClearInput() {
	a.mu.Lock()
	a.lastInput = ""
	a.mu.Unlock()
}

// Reset clears the exchange state and forces playback to stop. When Reset
// returns, IsSpeaking reports false.
func (a *Assistant) Reset() {
	a.mu.Lock()
	a.lastInput = ""
	a.lastResponse = ""
	a.mu.Unlock()

	a.speaker.Stop()
	a.speaker.Wait()
	a.logEvent("reset", "session state cleared")
}

// CaptureFeedback maps a capture failure to the status line shown to the
// user. The three failure kinds get distinct messages.
func CaptureFeedback(err error) string {
	switch {
	case errors.Is(err, listen.ErrNoSpeech):
		return "No speech detected"
	case errors.Is(err, listen.ErrUnintelligible):
		return "Could not understand audio"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func (a *Assistant) logTurn(index int, role, text string) {
	if a.transcript == nil {
		return
	}
	_ = a.transcript.WriteTurn(output.Turn{
		Index:     index,
		SessionID: a.sessionID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
}

func (a *Assistant) logEvent(eventType, message string) {
	if a.transcript == nil {
		return
	}
	_ = a.transcript.WriteEvent(eventType, message)
}
