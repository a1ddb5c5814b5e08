package speech

import "context"

// SynthesizeRequest contains text-to-speech parameters
type SynthesizeRequest struct {
	Text  string
	Voice string

	// RateWPM is the speaking rate in words per minute
	RateWPM int
}

// Chunk represents a chunk of synthesized audio (16-bit PCM)
type Chunk struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// ChunkCallback is called for each audio chunk during synthesis
type ChunkCallback func(chunk Chunk) error

// Voice represents an available synthesis voice
type Voice struct {
	ID       string
	Name     string
	Language string
}

// Engine is a live synthesis handle. An Engine is owned by exactly one
// playback session: acquired from a factory when the session starts and
// closed exactly once when it ends, never reused.
type Engine interface {
	// Synthesize converts text to audio, streaming chunks via callback.
	// It must return promptly with ctx.Err() once ctx is cancelled.
	Synthesize(ctx context.Context, req SynthesizeRequest, callback ChunkCallback) error

	// ListVoices returns available voices
	ListVoices() []Voice

	// Close releases the engine resource. Close is idempotent.
	Close() error
}

// EngineFactory builds a fresh engine for one playback session
type EngineFactory func() (Engine, error)
