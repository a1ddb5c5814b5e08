package transcribe

import "context"

// Result represents a speech recognition result
type Result struct {
	// Text is the recognized text
	Text string

	// Partial indicates an in-progress hypothesis rather than a final
	// phrase
	Partial bool

	// Confidence is the recognition confidence (0.0 to 1.0)
	Confidence float64
}

// Config holds configuration for a recognizer
type Config struct {
	// ModelPath is the path to the acoustic model directory
	ModelPath string

	// SampleRate is the audio sample rate in Hz
	SampleRate int
}

// DefaultConfig returns a default recognizer configuration
func DefaultConfig(modelPath string) Config {
	return Config{
		ModelPath:  modelPath,
		SampleRate: 16000,
	}
}

// Recognizer is the interface for speech-to-text engines. Audio fed to
// Accept must be 16-bit mono PCM at the configured sample rate.
type Recognizer interface {
	// Accept processes a chunk of audio and returns the current result
	Accept(ctx context.Context, pcm []byte) (*Result, error)

	// Flush returns the final result for the current utterance and
	// resets the recognizer for the next one
	Flush() (*Result, error)

	// Close releases model resources
	Close() error
}
