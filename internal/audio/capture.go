package audio

import (
	"context"
	"time"
)

// CaptureConfig holds configuration for microphone capture
type CaptureConfig struct {
	// SampleRate is the number of samples per second (Hz)
	// 16000 is what the recognizer expects
	SampleRate uint32

	// Channels is the number of audio channels (1 = mono)
	Channels uint32

	// BufferFrames is the number of frames per buffer
	// Smaller = lower latency, higher CPU usage
	BufferFrames uint32

	// SampleBufferSize is the size of the channel buffer for captured samples
	SampleBufferSize int

	// DeviceID is the audio device identifier
	// Empty string = use default device
	DeviceID string
}

// DefaultCaptureConfig returns a configuration suitable for utterance capture
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:       16000,
		Channels:         1,
		BufferFrames:     480, // 30ms at 16kHz
		SampleBufferSize: 100, // ~3 seconds of backlog tolerance
		DeviceID:         "",
	}
}

// Sample represents a chunk of captured audio data (16-bit PCM)
type Sample struct {
	Data      []byte
	Timestamp time.Time
	Frames    uint32
}

// Capturer is the interface for audio capture implementations
type Capturer interface {
	// Start begins audio capture
	Start(ctx context.Context) error

	// Stop stops audio capture
	Stop() error

	// Samples returns a channel that receives captured audio
	Samples() <-chan Sample

	// Errors returns a channel that receives capture errors
	Errors() <-chan error

	// IsRunning returns true if capture is currently active
	IsRunning() bool
}

// NewCapturer creates a new audio capturer with the given configuration
func NewCapturer(config CaptureConfig) (Capturer, error) {
	return NewMalgoCapturer(config)
}
