package speech

import (
	"context"
	"sync"

	"github.com/hollis/parley/internal/audio"
)

// Sink receives synthesized audio chunks. The controller creates one sink
// per playback session and closes it together with the engine.
type Sink interface {
	// Write delivers one chunk for playback
	Write(ctx context.Context, chunk Chunk) error

	// Drain blocks until buffered audio has been played out
	Drain(ctx context.Context) error

	// Close releases the output device. Idempotent.
	Close() error
}

// SinkFactory builds a fresh sink for one playback session
type SinkFactory func() (Sink, error)

// playerSink plays chunks on the default output device. The device is
// opened lazily because the sample rate is only known from the first chunk.
type playerSink struct {
	mu     sync.Mutex
	player *audio.Player
	closed bool
}

// NewPlayerSink returns a sink backed by the platform playback device
func NewPlayerSink() (Sink, error) {
	return &playerSink{}, nil
}

func (s *playerSink) Write(ctx context.Context, chunk Chunk) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return context.Canceled
	}
	if s.player == nil {
		cfg := audio.DefaultPlaybackConfig()
		if chunk.SampleRate > 0 {
			cfg.SampleRate = uint32(chunk.SampleRate)
		}
		if chunk.Channels > 0 {
			cfg.Channels = uint32(chunk.Channels)
		}
		player, err := audio.NewPlayer(cfg)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.player = player
	}
	player := s.player
	s.mu.Unlock()

	return player.Write(ctx, chunk.Data)
}

func (s *playerSink) Drain(ctx context.Context) error {
	s.mu.Lock()
	player := s.player
	s.mu.Unlock()

	if player == nil {
		return nil
	}
	return player.Drain(ctx)
}

func (s *playerSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.player != nil {
		return s.player.Close()
	}
	return nil
}
