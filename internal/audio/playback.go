package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// PlaybackConfig holds configuration for the PCM playback device
type PlaybackConfig struct {
	SampleRate uint32
	Channels   uint32

	// BufferBytes is the ring buffer capacity between the synthesis
	// pipeline and the device callback
	BufferBytes int
}

// DefaultPlaybackConfig returns a configuration matching the synthesizer
// output used by this tool (22.05kHz mono 16-bit PCM).
func DefaultPlaybackConfig() PlaybackConfig {
	return PlaybackConfig{
		SampleRate:  22050,
		Channels:    1,
		BufferBytes: 1 << 16,
	}
}

// Player streams 16-bit PCM to the default playback device. The device
// callback drains an internal ring buffer filled by Write.
type Player struct {
	config   PlaybackConfig
	ring     *RingBuffer
	device   *malgo.Device
	audioCtx *malgo.AllocatedContext
	mu       sync.Mutex
	closed   bool
}

// NewPlayer initializes and starts a playback device
func NewPlayer(config PlaybackConfig) (*Player, error) {
	if config.BufferBytes <= 0 {
		config.BufferBytes = 1 << 16
	}

	p := &Player{
		config: config,
		ring:   NewRingBuffer(config.BufferBytes),
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	p.audioCtx = audioCtx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSample, pInputSamples []byte, framecount uint32) {
		n := p.ring.Read(pOutputSample)
		// Zero-fill on underrun so the device plays silence, not garbage
		for i := n; i < len(pOutputSample); i++ {
			pOutputSample[i] = 0
		}
	}

	device, err := malgo.InitDevice(audioCtx.Context, deviceConfig, callbacks)
	if err != nil {
		audioCtx.Uninit()
		audioCtx.Free()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	p.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		audioCtx.Uninit()
		audioCtx.Free()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return p, nil
}

// Write queues PCM bytes for playback, blocking while the ring buffer is
// full. It returns early with ctx.Err() if the context is cancelled.
func (p *Player) Write(ctx context.Context, pcm []byte) error {
	for len(pcm) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := p.ring.Write(pcm)
		if err != nil || n == 0 {
			// Buffer full: wait for the device callback to drain it
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Millisecond):
			}
			continue
		}
		pcm = pcm[n:]
	}
	return nil
}

// Drain blocks until the ring buffer has been fully consumed by the device
// or the context is cancelled.
func (p *Player) Drain(ctx context.Context) error {
	for !p.ring.IsEmpty() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

// Close stops the device and releases the audio context. Safe to call more
// than once.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
	if p.audioCtx != nil {
		p.audioCtx.Uninit()
		p.audioCtx.Free()
		p.audioCtx = nil
	}

	p.ring.Reset()
	return nil
}
