package audio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

// MalgoCapturer implements the Capturer interface using malgo
type MalgoCapturer struct {
	config   CaptureConfig
	device   *malgo.Device
	audioCtx *malgo.AllocatedContext
	samples  chan Sample
	errors   chan error
	running  bool
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMalgoCapturer creates a new malgo-based audio capturer
func NewMalgoCapturer(config CaptureConfig) (*MalgoCapturer, error) {
	bufSize := config.SampleBufferSize
	if bufSize <= 0 {
		bufSize = 10
	}
	return &MalgoCapturer{
		config:   config,
		samples:  make(chan Sample, bufSize),
		errors:   make(chan error, 10),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins audio capture
func (m *MalgoCapturer) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("capturer is already running")
	}
	m.running = true
	m.mu.Unlock()

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		m.setStopped()
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	m.audioCtx = audioCtx

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = m.config.Channels
	deviceConfig.SampleRate = m.config.SampleRate
	deviceConfig.PeriodSizeInFrames = m.config.BufferFrames

	if m.config.DeviceID != "" {
		id, err := resolveCaptureDevice(audioCtx, m.config.DeviceID)
		if err != nil {
			audioCtx.Uninit()
			audioCtx.Free()
			m.audioCtx = nil
			m.setStopped()
			return err
		}
		deviceConfig.Capture.DeviceID = id.Pointer()
	}

	var callbacks malgo.DeviceCallbacks
	callbacks.Data = func(pOutputSample, pInputSamples []byte, framecount uint32) {
		// Copy the input samples to avoid data races
		dataCopy := make([]byte, len(pInputSamples))
		copy(dataCopy, pInputSamples)

		sample := Sample{
			Data:      dataCopy,
			Timestamp: time.Now(),
			Frames:    framecount,
		}

		select {
		case m.samples <- sample:
		default:
			// Channel is full, surface overflow instead of blocking the callback
			select {
			case m.errors <- fmt.Errorf("sample buffer overflow, dropping frames"):
			default:
			}
		}
	}

	device, err := malgo.InitDevice(m.audioCtx.Context, deviceConfig, callbacks)
	if err != nil {
		m.audioCtx.Uninit()
		m.audioCtx.Free()
		m.setStopped()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		m.audioCtx.Uninit()
		m.audioCtx.Free()
		m.setStopped()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = m.Stop()
		case <-m.stopChan:
		}
	}()

	return nil
}

// Stop stops audio capture and closes the sample and error channels.
// Idempotent and safe to call from the context watcher; teardown runs
// exactly once and never waits on the goroutine that triggered it.
func (m *MalgoCapturer) Stop() error {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()

		close(m.stopChan)

		// Uninit stops the device first, so no callback can fire after
		// the channels close below
		if m.device != nil {
			m.device.Uninit()
		}

		if m.audioCtx != nil {
			m.audioCtx.Uninit()
			m.audioCtx.Free()
		}

		close(m.samples)
		close(m.errors)
	})

	return nil
}

// Samples returns a channel that receives captured audio
func (m *MalgoCapturer) Samples() <-chan Sample {
	return m.samples
}

// Errors returns a channel that receives capture errors
func (m *MalgoCapturer) Errors() <-chan error {
	return m.errors
}

// IsRunning returns true if capture is currently active
func (m *MalgoCapturer) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// resolveCaptureDevice matches the configured selector against the devices
// visible to ctx. The returned DeviceID is a copy, safe to hand to malgo.
func resolveCaptureDevice(ctx *malgo.AllocatedContext, selector string) (*malgo.DeviceID, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate capture devices: %w", err)
	}

	for i := range infos {
		name := strings.TrimRight(infos[i].Name(), "\x00")
		if deviceMatches(infos[i].ID.String(), name, selector) {
			id := infos[i].ID
			return &id, nil
		}
	}

	return nil, fmt.Errorf("capture device %q not found", selector)
}

func (m *MalgoCapturer) setStopped() {
	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
}
