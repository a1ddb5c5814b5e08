package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// DefaultRateWPM is the speaking rate used when a request does not set one
const DefaultRateWPM = 150

// EspeakEngine synthesizes speech by running the espeak-ng binary with
// --stdout and streaming the resulting WAV as PCM chunks. The child process
// is the engine resource: it lives for one Synthesize call and is killed by
// Close or by context cancellation.
type EspeakEngine struct {
	binary string

	mu     sync.Mutex
	cmd    *exec.Cmd
	closed bool
}

// NewEspeakEngine creates an engine backed by the espeak-ng binary.
// An empty binary path selects "espeak-ng".
func NewEspeakEngine(binary string) *EspeakEngine {
	if binary == "" {
		binary = "espeak-ng"
	}
	return &EspeakEngine{binary: binary}
}

// Synthesize runs espeak-ng and streams PCM chunks to the callback
func (e *EspeakEngine) Synthesize(ctx context.Context, req SynthesizeRequest, callback ChunkCallback) error {
	rate := req.RateWPM
	if rate <= 0 {
		rate = DefaultRateWPM
	}

	args := []string{"--stdout", "-s", strconv.Itoa(rate)}
	if req.Voice != "" {
		args = append(args, "-v", req.Voice)
	}
	args = append(args, "--", req.Text)

	cmd := exec.CommandContext(ctx, e.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open synthesizer pipe: %w", err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("engine is closed")
	}
	if e.cmd != nil {
		e.mu.Unlock()
		return fmt.Errorf("engine is already synthesizing")
	}
	e.cmd = cmd
	e.mu.Unlock()

	if err := cmd.Start(); err != nil {
		e.clearCmd()
		return fmt.Errorf("failed to start %s: %w", e.binary, err)
	}

	streamErr := e.streamWAV(ctx, stdout, callback)
	if streamErr != nil {
		// The child may still be writing into a full pipe; kill it and
		// drain stdout so Wait cannot block.
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := cmd.Wait()
	e.clearCmd()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if streamErr != nil {
		return streamErr
	}
	if waitErr != nil {
		return fmt.Errorf("%s exited with error: %w", e.binary, waitErr)
	}
	return nil
}

// ListVoices returns the voices this engine is known to carry. espeak-ng
// ships many more; these are the ones the assistant exposes.
func (e *EspeakEngine) ListVoices() []Voice {
	return []Voice{
		{ID: "en-us", Name: "English (America)", Language: "en-US"},
		{ID: "en-gb", Name: "English (Great Britain)", Language: "en-GB"},
	}
}

// Close kills any in-flight synthesis process. Idempotent.
func (e *EspeakEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.cmd != nil && e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	return nil
}

func (e *EspeakEngine) clearCmd() {
	e.mu.Lock()
	e.cmd = nil
	e.mu.Unlock()
}

// streamWAV parses the RIFF header espeak-ng writes and streams the data
// chunk as PCM. espeak-ng writes an unknown-length data chunk, so audio is
// read until EOF.
func (e *EspeakEngine) streamWAV(ctx context.Context, r io.Reader, callback ChunkCallback) error {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return fmt.Errorf("failed to read WAV header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return fmt.Errorf("synthesizer did not produce WAV output")
	}

	sampleRate := 22050
	channels := 1

	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return fmt.Errorf("failed to read WAV chunk header: %w", err)
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch id {
		case "fmt ":
			fmtChunk := make([]byte, size)
			if _, err := io.ReadFull(r, fmtChunk); err != nil {
				return fmt.Errorf("failed to read WAV format chunk: %w", err)
			}
			if len(fmtChunk) >= 8 {
				channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
				sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			}

		case "data":
			return e.streamPCM(ctx, r, sampleRate, channels, callback)

		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return fmt.Errorf("failed to skip WAV chunk %q: %w", id, err)
			}
		}
	}
}

func (e *EspeakEngine) streamPCM(ctx context.Context, r io.Reader, sampleRate, channels int, callback ChunkCallback) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			chunk := Chunk{
				Data:       append([]byte(nil), buf[:n]...),
				SampleRate: sampleRate,
				Channels:   channels,
			}
			if cbErr := callback(chunk); cbErr != nil {
				return cbErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read synthesized audio: %w", err)
		}
	}
}
