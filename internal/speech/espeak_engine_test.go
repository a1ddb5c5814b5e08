package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// buildWAV assembles a minimal RIFF stream like the one espeak-ng writes
func buildWAV(sampleRate int, channels int, pcm []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

func TestStreamWAVDeliversPCMWithFormat(t *testing.T) {
	pcm := make([]byte, 10000)
	for i := range pcm {
		pcm[i] = byte(i)
	}
	wav := buildWAV(22050, 1, pcm)

	e := NewEspeakEngine("")
	var got []byte
	sampleRate := 0
	channels := 0

	err := e.streamWAV(context.Background(), bytes.NewReader(wav), func(chunk Chunk) error {
		got = append(got, chunk.Data...)
		sampleRate = chunk.SampleRate
		channels = chunk.Channels
		return nil
	})
	if err != nil {
		t.Fatalf("streamWAV() error = %v", err)
	}

	if !bytes.Equal(got, pcm) {
		t.Fatalf("streamed %d bytes, want %d matching bytes", len(got), len(pcm))
	}
	if sampleRate != 22050 {
		t.Fatalf("sample rate = %d, want 22050", sampleRate)
	}
	if channels != 1 {
		t.Fatalf("channels = %d, want 1", channels)
	}
}

func TestStreamWAVRejectsNonWAVOutput(t *testing.T) {
	e := NewEspeakEngine("")
	err := e.streamWAV(context.Background(), bytes.NewReader([]byte("definitely not audio")), func(Chunk) error {
		t.Fatalf("callback invoked for invalid input")
		return nil
	})
	if err == nil {
		t.Fatalf("streamWAV() error = nil, want error")
	}
}

func TestStreamWAVStopsOnCancelledContext(t *testing.T) {
	wav := buildWAV(22050, 1, make([]byte, 1<<16))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEspeakEngine("")
	err := e.streamWAV(ctx, bytes.NewReader(wav), func(Chunk) error { return nil })
	if err != context.Canceled {
		t.Fatalf("streamWAV() error = %v, want context.Canceled", err)
	}
}

// fakeSynthesizer writes a temp script that emits a WAV header and then
// streams audio indefinitely, standing in for a long synthesis.
func fakeSynthesizer(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake synthesizer script needs a POSIX shell")
	}

	dir := t.TempDir()
	wavPath := filepath.Join(dir, "out.wav")
	wav := buildWAV(22050, 1, bytes.Repeat([]byte{1}, 8192))
	if err := os.WriteFile(wavPath, wav, 0o644); err != nil {
		t.Fatalf("failed to write wav file: %v", err)
	}

	scriptPath := filepath.Join(dir, "fakespeak")
	script := "#!/bin/sh\ncat \"" + wavPath + "\"\nexec cat /dev/zero\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return scriptPath
}

func TestSynthesizeReturnsAfterChunkDeliveryFailure(t *testing.T) {
	e := NewEspeakEngine(fakeSynthesizer(t))
	sinkErr := errors.New("output device gone")

	done := make(chan error, 1)
	go func() {
		done <- e.Synthesize(context.Background(), SynthesizeRequest{Text: "hello"}, func(Chunk) error {
			return sinkErr
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, sinkErr) {
			t.Fatalf("Synthesize() error = %v, want %v", err, sinkErr)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Synthesize did not return after a chunk delivery failure")
	}
}

func TestSynthesizeStopsWhenContextCancelled(t *testing.T) {
	e := NewEspeakEngine(fakeSynthesizer(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.Synthesize(ctx, SynthesizeRequest{Text: "hello"}, func(Chunk) error {
			cancel()
			return nil
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Synthesize() error = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Synthesize did not return after context cancellation")
	}
}
