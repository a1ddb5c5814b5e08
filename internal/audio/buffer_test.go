package audio

import (
	"bytes"
	"testing"
)

func TestRingBufferWriteThenRead(t *testing.T) {
	rb := NewRingBuffer(16)

	n, err := rb.Write([]byte("hello"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != 5 {
		t.Fatalf("Write wrote %d bytes, want 5", n)
	}
	if rb.Available() != 5 {
		t.Errorf("Available = %d, want 5", rb.Available())
	}

	out := make([]byte, 8)
	read := rb.Read(out)
	if read != 5 || !bytes.Equal(out[:read], []byte("hello")) {
		t.Errorf("Read = %d %q, want 5 %q", read, out[:read], "hello")
	}
	if !rb.IsEmpty() {
		t.Error("buffer not empty after draining")
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	rb := NewRingBuffer(8)

	if _, err := rb.Write([]byte("abcdef")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	out := make([]byte, 4)
	rb.Read(out)

	// Write crosses the end of the backing slice
	if _, err := rb.Write([]byte("ghij")); err != nil {
		t.Fatalf("wrapped Write returned error: %v", err)
	}

	got := make([]byte, 8)
	n := rb.Read(got)
	if !bytes.Equal(got[:n], []byte("efghij")) {
		t.Errorf("Read = %q, want %q", got[:n], "efghij")
	}
}

func TestRingBufferFull(t *testing.T) {
	rb := NewRingBuffer(4)

	n, err := rb.Write([]byte("abcde"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != 4 {
		t.Fatalf("Write wrote %d bytes into a 4-byte buffer, want 4", n)
	}
	if rb.Free() != 0 {
		t.Errorf("Free = %d, want 0", rb.Free())
	}

	if _, err := rb.Write([]byte("x")); err == nil {
		t.Error("Write into a full buffer did not fail")
	}
}

func TestRingBufferReset(t *testing.T) {
	rb := NewRingBuffer(8)

	if _, err := rb.Write([]byte("data")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	rb.Reset()

	if !rb.IsEmpty() || rb.Available() != 0 {
		t.Errorf("Reset left %d bytes available", rb.Available())
	}
	if _, err := rb.Write([]byte("fresh")); err != nil {
		t.Errorf("Write after Reset returned error: %v", err)
	}
}
