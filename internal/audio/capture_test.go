package audio

import (
	"testing"
	"time"
)

func TestCapturerStopWithoutStart(t *testing.T) {
	c, err := NewMalgoCapturer(DefaultCaptureConfig())
	if err != nil {
		t.Fatalf("NewMalgoCapturer returned error: %v", err)
	}

	// Stop must tear down and return even when called repeatedly; the
	// watcher goroutine path funnels through the same teardown.
	done := make(chan struct{})
	go func() {
		_ = c.Stop()
		_ = c.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}

	if c.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	if _, ok := <-c.Samples(); ok {
		t.Error("samples channel not closed after Stop")
	}
	if _, ok := <-c.Errors(); ok {
		t.Error("errors channel not closed after Stop")
	}
}

func TestDeviceMatches(t *testing.T) {
	cases := []struct {
		id       string
		name     string
		selector string
		want     bool
	}{
		{"7b2d", "USB Microphone", "7b2d", true},
		{"7b2d", "USB Microphone", "usb microphone", true},
		{"7b2d", "USB Microphone", "USB Microphone", true},
		{"7b2d", "USB Microphone", "7B2D", false}, // ids compare exactly
		{"7b2d", "USB Microphone", "built-in", false},
	}

	for _, tc := range cases {
		if got := deviceMatches(tc.id, tc.name, tc.selector); got != tc.want {
			t.Errorf("deviceMatches(%q, %q, %q) = %v, want %v", tc.id, tc.name, tc.selector, got, tc.want)
		}
	}
}
