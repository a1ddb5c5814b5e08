package llm

import (
	"context"
	"errors"
	"testing"
)

type scriptedClient struct {
	reply string
	err   error
	calls int
}

func (s *scriptedClient) GenerateReply(ctx context.Context, query string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestFailoverPrefersPrimary(t *testing.T) {
	primary := &scriptedClient{reply: "from primary"}
	fallback := &scriptedClient{reply: "from fallback"}
	c := NewFailoverClient(primary, fallback)

	got, err := c.GenerateReply(context.Background(), "q")
	if err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if got != "from primary" {
		t.Fatalf("GenerateReply() = %q, want %q", got, "from primary")
	}
	if fallback.calls != 0 {
		t.Fatalf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestFailoverSwitchesAndSticks(t *testing.T) {
	primary := &scriptedClient{err: errors.New("primary down")}
	fallback := &scriptedClient{reply: "from fallback"}
	c := NewFailoverClient(primary, fallback)

	got, err := c.GenerateReply(context.Background(), "q")
	if err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if got != "from fallback" {
		t.Fatalf("GenerateReply() = %q, want %q", got, "from fallback")
	}

	// Fallback stays active: primary is not retried on the next call
	if _, err := c.GenerateReply(context.Background(), "q"); err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if primary.calls != 1 {
		t.Fatalf("primary called %d times, want 1", primary.calls)
	}
	if fallback.calls != 2 {
		t.Fatalf("fallback called %d times, want 2", fallback.calls)
	}
}

func TestFailoverReportsPrimaryErrorWhenBothFail(t *testing.T) {
	primaryErr := errors.New("primary down")
	primary := &scriptedClient{err: primaryErr}
	fallback := &scriptedClient{err: errors.New("fallback down")}
	c := NewFailoverClient(primary, fallback)

	_, err := c.GenerateReply(context.Background(), "q")
	if !errors.Is(err, primaryErr) {
		t.Fatalf("GenerateReply() error = %v, want %v", err, primaryErr)
	}
}

func TestFailoverWithoutFallbackReturnsPrimary(t *testing.T) {
	primary := &scriptedClient{reply: "solo"}
	c := NewFailoverClient(primary, nil)

	if c != Client(primary) {
		t.Fatalf("NewFailoverClient(primary, nil) did not return primary unchanged")
	}
}
