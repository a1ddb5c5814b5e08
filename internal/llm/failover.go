package llm

import (
	"context"
	"sync/atomic"
)

// failoverClient prefers the primary backend and switches to fallback when
// a primary call fails. Once fallback succeeds it stays active until the
// fallback itself fails; then primary is retried.
type failoverClient struct {
	primary        Client
	fallback       Client
	fallbackActive atomic.Bool
}

// NewFailoverClient wraps a primary and fallback backend. If fallback is
// nil, primary is returned unchanged.
func NewFailoverClient(primary, fallback Client) Client {
	if fallback == nil {
		return primary
	}
	return &failoverClient{primary: primary, fallback: fallback}
}

func (c *failoverClient) GenerateReply(ctx context.Context, query string) (string, error) {
	if c.fallbackActive.Load() {
		reply, err := c.fallback.GenerateReply(ctx, query)
		if err == nil {
			return reply, nil
		}
		c.fallbackActive.Store(false)
		return c.primary.GenerateReply(ctx, query)
	}

	reply, err := c.primary.GenerateReply(ctx, query)
	if err == nil {
		return reply, nil
	}

	fbReply, fbErr := c.fallback.GenerateReply(ctx, query)
	if fbErr != nil {
		// Report the primary failure; it is the configured backend
		return "", err
	}
	c.fallbackActive.Store(true)
	return fbReply, nil
}
