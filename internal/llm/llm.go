package llm

import "context"

// Client generates a single assistant reply for a user query. The reply is
// a tagged result: callers that need to distinguish a real reply from a
// transport failure check the error; the interactive surface renders the
// error text inline as the assistant's answer.
type Client interface {
	GenerateReply(ctx context.Context, query string) (string, error)
}

// Params are the fixed sampling settings applied to every generation.
// They are configuration constants, not runtime-negotiated.
type Params struct {
	Model           string
	MaxOutputTokens int
	Temperature     float32
	TopP            float32
}

// DefaultParams returns the assistant's generation settings
func DefaultParams(model string) Params {
	return Params{
		Model:           model,
		MaxOutputTokens: 250,
		Temperature:     0.7,
		TopP:            0.9,
	}
}
