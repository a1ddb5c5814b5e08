package llm

import (
	"context"
	"fmt"
	"os"
)

// Environment variables holding the provider credentials
const (
	GeminiKeyEnv = "GEMINI_API_KEY"
	OpenAIKeyEnv = "OPENAI_API_KEY"
)

// BuildFromEnv wires the configured provider as the primary client and, when
// a key for the other provider is present, adds it as the sticky fallback.
// fallbackModel names the model used by the fallback provider; empty selects
// that provider's default.
func BuildFromEnv(ctx context.Context, provider string, params Params, fallbackModel string) (Client, error) {
	geminiKey := os.Getenv(GeminiKeyEnv)
	openaiKey := os.Getenv(OpenAIKeyEnv)

	switch provider {
	case "", "gemini":
		if geminiKey == "" {
			return nil, fmt.Errorf("%s is not set", GeminiKeyEnv)
		}
		primary, err := NewGeminiClient(ctx, geminiKey, params)
		if err != nil {
			return nil, err
		}

		var fallback Client
		if openaiKey != "" {
			fallbackParams := params
			fallbackParams.Model = fallbackModel
			fallback, err = NewOpenAIClient(openaiKey, fallbackParams)
			if err != nil {
				return nil, err
			}
		}
		return NewFailoverClient(primary, fallback), nil

	case "openai":
		if openaiKey == "" {
			return nil, fmt.Errorf("%s is not set", OpenAIKeyEnv)
		}
		primary, err := NewOpenAIClient(openaiKey, params)
		if err != nil {
			return nil, err
		}

		var fallback Client
		if geminiKey != "" {
			fallbackParams := params
			fallbackParams.Model = fallbackModel
			fallback, err = NewGeminiClient(ctx, geminiKey, fallbackParams)
			if err != nil {
				return nil, err
			}
		}
		return NewFailoverClient(primary, fallback), nil

	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
