package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the generation model used when none is configured
const DefaultGeminiModel = "gemini-1.5-pro-latest"

// GeminiClient generates replies through the hosted Gemini API
type GeminiClient struct {
	client *genai.Client
	params Params
}

// NewGeminiClient builds a client authenticated with the given API key
func NewGeminiClient(ctx context.Context, apiKey string, params Params) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	if params.Model == "" {
		params.Model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{client: client, params: params}, nil
}

// GenerateReply sends the paragraph-constrained prompt and returns the
// cleaned reply text
func (g *GeminiClient) GenerateReply(ctx context.Context, query string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		g.params.Model,
		genai.Text(BuildPrompt(query)),
		&genai.GenerateContentConfig{
			MaxOutputTokens: int32(g.params.MaxOutputTokens),
			Temperature:     genai.Ptr(g.params.Temperature),
			TopP:            genai.Ptr(g.params.TopP),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return CleanResponse(text), nil
}
