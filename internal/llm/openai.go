package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient generates replies through the OpenAI chat completion API.
// It is the fallback backend when Gemini is unavailable.
type OpenAIClient struct {
	client *openai.Client
	params Params
}

// NewOpenAIClient builds a client authenticated with the given API key
func NewOpenAIClient(apiKey string, params Params) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}
	if params.Model == "" {
		params.Model = openai.GPT4oMini
	}

	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		params: params,
	}, nil
}

// GenerateReply sends the paragraph-constrained prompt and returns the
// cleaned reply text
func (c *OpenAIClient) GenerateReply(ctx context.Context, query string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.params.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: paragraphInstruction},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   c.params.MaxOutputTokens,
		Temperature: c.params.Temperature,
		TopP:        c.params.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("openai generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return CleanResponse(resp.Choices[0].Message.Content), nil
}
