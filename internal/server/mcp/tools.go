package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type AskArgs struct {
	Query string `json:"query" jsonschema:"required,description=The question or instruction for the language model"`
}

type TranscribeArgs struct {
	Audio string `json:"audio" jsonschema:"required,description=Base64-encoded audio data (16kHz mono 16-bit PCM)"`
}

type SpeakArgs struct {
	Text string `json:"text" jsonschema:"required,description=The text to speak aloud"`
	Wait bool   `json:"wait,omitempty" jsonschema:"description=Block until playback finishes (default: false)"`
}

type StopSpeakingArgs struct{}

func (s *Server) handleAsk(ctx context.Context, req *sdk.CallToolRequest, args AskArgs) (*sdk.CallToolResult, any, error) {
	if args.Query == "" {
		return nil, nil, fmt.Errorf("query must not be empty")
	}

	reply, err := s.client.GenerateReply(ctx, args.Query)
	if err != nil {
		return nil, nil, fmt.Errorf("language model request failed: %w", err)
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: reply},
		},
	}, nil, nil
}

func (s *Server) handleTranscribeAudio(ctx context.Context, req *sdk.CallToolRequest, args TranscribeArgs) (*sdk.CallToolResult, any, error) {
	if s.recognizer == nil {
		return nil, nil, fmt.Errorf("no acoustic model configured")
	}

	audioData, err := base64.StdEncoding.DecodeString(args.Audio)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid base64 audio: %w", err)
	}
	if len(audioData) == 0 {
		return nil, nil, fmt.Errorf("audio must not be empty")
	}

	if _, err := s.recognizer.Accept(ctx, audioData); err != nil {
		return nil, nil, fmt.Errorf("transcription failed: %w", err)
	}
	result, err := s.recognizer.Flush()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get final result: %w", err)
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: result.Text},
			&sdk.TextContent{Text: fmt.Sprintf("Confidence: %.2f", result.Confidence)},
		},
	}, nil, nil
}

func (s *Server) handleSpeak(ctx context.Context, req *sdk.CallToolRequest, args SpeakArgs) (*sdk.CallToolResult, any, error) {
	if s.speaker == nil {
		return nil, nil, fmt.Errorf("no speech output configured")
	}
	if args.Text == "" {
		return nil, nil, fmt.Errorf("text must not be empty")
	}

	s.speaker.Speak(args.Text)
	status := "playback started"
	if args.Wait {
		s.speaker.Wait()
		status = "playback finished"
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: status},
		},
	}, nil, nil
}

func (s *Server) handleStopSpeaking(ctx context.Context, req *sdk.CallToolRequest, args StopSpeakingArgs) (*sdk.CallToolResult, any, error) {
	if s.speaker == nil {
		return nil, nil, fmt.Errorf("no speech output configured")
	}

	status := "nothing was playing"
	if s.speaker.IsSpeaking() {
		s.speaker.Stop()
		status = "playback stopped"
	}

	return &sdk.CallToolResult{
		Content: []sdk.Content{
			&sdk.TextContent{Text: status},
		},
	}, nil, nil
}
