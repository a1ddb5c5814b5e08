// Package mcp exposes the assistant to MCP clients over stdio: a tool to
// query the language model, one to transcribe audio, and a pair to drive
// speech playback.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hollis/parley/internal/llm"
	"github.com/hollis/parley/internal/transcribe"
)

// Config holds server identity settings
type Config struct {
	ServerName    string
	ServerVersion string
}

// Speaker is the playback surface the speak tools drive. Satisfied by
// *speech.Controller.
type Speaker interface {
	Speak(text string)
	Stop()
	IsSpeaking() bool
	Wait()
}

// Server hosts the assistant tools over the MCP stdio transport
type Server struct {
	config     Config
	mcpServer  *sdk.Server
	client     llm.Client
	recognizer transcribe.Recognizer
	speaker    Speaker
}

// NewServer creates the MCP server. recognizer and speaker may be nil; the
// corresponding tools then report an error when called.
func NewServer(cfg Config, client llm.Client, recognizer transcribe.Recognizer, speaker Speaker) *Server {
	s := &Server{
		config:     cfg,
		client:     client,
		recognizer: recognizer,
		speaker:    speaker,
	}

	s.mcpServer = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}, nil)

	s.registerTools()

	return s
}

// Start serves MCP requests on stdin/stdout until the client disconnects
func (s *Server) Start(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdk.StdioTransport{})
}

// Stop halts any active speech playback
func (s *Server) Stop() error {
	if s.speaker != nil {
		s.speaker.Stop()
		s.speaker.Wait()
	}
	if s.recognizer != nil {
		return s.recognizer.Close()
	}
	return nil
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "ask",
		Description: "Send a query to the language model and return its reply",
	}, s.handleAsk)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "transcribe_audio",
		Description: "Transcribe base64-encoded 16kHz mono 16-bit PCM audio",
	}, s.handleTranscribeAudio)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "speak",
		Description: "Speak the given text aloud on the server's audio output",
	}, s.handleSpeak)

	sdk.AddTool(s.mcpServer, &sdk.Tool{
		Name:        "stop_speaking",
		Description: "Interrupt any speech currently playing",
	}, s.handleStopSpeaking)
}
