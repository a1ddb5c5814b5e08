package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hollis/parley/internal/config"
	"github.com/hollis/parley/internal/llm"
	"github.com/hollis/parley/internal/models"
	mcpserver "github.com/hollis/parley/internal/server/mcp"
	"github.com/hollis/parley/internal/speech"
	"github.com/hollis/parley/internal/transcribe"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	modelName   = flag.String("model", "", "Speech recognition model name (default: "+models.DefaultName+")")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley MCP v%s\n", Version)
		fmt.Printf("  Commit:  %s\n", GitCommit)
		fmt.Printf("  Branch:  %s\n", GitBranch)
		fmt.Printf("  Built:   %s\n", BuildTime)
		os.Exit(0)
	}

	cfg, err := config.LoadWithFallback(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	params := llm.Params{
		Model:           cfg.LLM.Model,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
		TopP:            cfg.LLM.TopP,
	}
	client, err := llm.BuildFromEnv(ctx, cfg.LLM.Provider, params, cfg.LLM.FallbackModel)
	if err != nil {
		return fmt.Errorf("failed to build language model client: %w", err)
	}

	recognizer := loadRecognizer(cfg)

	controller, err := speech.NewController(speech.ControllerConfig{
		NewEngine: func() (speech.Engine, error) {
			return speech.NewEspeakEngine(cfg.Speech.Synthesizer), nil
		},
		Voice:   cfg.Speech.Voice,
		RateWPM: cfg.Speech.RateWPM,
	})
	if err != nil {
		return fmt.Errorf("failed to create speech controller: %w", err)
	}

	server := mcpserver.NewServer(mcpserver.Config{
		ServerName:    "parley",
		ServerVersion: Version,
	}, client, recognizer, controller)
	defer server.Stop()

	return server.Start(ctx)
}

// loadRecognizer best-effort loads the acoustic model; the transcription
// tool reports an error when it is unavailable.
func loadRecognizer(cfg *config.Config) transcribe.Recognizer {
	modelPath := cfg.Listen.ModelPath
	if modelPath == "" {
		name := *modelName
		if name == "" {
			name = models.DefaultName
		}
		downloaded, err := models.IsDownloaded(name)
		if err != nil || !downloaded {
			return nil
		}
		modelPath, err = models.Path(name)
		if err != nil {
			return nil
		}
	}

	recognizer, err := transcribe.NewVosk(transcribe.DefaultConfig(modelPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load recognition model: %v\n", err)
		return nil
	}
	return recognizer
}
