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
	grpcserver "github.com/hollis/parley/internal/server/grpc"
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
	port        = flag.Int("port", 0, "gRPC server port (overrides config)")
	modelName   = flag.String("model", "", "Speech recognition model name (default: "+models.DefaultName+")")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley gRPC Server v%s\n", Version)
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
	if *port != 0 {
		cfg.Server.Port = *port
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

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

	recognizer, err := buildRecognizer(cfg)
	if err != nil {
		return err
	}
	if recognizer != nil {
		defer recognizer.Close()
	}

	service := grpcserver.NewAssistantService(client, recognizer, func() (speech.Engine, error) {
		return speech.NewEspeakEngine(cfg.Speech.Synthesizer), nil
	})
	server := grpcserver.NewServer(grpcserver.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, service)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		server.Stop()
	}()

	fmt.Printf("Parley gRPC server v%s listening on %s:%d\n", Version, cfg.Server.Host, cfg.Server.Port)
	return server.Start()
}

// buildRecognizer loads the configured acoustic model. A missing model is
// not fatal; the Transcribe RPC then reports Unimplemented.
func buildRecognizer(cfg *config.Config) (transcribe.Recognizer, error) {
	modelPath := cfg.Listen.ModelPath
	if modelPath == "" {
		name := *modelName
		if name == "" {
			name = models.DefaultName
		}
		downloaded, err := models.IsDownloaded(name)
		if err != nil {
			return nil, fmt.Errorf("failed to check model %s: %w", name, err)
		}
		if !downloaded {
			fmt.Fprintf(os.Stderr, "Warning: model %s not downloaded; transcription disabled\n", name)
			return nil, nil
		}
		modelPath, err = models.Path(name)
		if err != nil {
			return nil, err
		}
	}

	recognizer, err := transcribe.NewVosk(transcribe.DefaultConfig(modelPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load recognition model: %w", err)
	}
	return recognizer, nil
}
