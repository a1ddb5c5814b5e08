package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hollis/parley/internal/app"
	"github.com/hollis/parley/internal/audio"
	"github.com/hollis/parley/internal/config"
	"github.com/hollis/parley/internal/listen"
	"github.com/hollis/parley/internal/llm"
	"github.com/hollis/parley/internal/models"
	"github.com/hollis/parley/internal/output"
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
	configFile     = flag.String("config", "", "Path to configuration file (default: ~/.parleyrc or /etc/parley/config.yaml)")
	modelName      = flag.String("model", "", "Speech recognition model name (default: "+models.DefaultName+")")
	downloadModel  = flag.String("download-model", "", "Download a recognition model by name and exit")
	listModels     = flag.Bool("list-models", false, "List known recognition models")
	listDownloaded = flag.Bool("list-downloaded", false, "List downloaded recognition models")
	listDevices    = flag.Bool("list-devices", false, "List audio capture devices")
	voiceMode      = flag.Bool("voice", false, "Start in voice input mode")
	hotkeyCombo    = flag.String("hotkey", "", "Push-to-talk key combination, e.g. ctrl+shift+space")
	transcriptFile = flag.String("transcript", "", "Write the conversation transcript to this file")
	showVersion    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Parley CLI v%s\n", Version)
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
	applyFlagOverrides(cfg)

	if *listDevices {
		if err := printAudioDevices(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *listModels {
		for _, m := range models.Available {
			fmt.Printf("%-35s %-6s %s\n", m.Name, m.Size, m.Description)
		}
		return
	}

	if *listDownloaded {
		downloaded, err := models.ListDownloaded()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, name := range downloaded {
			fmt.Println(name)
		}
		return
	}

	if *downloadModel != "" {
		err := models.Download(*downloadModel, func(downloaded, total int64) {
			fmt.Printf("\rDownloading %s: %d/%d bytes", *downloadModel, downloaded, total)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := output.DefaultConsoleOutput()

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

	controller, err := speech.NewController(speech.ControllerConfig{
		NewEngine: func() (speech.Engine, error) {
			return speech.NewEspeakEngine(cfg.Speech.Synthesizer), nil
		},
		Voice:   cfg.Speech.Voice,
		RateWPM: cfg.Speech.RateWPM,
		OnWarning: func(err error) {
			console.Warn(fmt.Sprintf("speech: %v", err))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create speech controller: %w", err)
	}

	listener, err := buildListener(cfg, console)
	if err != nil {
		return err
	}

	transcript, closeTranscript, err := buildTranscript(cfg)
	if err != nil {
		return err
	}
	if closeTranscript != nil {
		defer closeTranscript()
	}

	assistant := app.NewAssistant(client, listener, controller, transcript)
	if *voiceMode {
		if listener == nil {
			return fmt.Errorf("voice mode needs a downloaded recognition model (try --download-model %s)", models.DefaultName)
		}
		assistant.SetMode(app.ModeVoice)
	}

	repl := app.NewREPL(assistant, console, cfg.Listen.Hotkey)
	if err := repl.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	// Let any in-flight speech finish releasing before exit
	assistant.StopSpeaking()
	controller.Wait()
	return nil
}

// buildListener resolves the recognition model and wires the microphone
// pipeline. A missing model is not fatal; the assistant stays text-only.
func buildListener(cfg *config.Config, console *output.ConsoleOutput) (app.UtteranceCapturer, error) {
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
			console.Warn(fmt.Sprintf("model %s not downloaded; voice input disabled", name))
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

	listenCfg := listen.DefaultConfig()
	listenCfg.Timeout = secondsToDuration(cfg.Listen.TimeoutSeconds)
	listenCfg.PhraseTimeLimit = secondsToDuration(cfg.Listen.PhraseLimitSeconds)
	listenCfg.Calibration = secondsToDuration(cfg.Listen.CalibrationSeconds)

	// Resolve the configured device up front so a typo fails at startup
	// with the device list at hand, not mid-capture
	if cfg.Audio.Device != "" {
		device, err := audio.FindCaptureDevice(cfg.Audio.Device)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve audio device: %w", err)
		}
		listenCfg.Capture.DeviceID = device.ID
	}

	return listen.New(listenCfg, recognizer), nil
}

func buildTranscript(cfg *config.Config) (output.Transcript, func(), error) {
	path := cfg.Output.TranscriptFile
	if path == "" {
		return nil, nil, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open transcript file: %w", err)
	}

	var transcript output.Transcript
	if cfg.Output.TranscriptFormat == "json" {
		transcript = output.NewJSONTranscript(file)
	} else {
		transcript = output.NewPlainTranscript(file)
	}
	return transcript, func() { transcript.Close(); file.Close() }, nil
}

func printAudioDevices() error {
	capture, err := audio.ListCaptureDevices()
	if err != nil {
		return err
	}
	fmt.Println("Capture devices:")
	for _, d := range capture {
		fmt.Printf("  %s\n", d.String())
	}

	playback, err := audio.ListPlaybackDevices()
	if err != nil {
		return err
	}
	fmt.Println("Playback devices:")
	for _, d := range playback {
		fmt.Printf("  %s\n", d.String())
	}
	return nil
}

// applyFlagOverrides copies explicitly-set flags over the file config
func applyFlagOverrides(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hotkey":
			cfg.Listen.Hotkey = *hotkeyCombo
		case "transcript":
			cfg.Output.TranscriptFile = *transcriptFile
		}
	})
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
