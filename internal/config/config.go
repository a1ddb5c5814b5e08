package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. API keys are taken from
// the environment (GEMINI_API_KEY, OPENAI_API_KEY), never from the file.
type Config struct {
	// LLM settings
	LLM struct {
		Provider        string  `yaml:"provider"` // "gemini" or "openai"
		Model           string  `yaml:"model"`
		FallbackModel   string  `yaml:"fallback_model"`
		MaxOutputTokens int     `yaml:"max_output_tokens"`
		Temperature     float32 `yaml:"temperature"`
		TopP            float32 `yaml:"top_p"`
	} `yaml:"llm"`

	// Listen settings (voice input)
	Listen struct {
		TimeoutSeconds     float64 `yaml:"timeout_seconds"`
		PhraseLimitSeconds float64 `yaml:"phrase_limit_seconds"`
		CalibrationSeconds float64 `yaml:"calibration_seconds"`
		ModelPath          string  `yaml:"model_path"`
		Hotkey             string  `yaml:"hotkey"`
	} `yaml:"listen"`

	// Speech settings (voice output)
	Speech struct {
		RateWPM     int    `yaml:"rate_wpm"`
		Voice       string `yaml:"voice"`
		Synthesizer string `yaml:"synthesizer"`
	} `yaml:"speech"`

	// Audio settings
	Audio struct {
		Device string `yaml:"device"`
	} `yaml:"audio"`

	// Output settings
	Output struct {
		TranscriptFormat string `yaml:"transcript_format"`
		TranscriptFile   string `yaml:"transcript_file"`
	} `yaml:"output"`

	// Server settings
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.LLM.Provider = "gemini"
	cfg.LLM.Model = ""
	cfg.LLM.FallbackModel = ""
	cfg.LLM.MaxOutputTokens = 250
	cfg.LLM.Temperature = 0.7
	cfg.LLM.TopP = 0.9

	cfg.Listen.TimeoutSeconds = 5
	cfg.Listen.PhraseLimitSeconds = 35
	cfg.Listen.CalibrationSeconds = 1
	cfg.Listen.ModelPath = ""
	cfg.Listen.Hotkey = ""

	cfg.Speech.RateWPM = 150
	cfg.Speech.Voice = ""
	cfg.Speech.Synthesizer = ""

	cfg.Audio.Device = ""

	cfg.Output.TranscriptFormat = "text"
	cfg.Output.TranscriptFile = ""

	cfg.Server.Port = 50051
	cfg.Server.Host = "localhost"

	return cfg
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithFallback attempts to load configuration from multiple locations
// Priority: explicit path > ~/.parleyrc > /etc/parley/config.yaml
func LoadWithFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(homeDir, ".parleyrc")
		if _, err := os.Stat(userConfigPath); err == nil {
			cfg, err := Load(userConfigPath)
			if err == nil {
				return cfg, nil
			}
		}
	}

	systemConfigPath := "/etc/parley/config.yaml"
	if _, err := os.Stat(systemConfigPath); err == nil {
		cfg, err := Load(systemConfigPath)
		if err == nil {
			return cfg, nil
		}
	}

	// No config file found, return defaults
	return DefaultConfig(), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
