// Package config loads the simforge configuration file (YAML or JSON) and
// turns it into wired pipeline pieces. Everything has a default; a missing
// config file means "run with defaults against OpenRouter".
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"simforge/internal/artifact"
	"simforge/internal/pipeline"
	"simforge/internal/provider"
)

// Log holds logging settings.
type Log struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
}

// Config is the full simforge configuration.
type Config struct {
	// Provider selects the completion backend: "openrouter" or "anthropic".
	Provider string `yaml:"provider" json:"provider"`
	// Model overrides the provider's default model for every stage that does
	// not name its own.
	Model    string `yaml:"model" json:"model"`
	APIKey   string `yaml:"api_key" json:"api_key"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	OutputRoot string `yaml:"output_root" json:"output_root"`
	HistoryDB  string `yaml:"history_db" json:"history_db"`

	// Approval thresholds applied to the review verdict. Zero means "use the
	// default" (floor 3, bar 4); a literal zero threshold would approve any
	// scored run, which is never what a config author wants.
	ScoreFloor float64 `yaml:"score_floor" json:"score_floor"`
	ScoreBar   float64 `yaml:"score_bar" json:"score_bar"`

	Log Log `yaml:"log" json:"log"`

	// Stages overrides per-stage generation settings, keyed by stage name.
	Stages map[string]pipeline.Generation `yaml:"stages" json:"stages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Provider:   "openrouter",
		OutputRoot: artifact.DefaultRoot,
		HistoryDB:  "simforge.db",
		ScoreFloor: pipeline.DefaultScoreFloor,
		ScoreBar:   pipeline.DefaultScoreBar,
		Log:        Log{Level: "info", Format: "text"},
	}
}

// LoadFromPath reads a config file and parses it. Format is detected by
// extension (.yaml/.yml vs .json) or by content when the extension is unknown.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config bytes. ext is the format hint; empty means detect from
// content. Unset fields keep their defaults.
func Load(data []byte, ext string) (*Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}

	switch ext {
	case ".yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config json: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.OutputRoot == "" {
		c.OutputRoot = d.OutputRoot
	}
	if c.HistoryDB == "" {
		c.HistoryDB = d.HistoryDB
	}
	if c.ScoreFloor == 0 {
		c.ScoreFloor = d.ScoreFloor
	}
	if c.ScoreBar == 0 {
		c.ScoreBar = d.ScoreBar
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// NewProvider builds the completion backend named by the config. API keys
// fall back to the conventional environment variables.
func (c *Config) NewProvider() (provider.Provider, error) {
	switch strings.ToLower(c.Provider) {
	case "", "openrouter":
		key := c.APIKey
		if key == "" {
			key = os.Getenv("OPENROUTER_API_KEY")
		}
		return provider.NewOpenRouter(provider.OpenRouterConfig{
			APIKey:   key,
			Endpoint: c.Endpoint,
			Model:    c.Model,
		}), nil
	case "anthropic":
		key := c.APIKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		return provider.NewAnthropic(provider.AnthropicConfig{
			APIKey:   key,
			Endpoint: c.Endpoint,
			Model:    c.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}
}

// Generations merges per-stage overrides over the pipeline defaults. The
// config-level Model applies to any stage without its own.
func (c *Config) Generations() map[string]pipeline.Generation {
	gens := pipeline.DefaultGenerations()
	for stage, override := range c.Stages {
		gen, ok := gens[stage]
		if !ok {
			gen = pipeline.Generation{}
		}
		if override.Model != "" {
			gen.Model = override.Model
		}
		if override.Temperature != 0 {
			gen.Temperature = override.Temperature
		}
		if override.MaxTokens != 0 {
			gen.MaxTokens = override.MaxTokens
		}
		gens[stage] = gen
	}
	if c.Model != "" {
		for stage, gen := range gens {
			if gen.Model == "" {
				gen.Model = c.Model
				gens[stage] = gen
			}
		}
	}
	return gens
}

// Rule returns the approval rule built from the configured thresholds.
func (c *Config) Rule() pipeline.ApprovalRule {
	return pipeline.MinimumScores(c.ScoreFloor, c.ScoreBar)
}
