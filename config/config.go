// Package config loads application configuration: defaults, overridden
// by an optional YAML file, overridden by environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// Config holds application configuration.
type Config struct {
	Mode string `yaml:"mode" env:"COGNIDOC_MODE"`

	Server struct {
		Addr string `yaml:"addr" env:"COGNIDOC_ADDR"`
	} `yaml:"server"`

	Database struct {
		ConnectionString string `yaml:"connection_string" env:"DATABASE_URL"`
	} `yaml:"database"`

	Embedding struct {
		Provider  string `yaml:"provider" env:"COGNIDOC_EMBEDDING_PROVIDER"` // ollama, openai or hash
		BaseURL   string `yaml:"base_url" env:"COGNIDOC_EMBEDDING_BASE_URL"`
		Model     string `yaml:"model" env:"COGNIDOC_EMBEDDING_MODEL"`
		Dimension int    `yaml:"dimension" env:"COGNIDOC_EMBEDDING_DIMENSION"`
		APIKey    string `yaml:"-" env:"OPENAI_API_KEY"`
	} `yaml:"embedding"`

	Generation struct {
		Provider string `yaml:"provider" env:"COGNIDOC_GENERATION_PROVIDER"` // ollama, openai or none
		BaseURL  string `yaml:"base_url" env:"COGNIDOC_GENERATION_BASE_URL"`
		Model    string `yaml:"model" env:"COGNIDOC_GENERATION_MODEL"`
		APIKey   string `yaml:"-" env:"OPENAI_API_KEY"`
	} `yaml:"generation"`

	Processing struct {
		ChunkSize     int     `yaml:"chunk_size" env:"COGNIDOC_CHUNK_SIZE"`
		ChunkOverlap  int     `yaml:"chunk_overlap" env:"COGNIDOC_CHUNK_OVERLAP"`
		TopK          int     `yaml:"top_k" env:"COGNIDOC_TOP_K"`
		MinScore      float64 `yaml:"min_score" env:"COGNIDOC_MIN_SCORE"`
		EmbedAttempts int     `yaml:"embed_attempts" env:"COGNIDOC_EMBED_ATTEMPTS"`
	} `yaml:"processing"`
}

// Default returns the demo-mode defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.Mode = "demo"
	cfg.Server.Addr = ":8000"
	cfg.Embedding.Provider = "hash"
	cfg.Embedding.Dimension = 256
	cfg.Generation.Provider = "none"
	cfg.Processing.ChunkSize = 1000
	cfg.Processing.ChunkOverlap = 200
	cfg.Processing.TopK = 3
	cfg.Processing.MinScore = 0.7
	cfg.Processing.EmbedAttempts = 3
	return cfg
}

// Load builds the configuration from defaults, the YAML file at path
// (skipped when missing) and environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration before anything is constructed.
// Misconfiguration is fatal at startup, never a per-request failure.
func (c *Config) Validate() error {
	switch c.Mode {
	case "demo", "production":
	default:
		return &domain.ConfigurationError{Field: "mode", Reason: "must be demo or production"}
	}

	if c.Mode == "production" && c.Database.ConnectionString == "" {
		return &domain.ConfigurationError{Field: "database.connection_string", Reason: "required in production mode"}
	}

	switch c.Embedding.Provider {
	case "hash":
	case "ollama":
		if c.Embedding.Dimension <= 0 {
			return &domain.ConfigurationError{Field: "embedding.dimension", Reason: "required for the ollama provider"}
		}
	case "openai":
		if c.Embedding.Dimension <= 0 {
			return &domain.ConfigurationError{Field: "embedding.dimension", Reason: "required for the openai provider"}
		}
		if c.Embedding.APIKey == "" {
			return &domain.ConfigurationError{Field: "embedding", Reason: "OPENAI_API_KEY is not set"}
		}
	default:
		return &domain.ConfigurationError{Field: "embedding.provider", Reason: "must be ollama, openai or hash"}
	}

	switch c.Generation.Provider {
	case "none":
	case "ollama":
		if c.Generation.Model == "" {
			return &domain.ConfigurationError{Field: "generation.model", Reason: "required for the ollama provider"}
		}
	case "openai":
		if c.Generation.Model == "" {
			return &domain.ConfigurationError{Field: "generation.model", Reason: "required for the openai provider"}
		}
		if c.Generation.APIKey == "" {
			return &domain.ConfigurationError{Field: "generation", Reason: "OPENAI_API_KEY is not set"}
		}
	default:
		return &domain.ConfigurationError{Field: "generation.provider", Reason: "must be ollama, openai or none"}
	}

	if c.Processing.ChunkOverlap >= c.Processing.ChunkSize && c.Processing.ChunkSize > 0 {
		return &domain.ConfigurationError{Field: "processing.chunk_overlap", Reason: "must be smaller than chunk_size"}
	}
	return nil
}
