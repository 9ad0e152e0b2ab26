// Package config provides configuration loading for book2md.
// Supports an optional YAML file, a .env file, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spherical/book2md/internal/domain"
)

const (
	// DefaultModel is used when GEMINI_MODEL is unset.
	DefaultModel = "gemini-2.0-flash-exp"

	// PlaceholderAPIKey is the value shipped in .env.example.
	PlaceholderAPIKey = "your_api_key_here"
)

// Config holds all configuration for a conversion run.
type Config struct {
	Gemini        GeminiConfig        `yaml:"gemini"`
	Paths         PathsConfig         `yaml:"paths"`
	Conversion    ConversionConfig    `yaml:"conversion"`
	Retry         RetryConfig         `yaml:"retry"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GeminiConfig holds model credentials and selection.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// PathsConfig holds the filesystem layout.
type PathsConfig struct {
	InputDir     string `yaml:"input_dir"`
	ProcessedDir string `yaml:"processed_dir"` // raster scratch root, one subdir per document
	OutputDir    string `yaml:"output_dir"`
}

// ConversionConfig holds rasterization and page selection settings.
type ConversionConfig struct {
	DPI      float64 `yaml:"dpi"`
	MaxPages int     `yaml:"max_pages"` // 0 means every page
}

// RetryConfig controls how a single page's model call is retried.
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	PageTimeout    time.Duration `yaml:"page_timeout"` // per attempt; 0 disables
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ConfigError("read config file", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, domain.ConfigError("parse config file", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfig returns the conventional data/ layout and a 300 DPI raster.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model: DefaultModel,
		},
		Paths: PathsConfig{
			InputDir:     filepath.Join("data", "raw"),
			ProcessedDir: filepath.Join("data", "processed"),
			OutputDir:    filepath.Join("data", "output"),
		},
		Conversion: ConversionConfig{
			DPI: 300,
		},
		Retry: RetryConfig{
			MaxRetries:     0,
			InitialBackoff: 1 * time.Second,
			MaxBackoff:     30 * time.Second,
			PageTimeout:    5 * time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors. Credentials are not checked
// here; see CheckCredentials.
func (c *Config) Validate() error {
	if c.Conversion.DPI <= 0 || c.Conversion.DPI > domain.MaxDPI {
		return domain.ValidationError(fmt.Sprintf("dpi must be between 1 and %d, got %v", domain.MaxDPI, c.Conversion.DPI), nil)
	}
	if c.Conversion.MaxPages < 0 {
		return domain.ValidationError(fmt.Sprintf("max pages must not be negative, got %d", c.Conversion.MaxPages), nil)
	}
	if c.Retry.MaxRetries < 0 {
		return domain.ValidationError(fmt.Sprintf("max retries must not be negative, got %d", c.Retry.MaxRetries), nil)
	}
	if c.Retry.PageTimeout < 0 {
		return domain.ValidationError("page timeout must not be negative", nil)
	}
	if c.Paths.ProcessedDir == "" || c.Paths.OutputDir == "" {
		return domain.ValidationError("processed and output directories are required", nil)
	}
	if f := c.Observability.LogFormat; f != "console" && f != "json" {
		return domain.ValidationError(fmt.Sprintf("invalid log format: %s", f), nil)
	}
	return nil
}

// CheckCredentials fails when the API key is absent or still the placeholder.
func (g GeminiConfig) CheckCredentials() error {
	key := strings.TrimSpace(g.APIKey)
	if key == "" || key == PlaceholderAPIKey {
		return domain.ConfigError("GEMINI_API_KEY not set. Please copy .env.example to .env and add your API key.", nil)
	}
	return nil
}

// ModelName returns the configured model or the default.
func (g GeminiConfig) ModelName() string {
	if g.Model == "" {
		return DefaultModel
	}
	return g.Model
}

// ScratchDir returns the per-document raster directory for stem.
func (p PathsConfig) ScratchDir(stem string) string {
	return filepath.Join(p.ProcessedDir, stem)
}

// OutputPath returns the default markdown path for stem.
func (p PathsConfig) OutputPath(stem string) string {
	return filepath.Join(p.OutputDir, stem+".md")
}

// ResolveInput joins a relative PDF path onto the input directory.
func (p PathsConfig) ResolveInput(pdfPath string) string {
	if filepath.IsAbs(pdfPath) {
		return pdfPath
	}
	return filepath.Join(p.InputDir, pdfPath)
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}

	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}

	if v := os.Getenv("MAX_PAGES"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return domain.ValidationError(fmt.Sprintf("invalid MAX_PAGES %q", v), err)
		}
		cfg.Conversion.MaxPages = n
	}

	if v := os.Getenv("BOOK2MD_INPUT_DIR"); v != "" {
		cfg.Paths.InputDir = v
	}

	if v := os.Getenv("BOOK2MD_PROCESSED_DIR"); v != "" {
		cfg.Paths.ProcessedDir = v
	}

	if v := os.Getenv("BOOK2MD_OUTPUT_DIR"); v != "" {
		cfg.Paths.OutputDir = v
	}

	if v := os.Getenv("BOOK2MD_DPI"); v != "" {
		dpi, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return domain.ValidationError(fmt.Sprintf("invalid BOOK2MD_DPI %q", v), err)
		}
		cfg.Conversion.DPI = dpi
	}

	if v := os.Getenv("BOOK2MD_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return domain.ValidationError(fmt.Sprintf("invalid BOOK2MD_MAX_RETRIES %q", v), err)
		}
		cfg.Retry.MaxRetries = n
	}

	if v := os.Getenv("BOOK2MD_PAGE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return domain.ValidationError(fmt.Sprintf("invalid BOOK2MD_PAGE_TIMEOUT %q", v), err)
		}
		cfg.Retry.PageTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	return nil
}
