package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Loader   LoaderConfig   `yaml:"loader" envconfig:"LOADER"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// SourcesConfig locates the four raw input files.
type SourcesConfig struct {
	Facebook string `yaml:"facebook" envconfig:"FACEBOOK"`
	Google   string `yaml:"google" envconfig:"GOOGLE"`
	TikTok   string `yaml:"tiktok" envconfig:"TIKTOK"`
	Business string `yaml:"business" envconfig:"BUSINESS"`
}

// LoaderConfig controls per-row error handling and header aliases.
type LoaderConfig struct {
	// OnError decides what a malformed row does: "abort" fails the whole
	// load, "skip" drops the row and reports a warning total.
	OnError string `yaml:"on_error" envconfig:"ON_ERROR"`

	// ColumnAliases maps extra header spellings to canonical column names,
	// merged over the built-in alias table.
	ColumnAliases map[string]string `yaml:"column_aliases" envconfig:"COLUMN_ALIASES"`
}

// OutputConfig locates the derived artifact directory.
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// Load loads configuration. Precedence, lowest to highest: built-in
// defaults, config.yaml, environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("BIDASH", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks the configuration and normalizes defaulted fields.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	switch c.Loader.OnError {
	case "", "abort":
		c.Loader.OnError = "abort"
	case "skip":
	default:
		return fmt.Errorf("invalid loader on_error policy %q (want abort or skip)", c.Loader.OnError)
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "processed"
	}
	return nil
}

// EnsureOutputDir creates the artifact directory if missing.
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", c.Output.Dir, err)
	}
	return nil
}

// ArtifactPath resolves a derived artifact filename inside the output dir.
func (c *Config) ArtifactPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// findConfigFile returns the first config file found in common locations.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Sources: SourcesConfig{
			Facebook: "data/Facebook.csv",
			Google:   "data/Google.csv",
			TikTok:   "data/TikTok.csv",
			Business: "data/business.csv",
		},
		Loader: LoaderConfig{
			OnError: "abort",
		},
		Output: OutputConfig{
			Dir: "processed",
		},
	}
}
