package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath  = "STOCKDESK_CONFIG_PATH"
	EnvBackendURL  = "STOCKDESK_BACKEND_URL"
	EnvTimeout     = "STOCKDESK_TIMEOUT"
	EnvTokenSecret = "STOCKDESK_TOKEN_SECRET"
	EnvLogLevel    = "STOCKDESK_LOG_LEVEL"
	EnvLogFormat   = "STOCKDESK_LOG_FORMAT"
	EnvLogPath     = "STOCKDESK_LOG_PATH"
)

// Defaults
const (
	DefaultBackendURL = "http://127.0.0.1:5000"
	DefaultTimeout    = 30 * time.Second
	MaxTimeout        = 5 * time.Minute
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config is the bootstrap configuration read before the UI starts.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Log     LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// TokenSecret enables signature checks on session tokens when set.
	TokenSecret string `yaml:"token_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Path is the log file; empty logs to stderr only.
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in that order of increasing precedence. A .env file in the
// working directory feeds the environment first, so it can also name the
// YAML file; real environment variables win over it.
func Load() (Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env file: %w", err)
	}

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.Backend.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvTokenSecret); ok {
		cfg.Backend.TokenSecret = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v, ok := os.LookupEnv(EnvLogPath); ok {
		cfg.Log.Path = v
	}
	return nil
}

// ParseTimeout accepts a Go duration ("45s") or a number of seconds ("45").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate checks the backend address, the timeout and the log options.
func (c Config) Validate() error {
	if err := ValidateBackendURL(c.Backend.URL); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 || c.Backend.Timeout > MaxTimeout {
		return fmt.Errorf("backend timeout must be between 1s and %s, got %s", MaxTimeout, c.Backend.Timeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ValidateBackendURL accepts absolute http and https URLs.
func ValidateBackendURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid backend url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend url %q: expected http(s)://host[:port]", raw)
	}
	return nil
}
