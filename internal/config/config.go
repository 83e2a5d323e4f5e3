// Package config loads pipeline configuration from defaults, an optional
// yaml file (~/.suri/config.yaml) and SURI_* environment overrides, in that
// order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultModelBaseURL       = "http://localhost:11434"
	DefaultModelName          = "suri-intent"
	DefaultFallbackThreshold  = 0.6
	DefaultClassifyCacheSize  = 256
	DefaultMinAmountWon       = 1000
	DefaultServerAddr         = ":8420"
	DefaultPrometheusPort     = 9420
	DefaultModelTimeout       = 10 * time.Second
	DefaultSchedulerTimezone  = "Asia/Seoul"
	DefaultUrgentNotifyLevel  = 4
	DefaultDispatchTimeout    = 30 * time.Second
	DefaultReminderConcurrent = "skip"
	DefaultIDStrategy         = "ksuid"
)

// Config is the runtime configuration for the pipeline and its fronts.
type Config struct {
	// Classifier
	ModelEnabled      bool          `yaml:"model_enabled"`
	ModelBaseURL      string        `yaml:"model_base_url"`
	ModelName         string        `yaml:"model_name"`
	ModelTimeout      time.Duration `yaml:"model_timeout"`
	FallbackThreshold float64       `yaml:"fallback_threshold"`
	ClassifyCacheSize int           `yaml:"classify_cache_size"`

	// Extraction
	MinAmountWon int `yaml:"min_amount_won"`

	// Suggestion
	UrgentNotifyLevel int `yaml:"urgent_notify_level"`

	// Executor
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`

	// Reminder scheduler
	SchedulerEnabled  bool   `yaml:"scheduler_enabled"`
	SchedulerTimezone string `yaml:"scheduler_timezone"`
	ConcurrencyPolicy string `yaml:"concurrency_policy"`

	// Server / observability
	ServerAddr     string `yaml:"server_addr"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
	PrometheusPort int    `yaml:"prometheus_port"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Identifier generation: "ksuid" or "uuidv7".
	IDStrategy string `yaml:"id_strategy"`
}

type loadOptions struct {
	envLookup func(string) (string, bool)
	readFile  func(string) ([]byte, error)
	homeDir   func() (string, error)
}

// Option customizes Load, mainly for tests.
type Option func(*loadOptions)

// WithEnvLookup overrides environment lookup.
func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(o *loadOptions) { o.envLookup = fn }
}

// WithReadFile overrides config file reading.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(o *loadOptions) { o.readFile = fn }
}

// WithHomeDir overrides home directory resolution.
func WithHomeDir(fn func() (string, error)) Option {
	return func(o *loadOptions) { o.homeDir = fn }
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ModelEnabled:      false,
		ModelBaseURL:      DefaultModelBaseURL,
		ModelName:         DefaultModelName,
		ModelTimeout:      DefaultModelTimeout,
		FallbackThreshold: DefaultFallbackThreshold,
		ClassifyCacheSize: DefaultClassifyCacheSize,
		MinAmountWon:      DefaultMinAmountWon,
		UrgentNotifyLevel: DefaultUrgentNotifyLevel,
		DispatchTimeout:   DefaultDispatchTimeout,
		SchedulerEnabled:  true,
		SchedulerTimezone: DefaultSchedulerTimezone,
		ConcurrencyPolicy: DefaultReminderConcurrent,
		ServerAddr:        DefaultServerAddr,
		MetricsEnabled:    false,
		PrometheusPort:    DefaultPrometheusPort,
		LogLevel:          "info",
		IDStrategy:        DefaultIDStrategy,
	}
}

// Load builds the effective configuration. File and env layers are optional;
// a missing config file is not an error.
func Load(opts ...Option) (Config, error) {
	options := loadOptions{
		envLookup: os.LookupEnv,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Default()

	if home, err := options.homeDir(); err == nil {
		path := filepath.Join(home, ".suri", "config.yaml")
		if data, err := options.readFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg, options.envLookup)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("SURI_MODEL_ENABLED"); ok {
		cfg.ModelEnabled = isTruthy(v)
	}
	if v, ok := lookup("SURI_MODEL_BASE_URL"); ok && v != "" {
		cfg.ModelBaseURL = v
	}
	if v, ok := lookup("SURI_MODEL_NAME"); ok && v != "" {
		cfg.ModelName = v
	}
	if v, ok := lookup("SURI_FALLBACK_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FallbackThreshold = f
		}
	}
	if v, ok := lookup("SURI_SERVER_ADDR"); ok && v != "" {
		cfg.ServerAddr = v
	}
	if v, ok := lookup("SURI_METRICS_ENABLED"); ok {
		cfg.MetricsEnabled = isTruthy(v)
	}
	if v, ok := lookup("SURI_PROMETHEUS_PORT"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.PrometheusPort = p
		}
	}
	if v, ok := lookup("SURI_SCHEDULER_ENABLED"); ok {
		cfg.SchedulerEnabled = isTruthy(v)
	}
	if v, ok := lookup("SURI_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("SURI_ID_STRATEGY"); ok && v != "" {
		cfg.IDStrategy = strings.ToLower(v)
	}
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.FallbackThreshold < 0 || c.FallbackThreshold > 1 {
		return fmt.Errorf("fallback_threshold must be in [0,1], got %v", c.FallbackThreshold)
	}
	if c.ClassifyCacheSize < 0 {
		return fmt.Errorf("classify_cache_size must be non-negative, got %d", c.ClassifyCacheSize)
	}
	if c.UrgentNotifyLevel < 1 || c.UrgentNotifyLevel > 5 {
		return fmt.Errorf("urgent_notify_level must be in [1,5], got %d", c.UrgentNotifyLevel)
	}
	switch c.IDStrategy {
	case "ksuid", "uuidv7":
	default:
		return fmt.Errorf("id_strategy must be ksuid or uuidv7, got %q", c.IDStrategy)
	}
	return nil
}
