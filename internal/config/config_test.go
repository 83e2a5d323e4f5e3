package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func noEnv(string) (string, bool) { return "", false }

func noFile(string) ([]byte, error) { return nil, os.ErrNotExist }

func fakeHome() (string, error) { return "/home/suri", nil }

func TestLoadDefaultsWhenNothingConfigured(t *testing.T) {
	cfg, err := Load(WithEnvLookup(noEnv), WithReadFile(noFile), WithHomeDir(fakeHome))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want built-in defaults", cfg)
	}
}

func TestLoadReadsConfigFileUnderHome(t *testing.T) {
	var requested string
	readFile := func(path string) ([]byte, error) {
		requested = path
		return []byte("model_enabled: true\nfallback_threshold: 0.75\nserver_addr: \":9000\"\n"), nil
	}

	cfg, err := Load(WithEnvLookup(noEnv), WithReadFile(readFile), WithHomeDir(fakeHome))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join("/home/suri", ".suri", "config.yaml"); requested != want {
		t.Errorf("read path = %s, want %s", requested, want)
	}
	if !cfg.ModelEnabled || cfg.FallbackThreshold != 0.75 || cfg.ServerAddr != ":9000" {
		t.Errorf("file layer not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.ModelName != DefaultModelName || cfg.IDStrategy != DefaultIDStrategy {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	readFile := func(string) ([]byte, error) {
		return []byte("server_addr: \":9000\"\nlog_level: warn\n"), nil
	}
	env := map[string]string{
		"SURI_SERVER_ADDR":        ":7000",
		"SURI_MODEL_ENABLED":      "yes",
		"SURI_FALLBACK_THRESHOLD": "0.8",
		"SURI_ID_STRATEGY":        "UUIDv7",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg, err := Load(WithEnvLookup(lookup), WithReadFile(readFile), WithHomeDir(fakeHome))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerAddr != ":7000" {
		t.Errorf("server_addr = %s, env must win over the file", cfg.ServerAddr)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log_level = %s, file layer should survive where env is silent", cfg.LogLevel)
	}
	if !cfg.ModelEnabled || cfg.FallbackThreshold != 0.8 {
		t.Errorf("env layer not applied: %+v", cfg)
	}
	if cfg.IDStrategy != "uuidv7" {
		t.Errorf("id_strategy = %s, env value must be lowercased", cfg.IDStrategy)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	readFile := func(string) ([]byte, error) {
		return nil, &fs.PathError{Op: "open", Path: "config.yaml", Err: fs.ErrNotExist}
	}
	if _, err := Load(WithEnvLookup(noEnv), WithReadFile(readFile), WithHomeDir(fakeHome)); err != nil {
		t.Fatalf("missing config file must not fail load: %v", err)
	}
	// Same for an unresolvable home directory.
	noHome := func() (string, error) { return "", errors.New("no home") }
	if _, err := Load(WithEnvLookup(noEnv), WithReadFile(noFile), WithHomeDir(noHome)); err != nil {
		t.Fatalf("missing home dir must not fail load: %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	readFile := func(string) ([]byte, error) { return []byte("model_enabled: [oops"), nil }
	_, err := Load(WithEnvLookup(noEnv), WithReadFile(readFile), WithHomeDir(fakeHome))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if !strings.Contains(err.Error(), "config.yaml") {
		t.Errorf("error %q should name the config file", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(*Config) {}, ""},
		{"threshold too high", func(c *Config) { c.FallbackThreshold = 1.5 }, "fallback_threshold"},
		{"threshold negative", func(c *Config) { c.FallbackThreshold = -0.1 }, "fallback_threshold"},
		{"negative cache", func(c *Config) { c.ClassifyCacheSize = -1 }, "classify_cache_size"},
		{"urgency out of range", func(c *Config) { c.UrgentNotifyLevel = 6 }, "urgent_notify_level"},
		{"unknown id strategy", func(c *Config) { c.IDStrategy = "snowflake" }, "id_strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadInvalidEnvValueFailsValidation(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "SURI_ID_STRATEGY" {
			return "snowflake", true
		}
		return "", false
	}
	_, err := Load(WithEnvLookup(lookup), WithReadFile(noFile), WithHomeDir(fakeHome))
	if err == nil || !strings.Contains(err.Error(), "id_strategy") {
		t.Errorf("error = %v, want id_strategy validation failure", err)
	}
}
