// Package config holds the runtime settings file and the key sources the
// provider adapter resolves credentials from.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/politecaptcha/internal/alert"
)

// ProviderConfig configures the CAPTCHA provider endpoints.
type ProviderConfig struct {
	// APIServer is the widget host without scheme; the scheme follows the
	// connection security of the rendering request.
	APIServer string        `yaml:"api_server"`
	VerifyURL string        `yaml:"verify_url"`
	Theme     string        `yaml:"theme"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Config is the politecaptcha settings file.
type Config struct {
	Addr            string         `yaml:"addr"`
	LogLevel        string         `yaml:"log_level"`
	KeysFile        string         `yaml:"keys_file"`
	Redis           *RedisConfig   `yaml:"redis"`
	Provider        ProviderConfig `yaml:"provider"`
	AuditLog        string         `yaml:"audit_log"`
	Alerts          []alert.Config `yaml:"alerts"`
	FallbackMessage string         `yaml:"fallback_message"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Addr:     ":8080",
		LogLevel: "info",
		Provider: ProviderConfig{
			APIServer: "www.google.com/recaptcha/api",
			VerifyURL: "http://www.google.com/recaptcha/api/verify",
			Theme:     "red",
			Timeout:   10 * time.Second,
		},
	}
}

// LoadConfig loads settings from a YAML file.
// Empty path falls back to ~/.politecaptcha/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = filepath.Join(home, ".politecaptcha", "config.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.KeysFile != "" && !filepath.IsAbs(cfg.KeysFile) {
		cfg.KeysFile = filepath.Join(filepath.Dir(path), cfg.KeysFile)
	}

	return cfg, nil
}

// Sources is the assembled key lookup chain and the closers it owns.
type Sources struct {
	Chain Chain
	File  *FileSource
	Redis *RedisSource
}

// OpenSources builds the lookup chain: environment first, then the keys
// file, then Redis. Unconfigured stores are skipped.
func OpenSources(ctx context.Context, cfg *Config) (*Sources, error) {
	s := &Sources{Chain: Chain{EnvSource{}}}

	if cfg.KeysFile != "" {
		fs, err := OpenFileSource(cfg.KeysFile)
		if err != nil {
			return nil, err
		}
		s.File = fs
		s.Chain = append(s.Chain, fs)
	}

	if cfg.Redis != nil && cfg.Redis.Addr != "" {
		rs, err := DialRedis(ctx, *cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.Redis = rs
		s.Chain = append(s.Chain, rs)
	}

	return s, nil
}

// Close releases the Redis connection, if any.
func (s *Sources) Close() error {
	if s.Redis != nil {
		return s.Redis.Close()
	}
	return nil
}

// DefaultConfigYAML returns the commented settings file written by init.
func DefaultConfigYAML() string {
	return `# politecaptcha configuration
# Generated by: politecaptcha init

# Demo server listen address and log level (trace|debug|info|error).
addr: ":8080"
log_level: info

# Key pair file, relative to this file. Environment variables
# POLITECAPTCHA_RECAPTCHA_PUBLIC_KEY / POLITECAPTCHA_RECAPTCHA_PRIVATE_KEY
# take precedence. Edits are picked up without a restart.
keys_file: keys.yaml

# Optional Redis key store, consulted after the keys file.
# redis:
#   addr: 127.0.0.1:6379
#   db: 0
#   key_prefix: "politecaptcha:"

provider:
  api_server: www.google.com/recaptcha/api
  verify_url: http://www.google.com/recaptcha/api/verify
  theme: red  # red | white | blackglass | clean
  timeout: 10s

# Hash-chained decision log (JSONL). Empty disables it.
audit_log: ""

# Webhooks for escalated submissions and checks that could not complete.
# alerts:
#   - url: https://hooks.slack.com/services/...
#     format: slack          # generic | slack | pagerduty
#     events: [unavailable]  # escalated | unavailable

# Message shown above the CAPTCHA. Empty uses the built-in message.
fallback_message: ""
`
}

// DefaultKeysYAML returns an empty keys file. Blank keys fall back to the
// development pair for local requests only.
func DefaultKeysYAML() string {
	return `# politecaptcha CAPTCHA keys
keys:
  recaptcha_public_key: ""
  recaptcha_private_key: ""
`
}
