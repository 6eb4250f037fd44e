// Package config loads the application configuration: a YAML file read
// through afero, overlaid with FORMGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formguard/internal/logging"
	"github.com/goliatone/go-formguard/pkg/messages"
	"github.com/goliatone/go-formguard/pkg/model"
)

// Environment variables.
const (
	EnvLogLevel  = "FORMGUARD_LOG_LEVEL"
	EnvLogFormat = "FORMGUARD_LOG_FORMAT"
	EnvAddr      = "FORMGUARD_ADDR"
	EnvLocale    = "FORMGUARD_LOCALE"
)

// DefaultAddr is the listen address of the pre-validation server.
const DefaultAddr = ":8080"

// ErrInvalid wraps configuration validation failures.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the application configuration.
type Config struct {
	Locale   string              `yaml:"locale"`
	Log      LogConfig           `yaml:"log"`
	Server   ServerConfig        `yaml:"server"`
	Form     model.OptionsConfig `yaml:"form"`
	Messages MessagesConfig      `yaml:"messages"`
	Forms    FormsConfig         `yaml:"forms"`
	Remote   RemoteConfig        `yaml:"remote"`
}

// LogConfig selects level and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeoutMs   int    `yaml:"readTimeoutMs"`
	MaxBatch        int    `yaml:"maxBatch"`
	MetricsDisabled bool   `yaml:"metricsDisabled"`
}

// MessagesConfig points at a catalogue override file.
type MessagesConfig struct {
	Path string `yaml:"path"`
}

// FormsConfig points at a directory of form definitions and an optional
// directory of UI overlays applied to them.
type FormsConfig struct {
	Dir      string `yaml:"dir"`
	Overlays string `yaml:"overlays"`
}

// RemoteConfig configures the remote checker used by interactive sessions.
type RemoteConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Locale: model.DefaultLocale,
		Log:    LogConfig{Level: "info", Format: logging.FormatText},
		Server: ServerConfig{Addr: DefaultAddr, ReadTimeoutMs: 5000, MaxBatch: 100},
	}
}

// Load reads path (optional) and applies environment overrides. getenv is
// usually os.Getenv.
func Load(fs afero.Fs, path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if getenv != nil {
		cfg.applyEnv(getenv)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Log.Format = v
	}
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvLocale)); v != "" {
		c.Locale = v
	}
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatJSON, logging.FormatText, logging.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, fmt.Errorf("%w: server.addr is empty", ErrInvalid))
	}
	if c.Server.MaxBatch < 0 {
		errs = append(errs, fmt.Errorf("%w: server.maxBatch %d", ErrInvalid, c.Server.MaxBatch))
	}
	if c.Form.DebounceDelayMs != nil && *c.Form.DebounceDelayMs < 0 {
		errs = append(errs, fmt.Errorf("%w: form.debounceDelayMs %d", ErrInvalid, *c.Form.DebounceDelayMs))
	}
	return errors.Join(errs...)
}

// Options returns the form behaviour with the configured locale.
func (c Config) Options() model.Options {
	opts := c.Form.Apply(model.DefaultOptions())
	if c.Form.Locale == "" && c.Locale != "" {
		opts.Locale = c.Locale
	}
	return opts
}

// ReadTimeout returns the server read timeout.
func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutMs) * time.Millisecond
}

// RemoteTimeout returns the remote check timeout, zero for the default.
func (c Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutMs) * time.Millisecond
}

// Catalogue builds the message catalogue of the configured locale with the
// optional override file applied.
func (c Config) Catalogue(fs afero.Fs) (*messages.Catalogue, error) {
	if strings.TrimSpace(c.Messages.Path) == "" {
		return messages.New(c.Options().Locale), nil
	}
	overrides, err := messages.LoadOverrides(fs, c.Messages.Path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return messages.New(c.Options().Locale, messages.WithOverrides(overrides)), nil
}
