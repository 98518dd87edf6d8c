// Package config holds the process-wide settings of the bridge library.
//
// A C host has no flags to pass, so settings come from an optional YAML file
// named by GENAI_BRIDGE_CONFIG, then from individual environment variables,
// in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults applied by Validate to empty fields.
const (
	DefaultSpeechBackend = "whispercpp"
	DefaultTextBackend   = "candle"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
)

// Config is the bridge configuration.
type Config struct {
	// SpeechBackend is the engine backend for whisper pipelines.
	SpeechBackend string `yaml:"speech_backend"`
	// TextBackend is the engine backend for LLM pipelines.
	TextBackend string `yaml:"text_backend"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text or json. Logs go to stderr.
	LogFormat string `yaml:"log_format"`
	// CacheDir is where hf:// model references are downloaded.
	// Empty means the Hugging Face default cache.
	CacheDir string `yaml:"cache_dir"`
	// Metrics enables the OpenTelemetry meter provider and the Prometheus
	// text exposition.
	Metrics bool `yaml:"metrics"`
}

// Validate applies defaults and checks enumerated fields.
func (c *Config) Validate() error {
	var errs []error

	c.SpeechBackend = strings.TrimSpace(c.SpeechBackend)
	if c.SpeechBackend == "" {
		c.SpeechBackend = DefaultSpeechBackend
	}
	c.TextBackend = strings.TrimSpace(c.TextBackend)
	if c.TextBackend == "" {
		c.TextBackend = DefaultTextBackend
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "":
		c.LogLevel = DefaultLogLevel
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", c.LogLevel))
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "":
		c.LogFormat = DefaultLogFormat
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q is invalid; valid values: text, json", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
