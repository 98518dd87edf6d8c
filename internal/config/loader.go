package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Loader.
const (
	EnvConfigFile    = "GENAI_BRIDGE_CONFIG"
	EnvSpeechBackend = "GENAI_SPEECH_BACKEND"
	EnvTextBackend   = "GENAI_TEXT_BACKEND"
	EnvLogLevel      = "GENAI_LOG_LEVEL"
	EnvLogFormat     = "GENAI_LOG_FORMAT"
	EnvCacheDir      = "GENAI_CACHE_DIR"
	EnvMetrics       = "GENAI_METRICS"
)

// Loader loads configuration. Tests can override Lookup and ReadFile to
// inject deterministic inputs.
type Loader struct {
	Lookup   func(string) (string, bool)
	ReadFile func(string) ([]byte, error)
}

// Load reads the process configuration with the real environment.
func Load() (Config, error) {
	return Loader{}.Load()
}

// Load reads the optional YAML file, applies environment overrides and
// validates the result.
func (l Loader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	if l.ReadFile == nil {
		l.ReadFile = os.ReadFile
	}

	var cfg Config
	if path, ok := l.Lookup(EnvConfigFile); ok && strings.TrimSpace(path) != "" {
		data, err := l.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		fileCfg, err := decode(bytes.NewReader(data))
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = fileCfg
	}

	overrideString(l.Lookup, EnvSpeechBackend, &cfg.SpeechBackend)
	overrideString(l.Lookup, EnvTextBackend, &cfg.TextBackend)
	overrideString(l.Lookup, EnvLogLevel, &cfg.LogLevel)
	overrideString(l.Lookup, EnvLogFormat, &cfg.LogFormat)
	overrideString(l.Lookup, EnvCacheDir, &cfg.CacheDir)
	if raw, ok := l.Lookup(EnvMetrics); ok && strings.TrimSpace(raw) != "" {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvMetrics, err)
		}
		cfg.Metrics = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates it.
func LoadFromReader(r io.Reader) (Config, error) {
	cfg, err := decode(r)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}
