package genai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Unbounded is the "no limit" value for token-count fields, the Go
// counterpart of SIZE_MAX.
const Unbounded = uint(math.MaxUint)

// GenerationConfig controls text generation.
type GenerationConfig struct {
	MaxNewTokens      uint     `json:"max_new_tokens"`
	MaxLength         uint     `json:"max_length"`
	Temperature       float32  `json:"temperature"`
	TopP              float32  `json:"top_p"`
	TopK              uint     `json:"top_k"`
	DoSample          bool     `json:"do_sample"`
	RepetitionPenalty float32  `json:"repetition_penalty"`
	PresencePenalty   float32  `json:"presence_penalty"`
	FrequencyPenalty  float32  `json:"frequency_penalty"`
	StopStrings       []string `json:"stop_strings,omitempty"`
}

// DefaultGenerationConfig returns the config new pipelines and new config
// handles start from: unbounded greedy decoding without penalties.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxNewTokens:      Unbounded,
		MaxLength:         Unbounded,
		Temperature:       1.0,
		TopP:              1.0,
		RepetitionPenalty: 1.0,
	}
}

// ParseGenerationConfig decodes a JSON object on top of the defaults.
// Unknown keys and trailing data are rejected.
func ParseGenerationConfig(data []byte) (GenerationConfig, error) {
	cfg := DefaultGenerationConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return GenerationConfig{}, fmt.Errorf("genai: decode generation config: %w", err)
	}
	if dec.More() {
		return GenerationConfig{}, errors.New("genai: decode generation config: trailing data after object")
	}
	return cfg, nil
}

// Clone returns a deep copy.
func (c GenerationConfig) Clone() GenerationConfig {
	c.StopStrings = slices.Clone(c.StopStrings)
	return c
}

// Validate checks field ranges. All problems are reported together.
func (c GenerationConfig) Validate() error {
	var errs []error
	if c.MaxNewTokens == 0 {
		errs = append(errs, errors.New("max_new_tokens must be greater than 0"))
	}
	if c.MaxLength == 0 {
		errs = append(errs, errors.New("max_length must be greater than 0"))
	}
	if c.Temperature < 0 || isNaN(c.Temperature) {
		errs = append(errs, fmt.Errorf("temperature must be >= 0, got %v", c.Temperature))
	}
	if c.DoSample && c.Temperature == 0 {
		errs = append(errs, errors.New("temperature must be > 0 when do_sample is set"))
	}
	if !(c.TopP > 0 && c.TopP <= 1) {
		errs = append(errs, fmt.Errorf("top_p must be in (0, 1], got %v", c.TopP))
	}
	if !(c.RepetitionPenalty > 0) {
		errs = append(errs, fmt.Errorf("repetition_penalty must be > 0, got %v", c.RepetitionPenalty))
	}
	if !(c.PresencePenalty >= -2 && c.PresencePenalty <= 2) {
		errs = append(errs, fmt.Errorf("presence_penalty must be in [-2, 2], got %v", c.PresencePenalty))
	}
	if !(c.FrequencyPenalty >= -2 && c.FrequencyPenalty <= 2) {
		errs = append(errs, fmt.Errorf("frequency_penalty must be in [-2, 2], got %v", c.FrequencyPenalty))
	}
	for i, s := range c.StopStrings {
		if s == "" {
			errs = append(errs, fmt.Errorf("stop_strings[%d] is empty", i))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// TokenBudget returns how many tokens may still be generated given the
// prompt length, or 0 when the config imposes no limit.
func (c GenerationConfig) TokenBudget(inputTokens int) int {
	budget := Unbounded
	if c.MaxNewTokens != Unbounded {
		budget = c.MaxNewTokens
	}
	if c.MaxLength != Unbounded {
		rest := uint(0)
		if c.MaxLength > uint(inputTokens) {
			rest = c.MaxLength - uint(inputTokens)
		}
		budget = min(budget, rest)
	}
	if budget == Unbounded {
		return 0
	}
	if budget > math.MaxInt32 {
		return math.MaxInt32
	}
	return max(int(budget), 1)
}

// TruncateAtStop cuts text at the earliest stop string. The stop string
// itself is not included.
func (c GenerationConfig) TruncateAtStop(text string) (string, bool) {
	cut := -1
	for _, s := range c.StopStrings {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return text, false
	}
	return text[:cut], true
}

// Task is the speech pipeline task.
type Task string

const (
	TaskTranscribe Task = "transcribe"
	TaskTranslate  Task = "translate"
)

// WhisperGenerationConfig controls speech recognition.
type WhisperGenerationConfig struct {
	// Language is a language token such as "<|en|>" or a bare code such as
	// "en". Empty means auto-detect.
	Language                 string
	Task                     Task
	ReturnTimestamps         bool
	InitialPrompt            string
	Hotwords                 string
	MaxInitialTimestampIndex uint
	DecoderStartTokenID      int64
	SuppressTokens           []int64
	BeginSuppressTokens      []int64
	MaxNewTokens             uint
}

// DefaultWhisperGenerationConfig returns the multilingual whisper defaults.
func DefaultWhisperGenerationConfig() WhisperGenerationConfig {
	return WhisperGenerationConfig{
		Task:                     TaskTranscribe,
		MaxInitialTimestampIndex: 50,
		DecoderStartTokenID:      50258,
		SuppressTokens:           []int64{},
		BeginSuppressTokens:      []int64{220, 50257},
		MaxNewTokens:             Unbounded,
	}
}

// Clone returns a deep copy.
func (c WhisperGenerationConfig) Clone() WhisperGenerationConfig {
	c.SuppressTokens = slices.Clone(c.SuppressTokens)
	c.BeginSuppressTokens = slices.Clone(c.BeginSuppressTokens)
	return c
}

// LanguageCode returns the bare language code, e.g. "en" for "<|en|>".
func (c WhisperGenerationConfig) LanguageCode() string {
	return strings.TrimSuffix(strings.TrimPrefix(c.Language, "<|"), "|>")
}

// Validate checks field ranges. All problems are reported together.
func (c WhisperGenerationConfig) Validate() error {
	var errs []error
	switch c.Task {
	case TaskTranscribe, TaskTranslate:
	default:
		errs = append(errs, fmt.Errorf("task must be %q or %q, got %q", TaskTranscribe, TaskTranslate, c.Task))
	}
	if c.Language != "" {
		code := c.LanguageCode()
		if code == "" || strings.ContainsAny(code, " \t\n<>|") {
			errs = append(errs, fmt.Errorf("malformed language %q", c.Language))
		}
	}
	if c.MaxNewTokens == 0 {
		errs = append(errs, errors.New("max_new_tokens must be greater than 0"))
	}
	if c.DecoderStartTokenID < 0 {
		errs = append(errs, fmt.Errorf("decoder_start_token_id must be >= 0, got %d", c.DecoderStartTokenID))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func isNaN(f float32) bool { return f != f }
