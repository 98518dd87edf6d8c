package genai

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultGenerationConfigValid(t *testing.T) {
	if err := DefaultGenerationConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if err := DefaultWhisperGenerationConfig().Validate(); err != nil {
		t.Fatalf("default whisper config invalid: %v", err)
	}
}

func TestGenerationConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationConfig)
	}{
		{"zero max_new_tokens", func(c *GenerationConfig) { c.MaxNewTokens = 0 }},
		{"zero max_length", func(c *GenerationConfig) { c.MaxLength = 0 }},
		{"negative temperature", func(c *GenerationConfig) { c.Temperature = -0.1 }},
		{"sampling at zero temperature", func(c *GenerationConfig) { c.DoSample = true; c.Temperature = 0 }},
		{"top_p above one", func(c *GenerationConfig) { c.TopP = 1.5 }},
		{"top_p zero", func(c *GenerationConfig) { c.TopP = 0 }},
		{"zero repetition penalty", func(c *GenerationConfig) { c.RepetitionPenalty = 0 }},
		{"presence penalty out of range", func(c *GenerationConfig) { c.PresencePenalty = 3 }},
		{"frequency penalty out of range", func(c *GenerationConfig) { c.FrequencyPenalty = -3 }},
		{"empty stop string", func(c *GenerationConfig) { c.StopStrings = []string{"ok", ""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultGenerationConfig()
			tt.mutate(&c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseGenerationConfig(t *testing.T) {
	cfg, err := ParseGenerationConfig([]byte(`{"max_new_tokens": 32, "temperature": 0.7, "do_sample": true, "stop_strings": ["\n\n"]}`))
	if err != nil {
		t.Fatalf("ParseGenerationConfig: %v", err)
	}
	if cfg.MaxNewTokens != 32 || cfg.Temperature != 0.7 || !cfg.DoSample {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.TopP != 1 || cfg.MaxLength != Unbounded {
		t.Errorf("defaults not kept: %+v", cfg)
	}

	if _, err := ParseGenerationConfig([]byte(`{"beam_width": 4}`)); err == nil {
		t.Error("expected unknown key to be rejected")
	}
	if _, err := ParseGenerationConfig([]byte(`{"top_k": 1} {}`)); err == nil {
		t.Error("expected trailing data to be rejected")
	}
	if _, err := ParseGenerationConfig([]byte(`not json`)); err == nil {
		t.Error("expected malformed json to be rejected")
	}
}

func TestGenerationConfigCloneIsDeep(t *testing.T) {
	a := DefaultGenerationConfig()
	a.StopStrings = []string{"x"}
	b := a.Clone()
	b.StopStrings[0] = "y"
	if a.StopStrings[0] != "x" {
		t.Error("Clone shares stop_strings")
	}

	w := DefaultWhisperGenerationConfig()
	w.SuppressTokens = []int64{1}
	v := w.Clone()
	v.SuppressTokens[0] = 2
	if w.SuppressTokens[0] != 1 {
		t.Error("Clone shares suppress_tokens")
	}
}

func TestTokenBudget(t *testing.T) {
	c := DefaultGenerationConfig()
	if got := c.TokenBudget(10); got != 0 {
		t.Errorf("unbounded budget = %d, want 0", got)
	}
	c.MaxNewTokens = 5
	if got := c.TokenBudget(10); got != 5 {
		t.Errorf("budget = %d, want 5", got)
	}
	c.MaxLength = 12
	if got := c.TokenBudget(10); got != 2 {
		t.Errorf("budget with max_length = %d, want 2", got)
	}
	c.MaxLength = 4
	if got := c.TokenBudget(10); got != 1 {
		t.Errorf("budget past max_length = %d, want 1", got)
	}
}

func TestTruncateAtStop(t *testing.T) {
	c := DefaultGenerationConfig()
	c.StopStrings = []string{"END", "\n"}
	got, hit := c.TruncateAtStop("hello\nworld END")
	if !hit || got != "hello" {
		t.Errorf("TruncateAtStop = %q, %v", got, hit)
	}
	if got, hit := c.TruncateAtStop("plain"); hit || got != "plain" {
		t.Errorf("TruncateAtStop without stop = %q, %v", got, hit)
	}
}

func TestWhisperConfigValidate(t *testing.T) {
	c := DefaultWhisperGenerationConfig()
	c.Task = "summarize"
	if !errors.Is(c.Validate(), ErrInvalidConfig) {
		t.Error("expected bad task to fail")
	}

	c = DefaultWhisperGenerationConfig()
	c.Language = "<|en|>"
	if err := c.Validate(); err != nil {
		t.Errorf("language token rejected: %v", err)
	}
	if c.LanguageCode() != "en" {
		t.Errorf("LanguageCode = %q", c.LanguageCode())
	}
	c.Language = "<||>"
	if c.Validate() == nil {
		t.Error("expected empty language token to fail")
	}
}

func TestParseProperties(t *testing.T) {
	props, err := ParseProperties([]string{"CACHE_DIR", "/tmp/a", "NUM_THREADS", "4", "CACHE_DIR", "/tmp/b"})
	if err != nil {
		t.Fatalf("ParseProperties: %v", err)
	}
	if len(props) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(props))
	}
	if v, _ := props.Get("CACHE_DIR"); v != "/tmp/b" {
		t.Errorf("Get returned %q, want last value", v)
	}
	if _, ok := props.Without("CACHE_DIR").Get("CACHE_DIR"); ok {
		t.Error("Without kept the key")
	}

	if _, err := ParseProperties([]string{"lonely"}); !errors.Is(err, ErrOddProperties) {
		t.Errorf("odd args err = %v", err)
	}
	if props, err := ParseProperties(nil); err != nil || len(props) != 0 {
		t.Errorf("empty args = %v, %v", props, err)
	}
}

func TestPropertiesLogValueRedacts(t *testing.T) {
	v := Properties{{Key: "API_KEY", Value: "sk-secret"}, {Key: "DEVICE_ID", Value: "0"}}.LogValue()
	for _, a := range v.Group() {
		if a.Key == "API_KEY" && a.Value.String() != "***" {
			t.Errorf("API_KEY not redacted: %s", a.Value)
		}
		if a.Key == "DEVICE_ID" && a.Value.String() != "0" {
			t.Errorf("DEVICE_ID changed: %s", a.Value)
		}
	}
}

func TestSummarize(t *testing.T) {
	raw := RawPerfMetrics{
		LoadTime:                    1500 * time.Millisecond,
		GenerateDurations:           []time.Duration{100 * time.Millisecond},
		FeaturesExtractionDurations: []time.Duration{10 * time.Millisecond, 30 * time.Millisecond},
		TokenTimes:                  []time.Duration{20 * time.Millisecond, 30 * time.Millisecond, 40 * time.Millisecond},
		NumGeneratedTokens:          3,
		NumInputTokens:              7,
	}
	m := raw.Summarize()
	if m.LoadTime != 1500 {
		t.Errorf("LoadTime = %v", m.LoadTime)
	}
	if m.FeaturesExtractionDuration.Mean != 20 || m.FeaturesExtractionDuration.Std != 10 {
		t.Errorf("FeaturesExtractionDuration = %+v", m.FeaturesExtractionDuration)
	}
	if m.TTFT.Mean != 20 {
		t.Errorf("TTFT = %+v", m.TTFT)
	}
	if m.TPOT.Mean != 10 || m.TPOT.Std != 0 {
		t.Errorf("TPOT = %+v", m.TPOT)
	}
	if m.Throughput.Mean != 100 {
		t.Errorf("Throughput = %+v", m.Throughput)
	}
	if m.NumInputTokens != 7 || m.NumGeneratedTokens != 3 {
		t.Errorf("token counts = %d/%d", m.NumInputTokens, m.NumGeneratedTokens)
	}
}

func TestSummarizeWithoutTokenTimes(t *testing.T) {
	m := RawPerfMetrics{
		GenerateDurations:  []time.Duration{200 * time.Millisecond},
		NumGeneratedTokens: 4,
	}.Summarize()
	if m.TPOT.Mean != 50 || m.Throughput.Mean != 20 {
		t.Errorf("TPOT/Throughput = %+v/%+v", m.TPOT, m.Throughput)
	}
}
