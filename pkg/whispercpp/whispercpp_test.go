package whispercpp

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

func TestParseOptions(t *testing.T) {
	props, _ := genai.ParseProperties([]string{PropNumThreads, "4", PropCacheDir, "/tmp/c"})
	o, err := parseOptions(genai.ModelSpec{Properties: props})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if o.threads != 4 || o.cacheDir != "/tmp/c" {
		t.Errorf("options = %+v", o)
	}
	for _, bad := range []string{"0", "-1", "many"} {
		props, _ := genai.ParseProperties([]string{PropNumThreads, bad})
		if _, err := parseOptions(genai.ModelSpec{Properties: props}); err == nil {
			t.Errorf("NUM_THREADS=%q: expected error", bad)
		}
	}
}

func TestCheckDevice(t *testing.T) {
	for _, d := range []string{"CPU", "gpu", "AUTO"} {
		if err := checkDevice(d); err != nil {
			t.Errorf("%s: %v", d, err)
		}
	}
	if err := checkDevice("NPU"); !errors.Is(err, genai.ErrUnsupportedDevice) {
		t.Errorf("NPU: err = %v", err)
	}
}

func TestResolveModel(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if _, err := resolveModel(ctx, dir, "", nil); err == nil {
		t.Error("expected error for directory without a model")
	}
	model := filepath.Join(dir, "ggml-base.en.bin")
	if err := os.WriteFile(model, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := resolveModel(ctx, dir, "", nil); err != nil || got != model {
		t.Errorf("dir: got %q, %v", got, err)
	}
	if got, err := resolveModel(ctx, model, "", nil); err != nil || got != model {
		t.Errorf("file: got %q, %v", got, err)
	}
	if _, err := resolveModel(ctx, filepath.Join(dir, "missing.bin"), "", nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		initial, hot, want string
	}{
		{"", "", ""},
		{"Meeting notes.", "", "Meeting notes."},
		{"", "OpenVINO, NPU", "OpenVINO, NPU"},
		{"Meeting notes.", "OpenVINO", "Meeting notes. OpenVINO"},
	}
	for _, tt := range tests {
		cfg := genai.DefaultWhisperGenerationConfig()
		cfg.InitialPrompt, cfg.Hotwords = tt.initial, tt.hot
		if got := prompt(cfg); got != tt.want {
			t.Errorf("prompt(%q, %q) = %q, want %q", tt.initial, tt.hot, got, tt.want)
		}
	}
}

func testSegments() []segment {
	return []segment{
		{
			start: 0, end: 1500 * time.Millisecond, text: " Hello world.",
			tokens: []token{{"[_BEG_]", 1}, {" Hello", 0.5}, {" world", 0.5}, {".", 1}, {"[_TT_75]", 1}},
		},
		{
			start: 1500 * time.Millisecond, end: 3 * time.Second, text: " Bye.",
			tokens: []token{{" Bye", 1}, {".", 1}},
		},
	}
}

func TestAssemble(t *testing.T) {
	cfg := genai.DefaultWhisperGenerationConfig()
	cfg.ReturnTimestamps = true
	res := assemble(testSegments(), cfg)

	if res.Texts[0] != " Hello world. Bye." {
		t.Errorf("text = %q", res.Texts[0])
	}
	if res.Raw.NumGeneratedTokens != 5 {
		t.Errorf("tokens = %d, want 5", res.Raw.NumGeneratedTokens)
	}
	if len(res.Chunks) != 2 || res.Chunks[1].StartTime != 1.5 || res.Chunks[1].EndTime != 3 {
		t.Errorf("chunks = %+v", res.Chunks)
	}
	want := float32(2 * math.Log(0.5) / 5)
	if d := res.Scores[0] - want; d > 1e-6 || d < -1e-6 {
		t.Errorf("score = %v, want %v", res.Scores[0], want)
	}

	cfg.ReturnTimestamps = false
	if res := assemble(testSegments(), cfg); res.Chunks != nil {
		t.Errorf("chunks without timestamps = %+v", res.Chunks)
	}
}

func TestAssembleTokenBudget(t *testing.T) {
	cfg := genai.DefaultWhisperGenerationConfig()
	cfg.ReturnTimestamps = true
	cfg.MaxNewTokens = 2
	res := assemble(testSegments(), cfg)
	if res.Texts[0] != " Hello world" {
		t.Errorf("text = %q", res.Texts[0])
	}
	if res.Raw.NumGeneratedTokens != 2 || len(res.Chunks) != 1 {
		t.Errorf("tokens = %d, chunks = %d", res.Raw.NumGeneratedTokens, len(res.Chunks))
	}

	cfg.MaxNewTokens = 4
	if res := assemble(testSegments(), cfg); res.Texts[0] != " Hello world. Bye" {
		t.Errorf("text = %q", res.Texts[0])
	}
}

func TestAssembleEmpty(t *testing.T) {
	res := assemble(nil, genai.DefaultWhisperGenerationConfig())
	if len(res.Texts) != 1 || res.Texts[0] != "" || res.Scores[0] != 0 {
		t.Errorf("res = %+v", res)
	}
}

func TestRegistered(t *testing.T) {
	found := false
	for _, n := range genai.SpeechBackends() {
		if n == Name {
			found = true
		}
	}
	if !found {
		t.Fatalf("%q not in %v", Name, genai.SpeechBackends())
	}
}
