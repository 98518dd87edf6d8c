//go:build whispercpp

package whispercpp

import (
	"context"
	"os"
	"testing"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Set WHISPER_MODEL_PATH to a ggml model to run.
func TestNativeSilence(t *testing.T) {
	path := os.Getenv("WHISPER_MODEL_PATH")
	if path == "" {
		t.Skip("WHISPER_MODEL_PATH not set")
	}
	ctx := context.Background()
	pipe, err := genai.NewWhisperPipeline(ctx, path, "CPU", nil, genai.WithBackend(Name))
	if err != nil {
		t.Fatalf("NewWhisperPipeline: %v", err)
	}
	defer pipe.Close()

	cfg := pipe.GenerationConfig()
	cfg.ReturnTimestamps = true
	res, err := pipe.Generate(ctx, make([]float32, genai.SampleRate), &cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Texts) != 1 || len(res.Scores) != 1 {
		t.Fatalf("texts = %q, scores = %v", res.Texts, res.Scores)
	}
	if res.PerfMetrics.LoadTime <= 0 {
		t.Errorf("load time = %v", res.PerfMetrics.LoadTime)
	}
	t.Logf("transcript %q, chunks %d", res.Texts[0], len(res.Chunks))
}
