//go:build !whispercpp

package whispercpp

import (
	"context"
	"errors"
	"testing"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

func TestStubUnavailable(t *testing.T) {
	if Available() {
		t.Fatal("Available() = true without the whispercpp tag")
	}
	_, err := genai.NewWhisperPipeline(context.Background(), "/models/ggml-base.bin", "CPU", nil, genai.WithBackend(Name))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}
