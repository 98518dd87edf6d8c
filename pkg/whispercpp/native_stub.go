//go:build !whispercpp

package whispercpp

import (
	"context"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Available reports whether the native engine is compiled in.
func Available() bool { return false }

// New implements genai.SpeechFactory and always fails with ErrUnavailable.
func New(_ context.Context, _ genai.ModelSpec) (genai.SpeechEngine, error) {
	return nil, ErrUnavailable
}
