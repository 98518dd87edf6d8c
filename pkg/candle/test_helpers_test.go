package candle

import (
	"math"
	"os"
	"testing"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// sineSamples returns a 440 Hz tone at half scale.
func sineSamples(seconds float64) []float32 {
	n := int(seconds * genai.SampleRate)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / genai.SampleRate
		out[i] = float32(0.5 * math.Sin(2*math.Pi*440*t))
	}
	return out
}

// requireLibrary skips unless CANDLE_LIB_PATH names a loadable binding.
func requireLibrary(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping model test in short mode")
	}
	if os.Getenv(EnvLibPath) == "" {
		t.Skip(EnvLibPath + " not set")
	}
	if err := Init(); err != nil {
		t.Skipf("candle library not loadable: %v", err)
	}
}
