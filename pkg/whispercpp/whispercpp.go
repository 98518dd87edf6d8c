// Package whispercpp registers the "whispercpp" speech backend, which runs
// ggml whisper models through the whisper.cpp Go bindings.
//
// The native engine is only compiled with the whispercpp build tag, since
// it needs libwhisper and its headers at link time:
//
//	CGO_CFLAGS=-I/path/to/whisper.cpp/include \
//	CGO_LDFLAGS=-L/path/to/whisper.cpp/build/src \
//	go build -tags whispercpp -buildmode=c-shared ./cmd/libgenai
//
// Without the tag the backend is still registered and fails pipeline
// creation with ErrUnavailable.
//
// models_path is a ggml model file, a directory holding one, or an
// hf://org/repo/file reference. Properties: NUM_THREADS, CACHE_DIR.
package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soundprediction/go-genai-capi/internal/modelhub"
	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Name is the backend name.
const Name = "whispercpp"

// Property keys.
const (
	PropNumThreads = "NUM_THREADS"
	PropCacheDir   = "CACHE_DIR"
)

// ErrUnavailable is returned when the library was built without whisper.cpp.
var ErrUnavailable = errors.New("whispercpp: native backend not compiled in (build with -tags whispercpp)")

func init() {
	genai.RegisterSpeechBackend(Name, New)
}

type options struct {
	threads  uint
	cacheDir string
}

func parseOptions(spec genai.ModelSpec) (options, error) {
	var o options
	if v, ok := spec.Properties.Get(PropNumThreads); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil || n == 0 {
			return o, fmt.Errorf("whispercpp: invalid %s %q", PropNumThreads, v)
		}
		o.threads = uint(n)
	}
	if v, ok := spec.Properties.Get(PropCacheDir); ok {
		o.cacheDir = v
	}
	return o, nil
}

// whisper.cpp runs on the CPU, offloading to a GPU when built with one.
func checkDevice(device string) error {
	switch strings.ToUpper(device) {
	case "CPU", "GPU", "AUTO":
		return nil
	}
	return fmt.Errorf("whispercpp: %w %q", genai.ErrUnsupportedDevice, device)
}

// resolveModel turns models_path into a model file.
func resolveModel(ctx context.Context, path, cacheDir string, logger *slog.Logger) (string, error) {
	if modelhub.IsRef(path) {
		return modelhub.New(modelhub.WithCacheDir(cacheDir), modelhub.WithLogger(logger)).Resolve(ctx, path)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("whispercpp: model: %w", err)
	}
	if !fi.IsDir() {
		return path, nil
	}
	for _, pattern := range []string{"ggml-*.bin", "*.bin"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return "", err
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("whispercpp: no ggml model (*.bin) in %s", path)
}

// prompt merges the initial prompt and hotwords; whisper.cpp has a single
// prompt slot for both.
func prompt(cfg genai.WhisperGenerationConfig) string {
	switch {
	case cfg.InitialPrompt == "":
		return cfg.Hotwords
	case cfg.Hotwords == "":
		return cfg.InitialPrompt
	}
	return cfg.InitialPrompt + " " + cfg.Hotwords
}

type token struct {
	text string
	p    float32
}

type segment struct {
	start, end time.Duration
	text       string
	tokens     []token
}

func special(t string) bool {
	return strings.HasPrefix(t, "[_") || strings.HasPrefix(t, "<|")
}

// assemble builds the results from decoded segments, honouring
// max_new_tokens and return_timestamps. The score is the mean token
// log-probability.
func assemble(segs []segment, cfg genai.WhisperGenerationConfig) *genai.WhisperDecodedResults {
	var (
		text   strings.Builder
		chunks []genai.Chunk
		logp   float64
		used   uint
	)
	for _, s := range segs {
		var words []token
		for _, tk := range s.tokens {
			if !special(tk.text) {
				words = append(words, tk)
			}
		}
		body, full := s.text, true
		if cfg.MaxNewTokens != genai.Unbounded && used+uint(len(words)) > cfg.MaxNewTokens {
			words = words[:cfg.MaxNewTokens-used]
			var b strings.Builder
			for _, tk := range words {
				b.WriteString(tk.text)
			}
			body, full = b.String(), false
		}
		used += uint(len(words))
		for _, tk := range words {
			if tk.p > 0 {
				logp += math.Log(float64(tk.p))
			}
		}
		text.WriteString(body)
		if cfg.ReturnTimestamps && body != "" {
			chunks = append(chunks, genai.Chunk{
				StartTime: float32(s.start.Seconds()),
				EndTime:   float32(s.end.Seconds()),
				Text:      body,
			})
		}
		if !full {
			break
		}
	}

	var score float32
	if used > 0 {
		score = float32(logp / float64(used))
	}
	return &genai.WhisperDecodedResults{
		Texts:  []string{text.String()},
		Scores: []float32{score},
		Chunks: chunks,
		Raw:    genai.RawPerfMetrics{NumGeneratedTokens: int(used)},
	}
}
