// Package stub registers the "stub" speech and text backends. They produce
// deterministic placeholder output and load nothing from models_path beyond
// checking that it exists. They are never picked by default; select them with
// GENAI_BACKEND=stub or the bridge configuration file.
package stub

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Name is the backend name both engines register under.
const Name = "stub"

// silenceRMS is the level below which audio counts as blank.
const silenceRMS = 1e-3

func init() {
	genai.RegisterSpeechBackend(Name, NewSpeechEngine)
	genai.RegisterTextBackend(Name, NewTextEngine)
}

func checkDevice(device string) error {
	switch strings.ToUpper(device) {
	case "CPU", "GPU", "NPU", "AUTO":
		return nil
	}
	return fmt.Errorf("stub: %w %q", genai.ErrUnsupportedDevice, device)
}

func checkSpec(spec genai.ModelSpec) error {
	if err := checkDevice(spec.Device); err != nil {
		return err
	}
	if _, err := os.Stat(spec.Path); err != nil {
		return fmt.Errorf("stub: models_path: %w", err)
	}
	return nil
}

// SpeechEngine reports the length and level of the audio it receives.
type SpeechEngine struct {
	log    *slog.Logger
	device string
}

// NewSpeechEngine implements genai.SpeechFactory.
func NewSpeechEngine(_ context.Context, spec genai.ModelSpec) (genai.SpeechEngine, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}
	logger := spec.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SpeechEngine{
		log:    logger.With("models_path", spec.Path),
		device: strings.ToUpper(spec.Device),
	}, nil
}

// Transcribe implements genai.SpeechEngine.
func (e *SpeechEngine) Transcribe(ctx context.Context, samples []float32, cfg genai.WhisperGenerationConfig) (*genai.WhisperDecodedResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	rms := rootMeanSquare(samples)
	features := time.Since(start)

	seconds := float32(len(samples)) / genai.SampleRate
	text := " [BLANK_AUDIO]"
	if rms >= silenceRMS {
		text = fmt.Sprintf(" [stub:%s] %.2fs of audio, task=%s", e.device, seconds, cfg.Task)
		if code := cfg.LanguageCode(); code != "" {
			text += ", language=" + code
		}
	}

	res := &genai.WhisperDecodedResults{
		Texts:  []string{text},
		Scores: []float32{0},
		Raw: genai.RawPerfMetrics{
			FeaturesExtractionDurations: []time.Duration{features},
			NumGeneratedTokens:          len(strings.Fields(text)),
		},
	}
	if cfg.ReturnTimestamps {
		res.Chunks = []genai.Chunk{{StartTime: 0, EndTime: seconds, Text: text}}
	}
	e.log.Debug("stub transcript", "samples", len(samples), "rms", rms)
	return res, nil
}

// Close implements genai.SpeechEngine.
func (e *SpeechEngine) Close() error { return nil }

// TextEngine echoes the prompt back word by word.
type TextEngine struct {
	log *slog.Logger
}

// NewTextEngine implements genai.TextFactory.
func NewTextEngine(_ context.Context, spec genai.ModelSpec) (genai.TextEngine, error) {
	if err := checkSpec(spec); err != nil {
		return nil, err
	}
	logger := spec.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TextEngine{log: logger.With("models_path", spec.Path)}, nil
}

// Generate implements genai.TextEngine. The reply is the prompt's words,
// capped by the token budget and cut at the first stop string. Each word is
// one token and one streamed fragment.
func (e *TextEngine) Generate(ctx context.Context, req genai.TextRequest) (*genai.DecodedResults, error) {
	start := time.Now()
	input := 0
	for _, m := range req.Messages() {
		input += len(strings.Fields(m.Content))
	}
	words := strings.Fields(req.Prompt)
	if budget := req.Config.TokenBudget(input); budget > 0 && len(words) > budget {
		words = words[:budget]
	}

	var (
		reply string
		times []time.Duration
	)
	for i, w := range words {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frag := w
		if i > 0 {
			frag = " " + w
		}
		if cut, hit := req.Config.TruncateAtStop(reply + frag); hit {
			if len(cut) > len(reply) {
				req.Emit(cut[len(reply):])
				times = append(times, time.Since(start))
			}
			reply = cut
			break
		}
		reply += frag
		times = append(times, time.Since(start))
		if req.Emit(frag) != genai.StreamRunning {
			break
		}
	}

	e.log.Debug("stub reply", "history", len(req.History), "words", len(times))
	return &genai.DecodedResults{
		Texts:  []string{reply},
		Scores: []float32{0},
		Raw: genai.RawPerfMetrics{
			TokenTimes:         times,
			NumGeneratedTokens: len(times),
			NumInputTokens:     input,
		},
	}, nil
}

// Close implements genai.TextEngine.
func (e *TextEngine) Close() error { return nil }

func rootMeanSquare(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
