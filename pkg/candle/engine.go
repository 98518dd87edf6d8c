package candle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soundprediction/go-genai-capi/internal/modelhub"
	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Name is the backend name for both engine families.
const Name = "candle"

// Property keys.
const (
	PropCacheDir = "CACHE_DIR"
	PropSeed     = "SEED"
)

func init() {
	genai.RegisterSpeechBackend(Name, NewSpeechEngine)
	genai.RegisterTextBackend(Name, NewTextEngine)
}

// deviceName maps a pipeline device onto the binding's device string.
func deviceName(device string) (string, error) {
	switch strings.ToUpper(device) {
	case "CPU":
		return "cpu", nil
	case "GPU":
		return "cuda", nil
	case "AUTO":
		return "", nil
	}
	return "", fmt.Errorf("candle: %w %q", genai.ErrUnsupportedDevice, device)
}

// isLocalPath reports whether path names a filesystem location rather than
// a Hub repo id.
func isLocalPath(path string) bool {
	return filepath.IsAbs(path) || strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "."
}

// modelID accepts a Hub repo id, optionally written as hf://org/repo.
func modelID(path string) (string, error) {
	id := strings.Trim(strings.TrimPrefix(path, modelhub.Scheme), "/")
	if id == "" {
		return "", fmt.Errorf("candle: empty model id")
	}
	return id, nil
}

type engineSpec struct {
	model    string
	device   string
	cacheDir string
	seed     uint64
	log      *slog.Logger
}

func parseSpec(ctx context.Context, spec genai.ModelSpec) (engineSpec, error) {
	var es engineSpec
	var err error
	if es.device, err = deviceName(spec.Device); err != nil {
		return es, err
	}
	if isLocalPath(spec.Path) {
		if _, err := os.Stat(spec.Path); err != nil {
			return es, fmt.Errorf("candle: models_path: %w", err)
		}
	}
	if es.model, err = modelID(spec.Path); err != nil {
		return es, err
	}
	if v, ok := spec.Properties.Get(PropCacheDir); ok {
		es.cacheDir = v
	} else {
		es.cacheDir = os.Getenv(modelhub.EnvCacheDir)
	}
	if v, ok := spec.Properties.Get(PropSeed); ok && v != "" {
		if es.seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return es, fmt.Errorf("candle: invalid %s %q", PropSeed, v)
		}
	}
	es.log = spec.Logger
	if es.log == nil {
		es.log = slog.Default()
	}
	es.log = es.log.With("model", es.model)
	if err := Load(ctx); err != nil {
		return es, err
	}
	return es, nil
}

// SpeechEngine transcribes through a candle whisper pipeline. Samples are
// handed over as a temporary WAV file; writing it counts as feature
// extraction.
type SpeechEngine struct {
	pipe *WhisperPipeline
	log  *slog.Logger
}

// NewSpeechEngine implements genai.SpeechFactory.
func NewSpeechEngine(ctx context.Context, spec genai.ModelSpec) (genai.SpeechEngine, error) {
	es, err := parseSpec(ctx, spec)
	if err != nil {
		return nil, err
	}
	pipe, err := NewWhisperPipeline(WhisperConfig{ModelID: es.model, CacheDir: es.cacheDir, Device: es.device})
	if err != nil {
		return nil, err
	}
	es.log.Debug("whisper model loaded", "binding", Version())
	return &SpeechEngine{pipe: pipe, log: es.log}, nil
}

// Transcribe implements genai.SpeechEngine.
func (e *SpeechEngine) Transcribe(ctx context.Context, samples []float32, cfg genai.WhisperGenerationConfig) (*genai.WhisperDecodedResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	path, err := writeTempWAV(samples, genai.SampleRate)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	features := time.Since(start)

	out, err := e.pipe.Transcribe(path, TranscribeOpts{
		Language:   cfg.LanguageCode(),
		Task:       string(cfg.Task),
		Timestamps: cfg.ReturnTimestamps,
	})
	if err != nil {
		return nil, err
	}

	res := &genai.WhisperDecodedResults{
		Texts:  []string{out.Text},
		Scores: []float32{0},
		Raw: genai.RawPerfMetrics{
			FeaturesExtractionDurations: []time.Duration{features},
			NumGeneratedTokens:          len(strings.Fields(out.Text)),
		},
	}
	if cfg.ReturnTimestamps {
		for _, s := range out.Segments {
			res.Chunks = append(res.Chunks, genai.Chunk{
				StartTime: float32(s.Start),
				EndTime:   float32(s.End),
				Text:      s.Text,
			})
		}
	}
	return res, nil
}

// Close implements genai.SpeechEngine.
func (e *SpeechEngine) Close() error {
	e.pipe.Close()
	return nil
}

// TextEngine generates through a candle causal-LM pipeline. The binding
// returns the whole reply at once, so a streamer sees a single fragment.
type TextEngine struct {
	pipe *TextGenerationPipeline
	seed uint64
	log  *slog.Logger
}

// NewTextEngine implements genai.TextFactory.
func NewTextEngine(ctx context.Context, spec genai.ModelSpec) (genai.TextEngine, error) {
	es, err := parseSpec(ctx, spec)
	if err != nil {
		return nil, err
	}
	pipe, err := NewTextGenerationPipeline(TextGenerationConfig{ModelID: es.model, CacheDir: es.cacheDir, Device: es.device})
	if err != nil {
		return nil, err
	}
	es.log.Debug("text model loaded", "binding", Version())
	return &TextEngine{pipe: pipe, seed: es.seed, log: es.log}, nil
}

// Generate implements genai.TextEngine.
func (e *TextEngine) Generate(ctx context.Context, req genai.TextRequest) (*genai.DecodedResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msgs := req.Messages()
	prompt := chatPrompt(msgs)
	input := len(strings.Fields(prompt))

	start := time.Now()
	text, err := e.pipe.Generate(prompt, generateOpts(req.Config, input, e.seed))
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	req.Emit(text)

	return &genai.DecodedResults{
		Texts:  []string{text},
		Scores: []float32{0},
		Raw: genai.RawPerfMetrics{
			TokenTimes:         []time.Duration{elapsed},
			NumGeneratedTokens: len(strings.Fields(text)),
			NumInputTokens:     input,
		},
	}, nil
}

// Close implements genai.TextEngine.
func (e *TextEngine) Close() error {
	e.pipe.Close()
	return nil
}

// chatPrompt renders the conversation in ChatML. A lone user turn is passed
// through unchanged so plain completion models keep working.
func chatPrompt(msgs []genai.Message) string {
	if len(msgs) == 1 && msgs[0].Role == genai.RoleUser {
		return msgs[0].Content
	}
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString("<|im_start|>")
		b.WriteString(m.Role)
		b.WriteString("\n")
		b.WriteString(m.Content)
		b.WriteString("<|im_end|>\n")
	}
	b.WriteString("<|im_start|>assistant\n")
	return b.String()
}

// generateOpts converts a generation config. Word counts stand in for
// token counts when applying max_length.
func generateOpts(c genai.GenerationConfig, inputWords int, seed uint64) GenerateOpts {
	opts := GenerateOpts{
		MaxTokens:     c.TokenBudget(inputWords),
		RepeatPenalty: float64(c.RepetitionPenalty),
		Seed:          seed,
	}
	if c.DoSample {
		opts.Temperature = float64(c.Temperature)
		opts.TopP = float64(c.TopP)
	}
	return opts
}
