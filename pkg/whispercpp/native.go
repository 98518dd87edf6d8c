//go:build whispercpp

package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Available reports whether the native engine is compiled in.
func Available() bool { return true }

// Engine transcribes with one loaded whisper.cpp model. A fresh decoding
// context is created per call; calls are serialized.
type Engine struct {
	mu      sync.Mutex
	model   whisperlib.Model
	threads uint
	log     *slog.Logger
}

// New implements genai.SpeechFactory.
func New(ctx context.Context, spec genai.ModelSpec) (genai.SpeechEngine, error) {
	if err := checkDevice(spec.Device); err != nil {
		return nil, err
	}
	opts, err := parseOptions(spec)
	if err != nil {
		return nil, err
	}
	logger := spec.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path, err := resolveModel(ctx, spec.Path, opts.cacheDir, logger)
	if err != nil {
		return nil, err
	}
	model, err := whisperlib.New(path)
	if err != nil {
		return nil, fmt.Errorf("whispercpp: load model %q: %w", path, err)
	}
	logger = logger.With("model", path)
	logger.Debug("model loaded", "multilingual", model.IsMultilingual(), "threads", opts.threads)
	return &Engine{model: model, threads: opts.threads, log: logger}, nil
}

// Transcribe implements genai.SpeechEngine. Feature extraction is timed up to
// the point the encoder starts.
func (e *Engine) Transcribe(ctx context.Context, samples []float32, cfg genai.WhisperGenerationConfig) (*genai.WhisperDecodedResults, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, genai.ErrClosed
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("whispercpp: create context: %w", err)
	}

	lang := cfg.LanguageCode()
	if e.model.IsMultilingual() {
		if lang == "" {
			lang = "auto"
		}
		if err := wctx.SetLanguage(lang); err != nil {
			return nil, fmt.Errorf("whispercpp: %w: language %q: %v", genai.ErrInvalidConfig, lang, err)
		}
	} else if lang != "" && lang != "en" {
		e.log.Warn("english-only model, ignoring language", "language", lang)
	}
	wctx.SetTranslate(cfg.Task == genai.TaskTranslate)
	wctx.SetTokenTimestamps(cfg.ReturnTimestamps)
	if e.threads > 0 {
		wctx.SetThreads(e.threads)
	}
	if p := prompt(cfg); p != "" {
		wctx.SetInitialPrompt(p)
	}

	start := time.Now()
	var features time.Duration
	encoderBegin := func() bool {
		features = time.Since(start)
		return ctx.Err() == nil
	}
	if err := wctx.Process(samples, encoderBegin, nil, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("whispercpp: process audio: %w", err)
	}

	var segs []segment
	for {
		s, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("whispercpp: read segment: %w", err)
		}
		seg := segment{start: s.Start, end: s.End, text: s.Text}
		for _, tk := range s.Tokens {
			seg.tokens = append(seg.tokens, token{text: tk.Text, p: tk.P})
		}
		segs = append(segs, seg)
	}

	res := assemble(segs, cfg)
	res.Raw.FeaturesExtractionDurations = []time.Duration{features}
	e.log.Debug("transcribed", "samples", len(samples), "segments", len(segs), "language", wctx.DetectedLanguage())
	return res, nil
}

// Close implements genai.SpeechEngine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Close()
	e.model = nil
	return err
}
