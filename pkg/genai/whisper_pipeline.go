package genai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/soundprediction/go-genai-capi/internal/observe"
)

// WhisperPipeline is a speech recognition pipeline over one speech engine.
type WhisperPipeline struct {
	engine   SpeechEngine
	backend  string
	log      *slog.Logger
	metrics  *observe.Metrics
	loadTime time.Duration

	mu     sync.Mutex
	config WhisperGenerationConfig

	busy      atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewWhisperPipeline loads a speech model on device through the selected backend.
func NewWhisperPipeline(ctx context.Context, modelsPath, device string, props Properties, opts ...Option) (*WhisperPipeline, error) {
	o := buildOptions(props, DefaultSpeechBackend, opts)
	factory, err := speechFactory(o.backend)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("pipeline", "whisper", "backend", o.backend)
	start := time.Now()
	engine, err := factory(ctx, ModelSpec{
		Path:       modelsPath,
		Device:     device,
		Properties: props.Without(PropBackend),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: load speech model %q on %s: %w", modelsPath, device, err)
	}
	load := time.Since(start)
	o.metrics.RecordLoad(ctx, "speech", o.backend, load)
	logger.Info("speech pipeline ready", "models_path", modelsPath, "device", device, "load_time", load, "properties", props)

	return &WhisperPipeline{
		engine:   engine,
		backend:  o.backend,
		log:      logger,
		metrics:  o.metrics,
		loadTime: load,
		config:   DefaultWhisperGenerationConfig(),
	}, nil
}

// Backend returns the name of the backend serving this pipeline.
func (p *WhisperPipeline) Backend() string { return p.backend }

// GenerationConfig returns a copy of the current config.
func (p *WhisperPipeline) GenerationConfig() WhisperGenerationConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config.Clone()
}

// SetGenerationConfig stores a copy of cfg.
func (p *WhisperPipeline) SetGenerationConfig(cfg WhisperGenerationConfig) {
	p.mu.Lock()
	p.config = cfg.Clone()
	p.mu.Unlock()
}

// Generate transcribes samples. A nil cfg uses the pipeline's config.
// It returns ErrBusy if another Generate on p is still running.
func (p *WhisperPipeline) Generate(ctx context.Context, samples []float32, cfg *WhisperGenerationConfig) (*WhisperDecodedResults, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.busy.Store(false)
	if p.closed.Load() {
		return nil, ErrClosed
	}

	c := p.GenerationConfig()
	if cfg != nil {
		c = cfg.Clone()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observe.StartSpan(ctx, "genai.whisper.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("genai.backend", p.backend),
		attribute.Int("genai.samples", len(samples)),
		attribute.String("genai.task", string(c.Task)),
	)

	start := time.Now()
	res, err := p.engine.Transcribe(ctx, samples, c)
	elapsed := time.Since(start)
	p.metrics.RecordGenerate(ctx, "speech", p.backend, elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("genai: transcribe: %w", err)
	}
	if res == nil {
		res = &WhisperDecodedResults{}
	}

	res.Raw.LoadTime = p.loadTime
	res.Raw.GenerateDurations = append(res.Raw.GenerateDurations, elapsed)
	res.PerfMetrics = res.Raw.Summarize()
	observe.Logger(ctx, p.log).Debug("transcribed",
		"samples", len(samples), "texts", len(res.Texts), "chunks", len(res.Chunks), "elapsed", elapsed)
	return res, nil
}

// Close releases the engine. Safe to call multiple times.
func (p *WhisperPipeline) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		err = p.engine.Close()
	})
	return err
}
