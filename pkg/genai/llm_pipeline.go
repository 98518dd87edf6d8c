package genai

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/soundprediction/go-genai-capi/internal/observe"
)

// LLMPipeline is a text generation pipeline over one text engine. It owns
// the chat history between StartChat and FinishChat.
type LLMPipeline struct {
	engine   TextEngine
	backend  string
	log      *slog.Logger
	metrics  *observe.Metrics
	loadTime time.Duration

	mu      sync.Mutex
	config  GenerationConfig
	inChat  bool
	history []Message

	busy      atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewLLMPipeline loads a text model on device through the selected backend.
func NewLLMPipeline(ctx context.Context, modelsPath, device string, props Properties, opts ...Option) (*LLMPipeline, error) {
	o := buildOptions(props, DefaultTextBackend, opts)
	factory, err := textFactory(o.backend)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("pipeline", "llm", "backend", o.backend)
	start := time.Now()
	engine, err := factory(ctx, ModelSpec{
		Path:       modelsPath,
		Device:     device,
		Properties: props.Without(PropBackend),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: load text model %q on %s: %w", modelsPath, device, err)
	}
	load := time.Since(start)
	o.metrics.RecordLoad(ctx, "text", o.backend, load)
	logger.Info("text pipeline ready", "models_path", modelsPath, "device", device, "load_time", load, "properties", props)

	return &LLMPipeline{
		engine:   engine,
		backend:  o.backend,
		log:      logger,
		metrics:  o.metrics,
		loadTime: load,
		config:   DefaultGenerationConfig(),
	}, nil
}

// Backend returns the name of the backend serving this pipeline.
func (p *LLMPipeline) Backend() string { return p.backend }

// GenerationConfig returns a copy of the current config.
func (p *LLMPipeline) GenerationConfig() GenerationConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config.Clone()
}

// SetGenerationConfig stores a copy of cfg.
func (p *LLMPipeline) SetGenerationConfig(cfg GenerationConfig) {
	p.mu.Lock()
	p.config = cfg.Clone()
	p.mu.Unlock()
}

// StartChat begins a chat session, discarding any previous one. A non-empty
// systemMessage becomes the first history entry.
func (p *LLMPipeline) StartChat(systemMessage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inChat = true
	p.history = p.history[:0]
	if systemMessage != "" {
		p.history = append(p.history, Message{Role: RoleSystem, Content: systemMessage})
	}
	p.log.Debug("chat started")
}

// FinishChat ends the chat session and drops its history.
func (p *LLMPipeline) FinishChat() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inChat = false
	p.history = nil
	p.log.Debug("chat finished")
}

// History returns a copy of the current chat history.
func (p *LLMPipeline) History() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.history)
}

// Generate runs the engine on prompt. A nil cfg uses the pipeline's config;
// streamer may be nil. Inside a chat session the prompt and reply are
// appended to the history unless the streamer cancelled.
func (p *LLMPipeline) Generate(ctx context.Context, prompt string, cfg *GenerationConfig, streamer Streamer) (*DecodedResults, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer p.busy.Store(false)
	if p.closed.Load() {
		return nil, ErrClosed
	}

	p.mu.Lock()
	c := p.config.Clone()
	if cfg != nil {
		c = cfg.Clone()
	}
	inChat := p.inChat
	history := slices.Clone(p.history)
	p.mu.Unlock()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	status := StreamRunning
	var wrapped Streamer
	if streamer != nil {
		wrapped = func(fragment string) StreamStatus {
			if status != StreamRunning {
				return status
			}
			status = streamer(fragment)
			return status
		}
	}

	ctx, span := observe.StartSpan(ctx, "genai.llm.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("genai.backend", p.backend),
		attribute.Bool("genai.chat", inChat),
		attribute.Int("genai.history", len(history)),
	)

	start := time.Now()
	res, err := p.engine.Generate(ctx, TextRequest{
		Prompt:   prompt,
		History:  history,
		Config:   c,
		Streamer: wrapped,
	})
	elapsed := time.Since(start)
	p.metrics.RecordGenerate(ctx, "text", p.backend, elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("genai: generate: %w", err)
	}
	if res == nil {
		res = &DecodedResults{}
	}

	for i, t := range res.Texts {
		res.Texts[i], _ = c.TruncateAtStop(t)
	}
	res.Raw.LoadTime = p.loadTime
	res.Raw.GenerateDurations = append(res.Raw.GenerateDurations, elapsed)
	res.PerfMetrics = res.Raw.Summarize()

	if inChat && status != StreamCancel {
		reply := ""
		if len(res.Texts) > 0 {
			reply = res.Texts[0]
		}
		p.mu.Lock()
		if p.inChat {
			p.history = append(p.history,
				Message{Role: RoleUser, Content: prompt},
				Message{Role: RoleAssistant, Content: reply},
			)
		}
		p.mu.Unlock()
	}

	observe.Logger(ctx, p.log).Debug("generated",
		"prompt_len", len(prompt), "texts", len(res.Texts), "stream_status", int(status), "elapsed", elapsed)
	return res, nil
}

// Close releases the engine. Safe to call multiple times.
func (p *LLMPipeline) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		err = p.engine.Close()
	})
	return err
}
