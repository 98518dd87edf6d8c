// Package anyllm registers the "anyllm" text backend, which reaches local
// and hosted model servers through any-llm-go's provider adapters.
//
// Properties understood (all optional):
//
//	PROVIDER  ollama (default), openai, llamacpp, llamafile, anthropic,
//	          gemini, deepseek, mistral or groq
//	BASE_URL  server root for self-hosted providers
//	API_KEY   provider key; the provider's own environment variable is used when unset
//	MODEL     model name; defaults to the models_path argument
package anyllm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Name is the backend name.
const Name = "anyllm"

// DefaultProvider is used when PROVIDER is not given.
const DefaultProvider = "ollama"

// Property keys.
const (
	PropProvider = "PROVIDER"
	PropBaseURL  = "BASE_URL"
	PropAPIKey   = "API_KEY"
	PropModel    = "MODEL"
)

func init() {
	genai.RegisterTextBackend(Name, New)
}

// Engine is a genai.TextEngine over an any-llm-go provider.
type Engine struct {
	backend  anyllmlib.Provider
	provider string
	model    string
	log      *slog.Logger
}

// New implements genai.TextFactory.
func New(_ context.Context, spec genai.ModelSpec) (genai.TextEngine, error) {
	provider := DefaultProvider
	if p, ok := spec.Properties.Get(PropProvider); ok && p != "" {
		provider = strings.ToLower(p)
	}
	model := spec.Path
	if m, ok := spec.Properties.Get(PropModel); ok && m != "" {
		model = m
	}

	var opts []anyllmlib.Option
	if key, ok := spec.Properties.Get(PropAPIKey); ok && key != "" {
		opts = append(opts, anyllmlib.WithAPIKey(key))
	}
	if u, ok := spec.Properties.Get(PropBaseURL); ok && u != "" {
		opts = append(opts, anyllmlib.WithBaseURL(u))
	}
	return NewEngine(provider, model, spec.Logger, opts...)
}

// NewEngine builds an engine for a named provider.
func NewEngine(provider, model string, logger *slog.Logger, opts ...anyllmlib.Option) (*Engine, error) {
	if model == "" {
		return nil, errors.New("anyllm: model must not be empty")
	}
	backend, err := createBackend(provider, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", provider, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		backend:  backend,
		provider: provider,
		model:    model,
		log:      logger.With("provider", provider, "model", model),
	}, nil
}

func createBackend(provider string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch provider {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q", provider)
	}
}

// Generate implements genai.TextEngine.
func (e *Engine) Generate(ctx context.Context, req genai.TextRequest) (*genai.DecodedResults, error) {
	params := e.buildParams(req)
	if req.Streamer != nil {
		return e.stream(ctx, req, params)
	}

	start := time.Now()
	resp, err := e.backend.Completion(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("anyllm: empty choices in response")
	}

	res := &genai.DecodedResults{
		Raw: genai.RawPerfMetrics{TokenTimes: []time.Duration{time.Since(start)}},
	}
	for _, c := range resp.Choices {
		res.Texts = append(res.Texts, c.Message.ContentString())
		res.Scores = append(res.Scores, 0)
	}
	if resp.Usage != nil {
		res.Raw.NumInputTokens = resp.Usage.PromptTokens
		res.Raw.NumGeneratedTokens = resp.Usage.CompletionTokens
	}
	return res, nil
}

// stream forwards deltas until the provider finishes or the streamer stops.
// Stopping cancels the request; the channels are drained either way.
func (e *Engine) stream(ctx context.Context, req genai.TextRequest, params anyllmlib.CompletionParams) (*genai.DecodedResults, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	chunks, errs := e.backend.CompletionStream(ctx, params)

	var (
		reply   strings.Builder
		times   []time.Duration
		stopped bool
	)
	for chunk := range chunks {
		if stopped || len(chunk.Choices) == 0 {
			continue
		}
		frag := chunk.Choices[0].Delta.Content
		if frag == "" {
			continue
		}
		reply.WriteString(frag)
		times = append(times, time.Since(start))
		if req.Emit(frag) != genai.StreamRunning {
			stopped = true
			cancel()
		}
	}
	if err := <-errs; err != nil && !(stopped && errors.Is(err, context.Canceled)) {
		return nil, fmt.Errorf("anyllm: stream: %w", err)
	}
	e.log.Debug("stream finished", "fragments", len(times), "stopped", stopped)

	return &genai.DecodedResults{
		Texts:  []string{reply.String()},
		Scores: []float32{0},
		Raw: genai.RawPerfMetrics{
			TokenTimes:         times,
			NumGeneratedTokens: len(times),
		},
	}, nil
}

func (e *Engine) buildParams(req genai.TextRequest) anyllmlib.CompletionParams {
	msgs := req.Messages()
	messages := make([]anyllmlib.Message, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, anyllmlib.Message{Role: m.Role, Content: m.Content})
	}

	params := anyllmlib.CompletionParams{
		Model:    e.model,
		Messages: messages,
	}
	temp := 0.0
	if req.Config.DoSample {
		temp = float64(req.Config.Temperature)
	}
	params.Temperature = &temp
	if n := req.Config.MaxNewTokens; n != genai.Unbounded {
		mt := int(min(n, uint(1<<31-1)))
		params.MaxTokens = &mt
	}
	return params
}

// Close implements genai.TextEngine.
func (e *Engine) Close() error { return nil }
