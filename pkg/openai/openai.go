// Package openai registers the "openai" text backend. It forwards
// generation to any server speaking the OpenAI chat completions protocol:
// the hosted API, a model server exposing /v3 or /v1, llama.cpp's server
// and the like.
//
// Properties understood (all optional):
//
//	BASE_URL  endpoint root, for example http://localhost:8000/v3/
//	API_KEY   bearer token; OPENAI_API_KEY is used when unset
//	MODEL     model name; defaults to the models_path argument
//	TIMEOUT   per-request timeout as a Go duration, for example 30s
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// Name is the backend name.
const Name = "openai"

// Property keys.
const (
	PropBaseURL = "BASE_URL"
	PropAPIKey  = "API_KEY"
	PropModel   = "MODEL"
	PropTimeout = "TIMEOUT"
)

func init() {
	genai.RegisterTextBackend(Name, New)
}

// Engine is a genai.TextEngine backed by a chat completions endpoint.
type Engine struct {
	client oai.Client
	model  string
	log    *slog.Logger
}

// New implements genai.TextFactory. The device is informational: the remote
// server decides where the model runs.
func New(_ context.Context, spec genai.ModelSpec) (genai.TextEngine, error) {
	model := spec.Path
	if m, ok := spec.Properties.Get(PropModel); ok && m != "" {
		model = m
	}
	if model == "" {
		return nil, errors.New("openai: model must not be empty")
	}

	var opts []option.RequestOption
	if key, ok := spec.Properties.Get(PropAPIKey); ok && key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if u, ok := spec.Properties.Get(PropBaseURL); ok && u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	if t, ok := spec.Properties.Get(PropTimeout); ok && t != "" {
		d, err := time.ParseDuration(t)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("openai: invalid %s %q", PropTimeout, t)
		}
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: d}))
	}
	return NewWithOptions(model, spec.Logger, opts...), nil
}

// NewWithOptions builds an engine from explicit client options.
func NewWithOptions(model string, logger *slog.Logger, opts ...option.RequestOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client: oai.NewClient(opts...),
		model:  model,
		log:    logger.With("model", model),
	}
}

// Generate implements genai.TextEngine. With a streamer attached the reply
// is streamed and each delta is one fragment; generation stops as soon as the
// streamer asks for it.
func (e *Engine) Generate(ctx context.Context, req genai.TextRequest) (*genai.DecodedResults, error) {
	params := e.buildParams(req)
	if req.Streamer != nil {
		return e.stream(ctx, req, params)
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices in response")
	}
	elapsed := time.Since(start)

	res := &genai.DecodedResults{
		Raw: genai.RawPerfMetrics{
			TokenTimes:         []time.Duration{elapsed},
			NumGeneratedTokens: int(resp.Usage.CompletionTokens),
			NumInputTokens:     int(resp.Usage.PromptTokens),
		},
	}
	for _, c := range resp.Choices {
		res.Texts = append(res.Texts, c.Message.Content)
		res.Scores = append(res.Scores, 0)
	}
	e.log.Debug("completion", "choices", len(resp.Choices), "usage", resp.Usage.TotalTokens, "elapsed", elapsed)
	return res, nil
}

func (e *Engine) stream(ctx context.Context, req genai.TextRequest, params oai.ChatCompletionNewParams) (*genai.DecodedResults, error) {
	start := time.Now()
	stream := e.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		reply strings.Builder
		times []time.Duration
	)
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		frag := chunk.Choices[0].Delta.Content
		if frag == "" {
			continue
		}
		reply.WriteString(frag)
		times = append(times, time.Since(start))
		if req.Emit(frag) != genai.StreamRunning {
			e.log.Debug("stream stopped by caller", "fragments", len(times))
			break
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai: stream: %w", err)
	}

	return &genai.DecodedResults{
		Texts:  []string{reply.String()},
		Scores: []float32{0},
		Raw: genai.RawPerfMetrics{
			TokenTimes:         times,
			NumGeneratedTokens: len(times),
		},
	}, nil
}

func (e *Engine) buildParams(req genai.TextRequest) oai.ChatCompletionNewParams {
	msgs := req.Messages()
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, convertMessage(m))
	}

	c := req.Config
	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(e.model),
		Messages: messages,
	}
	if c.DoSample {
		params.Temperature = param.NewOpt(float64(c.Temperature))
		params.TopP = param.NewOpt(float64(c.TopP))
	} else {
		params.Temperature = param.NewOpt(0.0)
	}
	if c.MaxNewTokens != genai.Unbounded {
		params.MaxCompletionTokens = param.NewOpt(int64(c.MaxNewTokens))
	}
	if c.PresencePenalty != 0 {
		params.PresencePenalty = param.NewOpt(float64(c.PresencePenalty))
	}
	if c.FrequencyPenalty != 0 {
		params.FrequencyPenalty = param.NewOpt(float64(c.FrequencyPenalty))
	}
	// Stop strings are applied by the pipeline after generation.
	return params
}

func convertMessage(m genai.Message) oai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case genai.RoleSystem:
		return oai.SystemMessage(m.Content)
	case genai.RoleAssistant:
		asst := oai.ChatCompletionAssistantMessageParam{}
		asst.Content.OfString = oai.String(m.Content)
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
	default:
		return oai.UserMessage(m.Content)
	}
}

// Close implements genai.TextEngine.
func (e *Engine) Close() error { return nil }
