package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/openai/openai-go/option"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

type chatRequest struct {
	Model       string   `json:"model"`
	Stream      bool     `json:"stream"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int64   `json:"max_completion_tokens"`
	Messages    []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

type fakeServer struct {
	mu   sync.Mutex
	last chatRequest
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		f.mu.Lock()
		f.last = req
		f.mu.Unlock()

		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
"choices":[{"index":0,"message":{"role":"assistant","content":"hello there"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":7,"completion_tokens":2,"total_tokens":9}}`)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, word := range []string{"one", " two", " three", " four"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", word)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
}

func (f *fakeServer) request() chatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func newTestEngine(t *testing.T) (*Engine, *fakeServer) {
	t.Helper()
	fake := &fakeServer{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := NewWithOptions("test-model", logger,
		option.WithBaseURL(srv.URL+"/v1/"),
		option.WithAPIKey("test"),
		option.WithMaxRetries(0),
	)
	return e, fake
}

func TestGenerateCompletion(t *testing.T) {
	e, fake := newTestEngine(t)
	cfg := genai.DefaultGenerationConfig()
	cfg.MaxNewTokens = 16

	res, err := e.Generate(context.Background(), genai.TextRequest{
		Prompt:  "hi",
		History: []genai.Message{{Role: genai.RoleSystem, Content: "be brief"}},
		Config:  cfg,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Texts) != 1 || res.Texts[0] != "hello there" {
		t.Fatalf("texts = %q", res.Texts)
	}
	if res.Raw.NumInputTokens != 7 || res.Raw.NumGeneratedTokens != 2 {
		t.Errorf("usage = %d/%d, want 7/2", res.Raw.NumInputTokens, res.Raw.NumGeneratedTokens)
	}

	req := fake.request()
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens == nil || *req.MaxTokens != 16 {
		t.Errorf("max_completion_tokens = %v, want 16", req.MaxTokens)
	}
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("greedy decoding should send temperature 0, got %v", req.Temperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestGenerateStreamStops(t *testing.T) {
	e, fake := newTestEngine(t)
	var got []string
	res, err := e.Generate(context.Background(), genai.TextRequest{
		Prompt: "count",
		History: []genai.Message{
			{Role: genai.RoleUser, Content: "a"},
			{Role: genai.RoleAssistant, Content: "b"},
		},
		Config: genai.DefaultGenerationConfig(),
		Streamer: func(fragment string) genai.StreamStatus {
			got = append(got, fragment)
			if len(got) == 2 {
				return genai.StreamStop
			}
			return genai.StreamRunning
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Texts[0] != "one two" {
		t.Errorf("text = %q, want %q", res.Texts[0], "one two")
	}
	if len(got) != 2 || res.Raw.NumGeneratedTokens != 2 || len(res.Raw.TokenTimes) != 2 {
		t.Errorf("fragments = %q, tokens = %d", got, res.Raw.NumGeneratedTokens)
	}
	req := fake.request()
	if !req.Stream {
		t.Error("expected a streaming request")
	}
	if req.MaxTokens != nil {
		t.Errorf("unbounded config should not send max_completion_tokens, got %d", *req.MaxTokens)
	}
	if len(req.Messages) != 3 || req.Messages[1].Role != "assistant" {
		t.Errorf("messages = %+v", req.Messages)
	}
}

func TestSamplingParams(t *testing.T) {
	e := NewWithOptions("m", nil)
	cfg := genai.DefaultGenerationConfig()
	cfg.DoSample = true
	cfg.Temperature = 0.7
	cfg.TopP = 0.9
	cfg.PresencePenalty = 0.5

	p := e.buildParams(genai.TextRequest{Prompt: "x", Config: cfg})
	if got := p.Temperature.Value; got < 0.69 || got > 0.71 {
		t.Errorf("temperature = %v", got)
	}
	if got := p.TopP.Value; got < 0.89 || got > 0.91 {
		t.Errorf("top_p = %v", got)
	}
	if p.PresencePenalty.Value != 0.5 {
		t.Errorf("presence_penalty = %v", p.PresencePenalty.Value)
	}
	if len(p.Messages) != 1 || p.Messages[0].OfUser == nil {
		t.Errorf("messages = %+v", p.Messages)
	}
}

func TestFactoryProperties(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, genai.ModelSpec{}); err == nil {
		t.Error("expected error for empty model")
	}
	props, _ := genai.ParseProperties([]string{PropTimeout, "soon"})
	if _, err := New(ctx, genai.ModelSpec{Path: "m", Properties: props}); err == nil {
		t.Error("expected error for bad timeout")
	}
	props, _ = genai.ParseProperties([]string{PropModel, "override", PropTimeout, "5s", PropAPIKey, "k"})
	eng, err := New(ctx, genai.ModelSpec{Path: "ignored", Properties: props})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := eng.(*Engine).model; got != "override" {
		t.Errorf("model = %q, want override", got)
	}
}
