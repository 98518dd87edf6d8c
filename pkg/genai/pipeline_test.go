package genai_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
	"github.com/soundprediction/go-genai-capi/pkg/genai/mock"
	"github.com/soundprediction/go-genai-capi/pkg/genai/stub"
)

func TestWhisperPipelineStubSilence(t *testing.T) {
	ctx := context.Background()
	p, err := genai.NewWhisperPipeline(ctx, t.TempDir(), "CPU", nil, genai.WithBackend(stub.Name))
	if err != nil {
		t.Fatalf("NewWhisperPipeline: %v", err)
	}
	defer p.Close()

	res, err := p.Generate(ctx, make([]float32, genai.SampleRate), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Texts) < 1 {
		t.Fatal("expected at least one text")
	}
	if res.PerfMetrics.GenerateDuration.Mean < 0 {
		t.Errorf("negative generate duration %v", res.PerfMetrics.GenerateDuration)
	}
}

func TestWhisperPipelineUnknownBackend(t *testing.T) {
	props := genai.Properties{{Key: genai.PropBackend, Value: "does-not-exist"}}
	_, err := genai.NewWhisperPipeline(context.Background(), "m", "CPU", props)
	if !errors.Is(err, genai.ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestWhisperPipelineUnsupportedDevice(t *testing.T) {
	_, err := genai.NewWhisperPipeline(context.Background(), t.TempDir(), "TPU", nil, genai.WithBackend(stub.Name))
	if !errors.Is(err, genai.ErrUnsupportedDevice) {
		t.Fatalf("err = %v, want ErrUnsupportedDevice", err)
	}
}

func TestStubRejectsMissingModels(t *testing.T) {
	ctx := context.Background()
	missing := filepath.Join(t.TempDir(), "not-a-model")
	if _, err := genai.NewWhisperPipeline(ctx, missing, "CPU", nil, genai.WithBackend(stub.Name)); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("whisper err = %v, want ErrNotExist", err)
	}
	props := genai.Properties{{Key: genai.PropBackend, Value: stub.Name}}
	if _, err := genai.NewLLMPipeline(ctx, missing, "CPU", props); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("llm err = %v, want ErrNotExist", err)
	}
}

// With nothing selected, pipelines go to the real engines, which this test
// binary does not link, so creation must fail rather than fall back.
func TestDefaultBackendsNeverStub(t *testing.T) {
	if genai.DefaultSpeechBackend == stub.Name || genai.DefaultTextBackend == stub.Name {
		t.Fatalf("stub is a default backend")
	}
	ctx := context.Background()
	if _, err := genai.NewWhisperPipeline(ctx, t.TempDir(), "CPU", nil); !errors.Is(err, genai.ErrUnknownBackend) {
		t.Errorf("whisper err = %v, want ErrUnknownBackend", err)
	}
	if _, err := genai.NewLLMPipeline(ctx, t.TempDir(), "CPU", nil); !errors.Is(err, genai.ErrUnknownBackend) {
		t.Errorf("llm err = %v, want ErrUnknownBackend", err)
	}
}

func TestWhisperPipelineForwardsConfigAndProperties(t *testing.T) {
	e := &mock.SpeechEngine{Result: &genai.WhisperDecodedResults{Texts: []string{"hi"}}}
	mock.RegisterSpeech("mock-forward", e)

	props := genai.Properties{
		{Key: "CACHE_DIR", Value: "/tmp/cache"},
		{Key: genai.PropBackend, Value: "mock-forward"},
		{Key: "NUM_THREADS", Value: "2"},
	}
	ctx := context.Background()
	p, err := genai.NewWhisperPipeline(ctx, "/models/whisper", "NPU", props)
	if err != nil {
		t.Fatalf("NewWhisperPipeline: %v", err)
	}
	if p.Backend() != "mock-forward" {
		t.Errorf("Backend() = %q", p.Backend())
	}

	spec := e.Specs[0]
	if spec.Path != "/models/whisper" || spec.Device != "NPU" {
		t.Errorf("spec = %+v", spec)
	}
	if len(spec.Properties) != 2 || spec.Properties[0].Key != "CACHE_DIR" || spec.Properties[1].Key != "NUM_THREADS" {
		t.Errorf("properties not forwarded in order without the backend key: %+v", spec.Properties)
	}

	cfg := genai.DefaultWhisperGenerationConfig()
	cfg.Task = genai.TaskTranslate
	p.SetGenerationConfig(cfg)
	cfg.Task = genai.TaskTranscribe // must not leak into the pipeline

	if _, err := p.Generate(ctx, []float32{0.1}, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := e.TranscribeCalls()[0].Config.Task; got != genai.TaskTranslate {
		t.Errorf("engine saw task %q, want translate", got)
	}

	bad := genai.DefaultWhisperGenerationConfig()
	bad.Task = "nope"
	if _, err := p.Generate(ctx, nil, &bad); !errors.Is(err, genai.ErrInvalidConfig) {
		t.Errorf("invalid config err = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_ = p.Close()
	if e.Closed != 1 {
		t.Errorf("engine closed %d times, want 1", e.Closed)
	}
	if _, err := p.Generate(ctx, nil, nil); !errors.Is(err, genai.ErrClosed) {
		t.Errorf("Generate after Close = %v", err)
	}
}

func TestWhisperPipelineBusy(t *testing.T) {
	block := make(chan struct{})
	e := &mock.SpeechEngine{Block: block}
	mock.RegisterSpeech("mock-busy", e)

	ctx := context.Background()
	p, err := genai.NewWhisperPipeline(ctx, "m", "CPU", nil, genai.WithBackend("mock-busy"))
	if err != nil {
		t.Fatalf("NewWhisperPipeline: %v", err)
	}
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Generate(ctx, nil, nil); err != nil {
			t.Errorf("first Generate: %v", err)
		}
	}()

	// Wait until the first call is inside the engine.
	for len(e.TranscribeCalls()) == 0 {
		runtime.Gosched()
	}
	if _, err := p.Generate(ctx, nil, nil); !errors.Is(err, genai.ErrBusy) {
		t.Errorf("concurrent Generate = %v, want ErrBusy", err)
	}
	close(block)
	wg.Wait()
}

func TestLLMPipelineChatHistory(t *testing.T) {
	ctx := context.Background()
	p, err := genai.NewLLMPipeline(ctx, t.TempDir(), "CPU", nil, genai.WithBackend(stub.Name))
	if err != nil {
		t.Fatalf("NewLLMPipeline: %v", err)
	}
	defer p.Close()

	p.StartChat("be brief")
	for _, prompt := range []string{"hello there", "how are you"} {
		res, err := p.Generate(ctx, prompt, nil, nil)
		if err != nil {
			t.Fatalf("Generate(%q): %v", prompt, err)
		}
		if res.String() != prompt {
			t.Errorf("stub reply = %q, want echo %q", res.String(), prompt)
		}
	}
	h := p.History()
	if len(h) != 5 {
		t.Fatalf("history has %d turns, want 5: %+v", len(h), h)
	}
	if h[0].Role != genai.RoleSystem || h[3].Role != genai.RoleUser || h[4].Role != genai.RoleAssistant {
		t.Errorf("unexpected roles: %+v", h)
	}

	p.FinishChat()
	if len(p.History()) != 0 {
		t.Error("FinishChat kept history")
	}
	if _, err := p.Generate(ctx, "outside chat", nil, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(p.History()) != 0 {
		t.Error("generate outside chat recorded history")
	}
}

func TestLLMPipelineStreamerStopAndCancel(t *testing.T) {
	e := &mock.TextEngine{Fragments: []string{"a", "b", "c"}}
	mock.RegisterText("mock-stream", e)

	ctx := context.Background()
	p, err := genai.NewLLMPipeline(ctx, "m", "CPU", nil, genai.WithBackend("mock-stream"))
	if err != nil {
		t.Fatalf("NewLLMPipeline: %v", err)
	}
	defer p.Close()
	p.StartChat("")

	var got []string
	res, err := p.Generate(ctx, "go", nil, func(f string) genai.StreamStatus {
		got = append(got, f)
		if len(got) == 2 {
			return genai.StreamStop
		}
		return genai.StreamRunning
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.String() != "ab" || strings.Join(got, "") != "ab" {
		t.Errorf("stopped reply = %q, streamed %q", res.String(), got)
	}
	if len(p.History()) != 2 {
		t.Errorf("stop should keep the turn, history = %+v", p.History())
	}

	if _, err := p.Generate(ctx, "again", nil, func(string) genai.StreamStatus { return genai.StreamCancel }); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(p.History()) != 2 {
		t.Errorf("cancel should drop the turn, history = %+v", p.History())
	}

	reqs := e.GenerateRequests()
	if len(reqs[1].History) != 2 || reqs[1].History[0].Content != "go" {
		t.Errorf("second request history = %+v", reqs[1].History)
	}
}

func TestLLMPipelineStopStrings(t *testing.T) {
	ctx := context.Background()
	p, err := genai.NewLLMPipeline(ctx, t.TempDir(), "CPU", nil, genai.WithBackend(stub.Name))
	if err != nil {
		t.Fatalf("NewLLMPipeline: %v", err)
	}
	defer p.Close()

	cfg := genai.DefaultGenerationConfig()
	cfg.StopStrings = []string{"STOP"}
	cfg.MaxNewTokens = 10
	res, err := p.Generate(ctx, "one two STOP three", &cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.String() != "one two " {
		t.Errorf("reply = %q", res.String())
	}

	cfg.StopStrings = nil
	cfg.MaxNewTokens = 2
	res, err = p.Generate(ctx, "one two three", &cfg, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.String() != "one two" || res.PerfMetrics.NumGeneratedTokens != 2 {
		t.Errorf("capped reply = %q (%d tokens)", res.String(), res.PerfMetrics.NumGeneratedTokens)
	}
}

func TestLLMPipelineEngineError(t *testing.T) {
	boom := errors.New("boom")
	e := &mock.TextEngine{Err: boom}
	mock.RegisterText("mock-error", e)

	p, err := genai.NewLLMPipeline(context.Background(), "m", "CPU", nil, genai.WithBackend("mock-error"))
	if err != nil {
		t.Fatalf("NewLLMPipeline: %v", err)
	}
	defer p.Close()
	if _, err := p.Generate(context.Background(), "x", nil, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestBackendsListed(t *testing.T) {
	found := false
	for _, n := range genai.TextBackends() {
		if n == stub.Name {
			found = true
		}
	}
	if !found {
		t.Errorf("stub missing from %v", genai.TextBackends())
	}
}
