// Package mock provides test doubles for genai.SpeechEngine and
// genai.TextEngine.
//
// Fill the response fields, then register the double under a test-unique
// backend name:
//
//	e := &mock.TextEngine{Fragments: []string{"Hello", " world"}}
//	mock.RegisterText("mock-hello", e)
//	p, err := genai.NewLLMPipeline(ctx, "model", "CPU", nil, genai.WithBackend("mock-hello"))
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/soundprediction/go-genai-capi/pkg/genai"
)

// TranscribeCall records one Transcribe invocation.
type TranscribeCall struct {
	Samples []float32
	Config  genai.WhisperGenerationConfig
}

// SpeechEngine is a scripted genai.SpeechEngine.
type SpeechEngine struct {
	mu sync.Mutex

	// Result is returned by Transcribe. Nil yields an empty result.
	Result *genai.WhisperDecodedResults
	// Err, if non-nil, is returned by Transcribe.
	Err error
	// Panic, if non-nil, makes Transcribe panic with it.
	Panic any
	// Block, if non-nil, makes Transcribe wait until it is closed.
	Block chan struct{}

	// Specs records every factory call.
	Specs []genai.ModelSpec
	// Calls records every Transcribe call.
	Calls []TranscribeCall
	// Closed counts Close calls.
	Closed int
}

// Transcribe implements genai.SpeechEngine.
func (e *SpeechEngine) Transcribe(ctx context.Context, samples []float32, cfg genai.WhisperGenerationConfig) (*genai.WhisperDecodedResults, error) {
	e.mu.Lock()
	e.Calls = append(e.Calls, TranscribeCall{Samples: samples, Config: cfg})
	res, err, p, block := e.Result, e.Err, e.Panic, e.Block
	e.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p != nil {
		panic(p)
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return &genai.WhisperDecodedResults{}, nil
	}
	out := *res
	return &out, nil
}

// Close implements genai.SpeechEngine.
func (e *SpeechEngine) Close() error {
	e.mu.Lock()
	e.Closed++
	e.mu.Unlock()
	return nil
}

// TranscribeCalls returns a snapshot of the recorded calls.
func (e *SpeechEngine) TranscribeCalls() []TranscribeCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]TranscribeCall(nil), e.Calls...)
}

// TextEngine is a scripted genai.TextEngine.
type TextEngine struct {
	mu sync.Mutex

	// Fragments are streamed in order; their concatenation is the reply.
	Fragments []string
	// Err, if non-nil, is returned by Generate.
	Err error
	// Panic, if non-nil, makes Generate panic with it.
	Panic any
	// FactoryErr, if non-nil, is returned by the registered factory.
	FactoryErr error

	// Specs records every factory call.
	Specs []genai.ModelSpec
	// Requests records every Generate call.
	Requests []genai.TextRequest
	// Closed counts Close calls.
	Closed int
}

// Generate implements genai.TextEngine.
func (e *TextEngine) Generate(ctx context.Context, req genai.TextRequest) (*genai.DecodedResults, error) {
	e.mu.Lock()
	e.Requests = append(e.Requests, req)
	frags, err, p := append([]string(nil), e.Fragments...), e.Err, e.Panic
	e.mu.Unlock()

	if p != nil {
		panic(p)
	}
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f)
		if req.Emit(f) != genai.StreamRunning {
			break
		}
	}
	return &genai.DecodedResults{
		Texts:  []string{b.String()},
		Scores: []float32{0},
		Raw:    genai.RawPerfMetrics{NumGeneratedTokens: len(frags)},
	}, nil
}

// Close implements genai.TextEngine.
func (e *TextEngine) Close() error {
	e.mu.Lock()
	e.Closed++
	e.mu.Unlock()
	return nil
}

// GenerateRequests returns a snapshot of the recorded requests.
func (e *TextEngine) GenerateRequests() []genai.TextRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]genai.TextRequest(nil), e.Requests...)
}

// RegisterSpeech registers e as speech backend name. Every pipeline created
// with that backend shares e.
func RegisterSpeech(name string, e *SpeechEngine) {
	genai.RegisterSpeechBackend(name, func(_ context.Context, spec genai.ModelSpec) (genai.SpeechEngine, error) {
		e.mu.Lock()
		e.Specs = append(e.Specs, spec)
		e.mu.Unlock()
		return e, nil
	})
}

// RegisterText registers e as text backend name.
func RegisterText(name string, e *TextEngine) {
	genai.RegisterTextBackend(name, func(_ context.Context, spec genai.ModelSpec) (genai.TextEngine, error) {
		e.mu.Lock()
		e.Specs = append(e.Specs, spec)
		ferr := e.FactoryErr
		e.mu.Unlock()
		if ferr != nil {
			return nil, ferr
		}
		return e, nil
	})
}
