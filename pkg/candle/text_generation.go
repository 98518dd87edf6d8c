package candle

/*
#include "candle.h"
*/
import "C"
import (
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"unsafe"
)

// TextGenerationConfig configures a causal-LM pipeline.
type TextGenerationConfig struct {
	ModelID  string `json:"model_id"`
	CacheDir string `json:"cache_dir,omitempty"`
	Device   string `json:"device,omitempty"`
}

// GenerateOpts are per-call generation parameters. Zero values leave the
// binding defaults in place; Temperature 0 is greedy.
type GenerateOpts struct {
	MaxTokens     int     `json:"max_tokens,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
	Seed          uint64  `json:"seed,omitempty"`
}

// TextGenerationPipeline wraps a binding text generation pipeline. Calls
// are serialized.
type TextGenerationPipeline struct {
	mu  sync.Mutex
	ptr *C.TextGenerationPipelineWrapper
}

// NewTextGenerationPipeline loads a model. Load must have succeeded.
func NewTextGenerationPipeline(cfg TextGenerationConfig) (*TextGenerationPipeline, error) {
	if !Loaded() {
		return nil, errors.New("candle: library not loaded")
	}
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	cConfig := C.CString(string(configJSON))
	defer C.free(unsafe.Pointer(cConfig))

	ptr := C.call_new_text_generation_pipeline(fnNewTextGenerationPipeline, cConfig)
	if ptr == nil {
		return nil, errors.New(lastError())
	}
	p := &TextGenerationPipeline{ptr: ptr}
	runtime.SetFinalizer(p, (*TextGenerationPipeline).Close)
	return p, nil
}

// Generate returns the continuation of prompt, without the prompt.
func (p *TextGenerationPipeline) Generate(prompt string, opts GenerateOpts) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptr == nil {
		return "", errors.New("candle: pipeline is closed")
	}

	paramsJSON, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	cPrompt := C.CString(prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	cParams := C.CString(string(paramsJSON))
	defer C.free(unsafe.Pointer(cParams))

	res := C.call_run_text_generation(fnRunTextGeneration, p.ptr, cPrompt, cParams)
	if res == nil {
		return "", errors.New(lastError())
	}
	defer C.call_free_text_generation_result(fnFreeTextGenerationResult, res)
	return C.GoString(res.text), nil
}

// Close frees the pipeline. Safe to call multiple times.
func (p *TextGenerationPipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptr != nil {
		C.call_free_text_generation_pipeline(fnFreeTextGenerationPipeline, p.ptr)
		p.ptr = nil
	}
}
