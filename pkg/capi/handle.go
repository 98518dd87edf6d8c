package capi

import (
	"sync"
)

// Handle is the opaque value C callers hold in a void*. It is a registry key,
// never a Go pointer, so Go memory is never exposed to C. Zero is the null
// handle.
type Handle uintptr

type kind uint8

const (
	kindWhisperPipeline kind = iota + 1
	kindWhisperConfig
	kindWhisperResults
	kindWhisperMetrics
	kindLLMPipeline
	kindGenerationConfig
	kindDecodedResults
	kindLLMMetrics
)

func (k kind) String() string {
	switch k {
	case kindWhisperPipeline:
		return "whisper_pipeline"
	case kindWhisperConfig:
		return "whisper_generation_config"
	case kindWhisperResults:
		return "whisper_decoded_results"
	case kindWhisperMetrics:
		return "whisper_perf_metrics"
	case kindLLMPipeline:
		return "llm_pipeline"
	case kindGenerationConfig:
		return "generation_config"
	case kindDecodedResults:
		return "decoded_results"
	case kindLLMMetrics:
		return "decoded_results_perf_metrics"
	}
	return "unknown"
}

type entry struct {
	kind kind
	obj  any
}

// registry owns every object handed out to C.
type registry struct {
	mu   sync.Mutex
	next Handle
	objs map[Handle]entry
}

func newRegistry() *registry {
	return &registry{objs: make(map[Handle]entry)}
}

func (r *registry) put(k kind, obj any) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := r.next
	r.objs[h] = entry{kind: k, obj: obj}
	return h
}

// take removes and returns the object if h is live and of kind k.
func (r *registry) take(h Handle, k kind) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.objs[h]
	if !ok || e.kind != k {
		return nil, false
	}
	delete(r.objs, h)
	return e.obj, true
}

func (r *registry) get(h Handle) (entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.objs[h]
	return e, ok
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objs)
}

// lookup resolves h to an object of kind k. A null, unknown, freed or
// wrong-kind handle is a caller contract violation.
func lookup[T any](r *registry, h Handle, k kind) (T, error) {
	var zero T
	if h == 0 {
		return zero, statusErrorf(StatusInvalidCParam, "null %s handle", k)
	}
	e, ok := r.get(h)
	if !ok {
		return zero, statusErrorf(StatusInvalidCParam, "unknown %s handle %#x", k, uintptr(h))
	}
	if e.kind != k {
		return zero, statusErrorf(StatusInvalidCParam, "handle %#x is a %s, not a %s", uintptr(h), e.kind, k)
	}
	obj, ok := e.obj.(T)
	if !ok {
		return zero, statusErrorf(StatusUnexpected, "handle %#x holds %T", uintptr(h), e.obj)
	}
	return obj, nil
}
