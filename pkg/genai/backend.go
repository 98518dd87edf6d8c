package genai

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// SpeechFactory builds a speech engine for a model.
type SpeechFactory func(ctx context.Context, spec ModelSpec) (SpeechEngine, error)

// TextFactory builds a text engine for a model.
type TextFactory func(ctx context.Context, spec ModelSpec) (TextEngine, error)

var (
	backendsMu     sync.RWMutex
	speechBackends = make(map[string]SpeechFactory)
	textBackends   = make(map[string]TextFactory)
)

// RegisterSpeechBackend makes a speech backend available by name.
// It panics if the name is taken or the factory is nil.
func RegisterSpeechBackend(name string, f SpeechFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if f == nil {
		panic("genai: RegisterSpeechBackend factory is nil")
	}
	if _, dup := speechBackends[name]; dup {
		panic("genai: RegisterSpeechBackend called twice for " + name)
	}
	speechBackends[name] = f
}

// RegisterTextBackend makes a text backend available by name.
// It panics if the name is taken or the factory is nil.
func RegisterTextBackend(name string, f TextFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if f == nil {
		panic("genai: RegisterTextBackend factory is nil")
	}
	if _, dup := textBackends[name]; dup {
		panic("genai: RegisterTextBackend called twice for " + name)
	}
	textBackends[name] = f
}

// SpeechBackends returns the sorted names of registered speech backends.
func SpeechBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(speechBackends))
	for n := range speechBackends {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// TextBackends returns the sorted names of registered text backends.
func TextBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(textBackends))
	for n := range textBackends {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func speechFactory(name string) (SpeechFactory, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	f, ok := speechBackends[name]
	if !ok {
		return nil, fmt.Errorf("%w: speech backend %q", ErrUnknownBackend, name)
	}
	return f, nil
}

func textFactory(name string) (TextFactory, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	f, ok := textBackends[name]
	if !ok {
		return nil, fmt.Errorf("%w: text backend %q", ErrUnknownBackend, name)
	}
	return f, nil
}
