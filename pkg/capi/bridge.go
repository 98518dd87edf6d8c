// Package capi implements the flat C surface of the bridge in Go types.
//
// Every exported Bridge method mirrors one C function: nullable C strings
// are *string, NULL arrays are nil slices, out-parameters are pointers and
// void* handles are Handle values. cmd/libgenai converts between C and these
// types and does nothing else, so the whole contract (null checks, status
// mapping, panic containment, ownership) lives and is tested here.
package capi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/soundprediction/go-genai-capi/internal/config"
	"github.com/soundprediction/go-genai-capi/internal/modelhub"
	"github.com/soundprediction/go-genai-capi/internal/observe"
	"github.com/soundprediction/go-genai-capi/pkg/genai"
	_ "github.com/soundprediction/go-genai-capi/pkg/genai/stub"
)

// Options configures a Bridge.
type Options struct {
	Logger        *slog.Logger
	Metrics       *observe.Metrics
	Allocator     TextAllocator
	SpeechBackend string
	TextBackend   string
	// MetricsText writes the metrics exposition. Nil means metrics are off.
	MetricsText func(io.Writer) error
}

// Bridge owns the handle registry and the ambient services shared by all
// handles.
type Bridge struct {
	handles *registry
	log     *slog.Logger
	metrics *observe.Metrics
	alloc   TextAllocator
	speech  string
	text    string
	expose  func(io.Writer) error

	errMu   sync.Mutex
	lastErr string
}

// New returns a Bridge. Zero options select the whispercpp and candle
// backends, the default logger and a Go allocator.
func New(opts Options) *Bridge {
	b := &Bridge{
		handles: newRegistry(),
		log:     opts.Logger,
		metrics: opts.Metrics,
		alloc:   opts.Allocator,
		speech:  opts.SpeechBackend,
		text:    opts.TextBackend,
		expose:  opts.MetricsText,
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	b.log = b.log.With("component", "capi")
	if b.alloc == nil {
		b.alloc = newGoAllocator()
	}
	if b.speech == "" {
		b.speech = genai.DefaultSpeechBackend
	}
	if b.text == "" {
		b.text = genai.DefaultTextBackend
	}
	return b
}

var (
	defaultAlloc  TextAllocator
	defaultBridge *Bridge
	defaultOnce   sync.Once
)

// SetDefaultAllocator sets the allocator Default will use. It must be
// called before the first call to Default.
func SetDefaultAllocator(a TextAllocator) {
	defaultAlloc = a
}

// Default returns the process-wide Bridge, configured from the environment
// on first use.
func Default() *Bridge {
	defaultOnce.Do(func() {
		defaultBridge = newFromConfig()
	})
	return defaultBridge
}

func newFromConfig() *Bridge {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: genai bridge configuration rejected, using defaults: %v\n", err)
		cfg = config.Config{}
		_ = cfg.Validate()
	}

	level, _ := observe.ParseLevel(cfg.LogLevel)
	logger := observe.NewLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)

	opts := Options{
		Logger:        logger,
		Allocator:     defaultAlloc,
		SpeechBackend: cfg.SpeechBackend,
		TextBackend:   cfg.TextBackend,
	}
	if cfg.CacheDir != "" {
		// Backends resolving hf:// references read the cache from the environment.
		_ = os.Setenv(modelhub.EnvCacheDir, cfg.CacheDir)
	}
	if cfg.Metrics {
		p, err := observe.InitProvider(context.Background(), observe.ProviderConfig{
			ServiceVersion: Version,
			Global:         true,
		})
		if err != nil {
			logger.Warn("metrics disabled", "error", err)
		} else if m, err := observe.NewMetrics(p.MeterProvider()); err != nil {
			logger.Warn("metrics disabled", "error", err)
		} else {
			opts.Metrics = m
			opts.MetricsText = p.WriteText
		}
	}
	logger.Debug("bridge configured",
		"speech_backend", cfg.SpeechBackend, "text_backend", cfg.TextBackend,
		"speech_backends", genai.SpeechBackends(), "text_backends", genai.TextBackends())
	return New(opts)
}

// LiveHandles reports how many handles are currently allocated.
func (b *Bridge) LiveHandles() int { return b.handles.count() }

// register stores obj and writes its handle to out.
func (b *Bridge) register(k kind, obj any, out *Handle) {
	*out = b.handles.put(k, obj)
	b.metrics.HandleOpened(context.Background(), k.String())
}

// release removes h and returns its object, or nil when h is not a live
// handle of kind k.
func (b *Bridge) release(h Handle, k kind) any {
	if h == 0 {
		return nil
	}
	obj, ok := b.handles.take(h, k)
	if !ok {
		b.log.Debug("free of unknown handle ignored", "kind", k.String(), "handle", uintptr(h))
		return nil
	}
	b.metrics.HandleClosed(context.Background(), k.String())
	return obj
}
