package genai

import (
	"log/slog"

	"github.com/soundprediction/go-genai-capi/internal/observe"
)

// Option configures a pipeline.
type Option func(*options)

type options struct {
	backend string
	logger  *slog.Logger
	metrics *observe.Metrics
}

// WithBackend selects the engine backend. The GENAI_BACKEND property, when
// present, still takes precedence.
func WithBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithLogger sets the pipeline logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records load and generate latency. Nil disables recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(props Properties, fallback string, opts []Option) options {
	o := options{backend: fallback}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if v, ok := props.Get(PropBackend); ok && v != "" {
		o.backend = v
	}
	return o
}
