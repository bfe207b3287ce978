package pipeline

import (
	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
)

type listener struct {
	name string
	fn   event.Listener
}

type options struct {
	cfg       Config
	log       *logger.Logger
	metrics   *observability.Metrics
	progress  *bool
	tracing   *bool
	listeners []listener
}

// Option configures a Completion.
type Option func(*options)

// WithConfig sets the pipeline configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger. Defaults to logger.Get("pipeline").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records run, stage, event and progress metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracing enables or disables run and stage spans, overriding
// Config.Tracing.
func WithTracing(enabled bool) Option {
	return func(o *options) { o.tracing = &enabled }
}

// WithProgress enables or disables the progress tracker, overriding
// Config.Progress.Disabled.
func WithProgress(enabled bool) Option {
	return func(o *options) { o.progress = &enabled }
}

// WithListener subscribes fn to name on the Completion bus before any stage
// starts.
func WithListener(name string, fn event.Listener) Option {
	return func(o *options) { o.listeners = append(o.listeners, listener{name: name, fn: fn}) }
}

func (o *options) progressEnabled() bool {
	if o.progress != nil {
		return *o.progress
	}
	return !o.cfg.Progress.Disabled
}

func (o *options) tracingEnabled() bool {
	if o.tracing != nil {
		return *o.tracing
	}
	return o.cfg.Tracing
}
