package pipeline

import (
	"github.com/kbukum/flowkit/validation"
)

// ProgressConfig configures the per-invocation progress tracker.
type ProgressConfig struct {
	// Disabled turns the tracker off.
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	// Level is the log level of "readprogress [N%]" lines.
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

// Config holds pipeline settings.
type Config struct {
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
	// TraceEvents logs every event forwarded by the bridge at debug level.
	TraceEvents bool `yaml:"trace_events" mapstructure:"trace_events"`
	// Tracing creates a span per run and per stage.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Progress.Level == "" {
		c.Progress.Level = "info"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.New().
		OneOf("progress.level", c.Progress.Level, "trace", "debug", "info", "warn", "error").
		Validate()
}
