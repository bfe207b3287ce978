package pipeline

import (
	"context"
	"io"

	"github.com/kbukum/flowkit/event"
)

// Stage is one streaming step of a pipeline.
//
// Run is called once per pipeline invocation. in is nil for the first stage
// and out is nil for the last one. Returning from Run is the stage's single
// completion signal: nil for success, the failure otherwise.
//
// A stage emits notify events on Bus() under event.Notify and receives
// report events by subscribing on Bus() under event.Report.
type Stage interface {
	Name() string
	Bus() *event.Bus
	Run(ctx context.Context, in io.Reader, out io.Writer) error
}
