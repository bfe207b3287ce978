package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Run status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunContext tracks one pipeline run: its span and start time.
type RunContext struct {
	PipelineID string
	Stages     int
	StartTime  time.Time
	Metrics    *Metrics

	span trace.Span
}

// StartRun starts a pipeline.run span and records the run-start metric.
// If metrics is nil, metric recording is silently skipped.
func StartRun(ctx context.Context, pipelineID string, stages int, metrics *Metrics) (context.Context, *RunContext) {
	ctx, span := StartSpan(ctx, SpanPipelineRun)
	span.SetAttributes(
		attribute.String(AttrPipelineID, pipelineID),
		attribute.Int(AttrStageCount, stages),
	)

	rc := &RunContext{
		PipelineID: pipelineID,
		Stages:     stages,
		StartTime:  time.Now(),
		Metrics:    metrics,
		span:       span,
	}
	if metrics != nil {
		metrics.RecordRunStart(ctx)
	}
	return context.WithValue(ctx, runContextKey{}, rc), rc
}

type runContextKey struct{}

// RunContextFromContext retrieves the RunContext from context, or nil.
func RunContextFromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runContextKey{}).(*RunContext); ok {
		return rc
	}
	return nil
}

// StartStage starts a child span for the stage at index.
func (rc *RunContext) StartStage(ctx context.Context, index int, name string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, SpanStageRun)
	span.SetAttributes(
		attribute.String(AttrPipelineID, rc.PipelineID),
		attribute.String(AttrStageName, name),
		attribute.Int(AttrStageIndex, index),
	)
	return ctx, span
}

// EndStage ends a stage span, recording err and the failure metric.
func (rc *RunContext) EndStage(ctx context.Context, span trace.Span, name string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if rc.Metrics != nil {
			rc.Metrics.RecordStageFailure(ctx, name)
		}
	}
	span.End()
}

// End ends the run span and records run-end metrics.
func (rc *RunContext) End(ctx context.Context, err error) {
	duration := time.Since(rc.StartTime)
	status := StatusOK
	if err != nil {
		status = StatusError
		rc.span.RecordError(err)
		rc.span.SetStatus(codes.Error, err.Error())
		rc.span.SetAttributes(attribute.String(AttrErrorMsg, err.Error()))
	}

	rc.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	rc.span.End()

	if rc.Metrics != nil {
		rc.Metrics.RecordRunEnd(ctx, status, rc.Stages, duration)
	}
}

// Duration returns the elapsed time since the run started.
func (rc *RunContext) Duration() time.Duration {
	return time.Since(rc.StartTime)
}
