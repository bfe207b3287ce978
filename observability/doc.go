// Package observability provides OpenTelemetry tracing and metrics for
// flowkit pipelines.
//
// Tracing:
//
//	res := observability.Resource{ServiceName: "flowpipe", ServiceVersion: "1.0.0"}
//	tp, err := observability.InitTracer(ctx, res, cfg)
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, res, cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("flowkit"))
//	pipeline.Start(ctx, stages, pipeline.WithMetrics(metrics))
//
// Or both at once from configuration with Setup.
package observability
