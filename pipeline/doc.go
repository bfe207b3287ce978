// Package pipeline runs a linear sequence of streaming stages to completion
// as a single deferred result.
//
// Consecutive stages are connected with io.Pipe, so the downstream read rate
// governs the upstream write rate. Each stage runs on its own goroutine. The
// first stage error cancels the shared context, closes every pipe with that
// error and, once all stages returned, rejects the Completion with the very
// error value the stage returned.
//
// A Completion also bridges two event channels between the stages and the
// caller:
//
//   - notify: events a stage emits on its own bus are re-emitted on the
//     Completion under event.Notify.
//   - report: events emitted on the Completion under event.Report are
//     delivered to every stage bus, in stage order.
//
// Both channels require a non-empty event Type; emitting an untyped event
// returns a protocol violation error before any listener runs.
//
// A progress tracker is attached to every Completion unless disabled. It
// turns readsize/readprogress notify events into "readprogress [N%]" log
// lines and event.Progress events.
//
// # Usage
//
//	c := pipeline.New([]pipeline.Stage{src, gz, dst},
//	    pipeline.WithListener(event.Progress, func(ev event.Event) {
//	        fmt.Println(ev.Payload[event.KeyPercent])
//	    }),
//	)
//	if err := c.Start(ctx).Wait(ctx); err != nil {
//	    return err
//	}
package pipeline
