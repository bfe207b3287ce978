// Package stage provides building blocks for pipeline stages.
//
// Base carries a stage name and its event bus. Func adapts a plain function;
// Source, Sink and Transform cover the common byte-stream shapes:
//
//	src := stage.Source("read", file, info.Size())
//	gz := stage.Transform("upper", func(b []byte) ([]byte, error) {
//	    return bytes.ToUpper(b), nil
//	})
//	dst := stage.Sink("write", out)
//	err := pipeline.Run(ctx, []pipeline.Stage{src, gz, dst})
//
// Source emits readsize, readprogress and readcomplete notify events, so a
// pipeline started with it logs "readprogress [N%]" lines as data flows.
package stage
