// Package process runs external commands as pipeline stages.
//
// A Stage feeds its pipeline input to the command's stdin and writes the
// command's stdout to its pipeline output:
//
//	gz := process.NewStage("gzip", process.Command{Binary: "gzip", Args: []string{"-c"}})
//	err := pipeline.Run(ctx, []pipeline.Stage{src, gz, dst})
//
// A non-zero exit fails the stage with an *ExitError carrying the tail of
// the command's stderr. When the pipeline is torn down the command receives
// SIGTERM, then SIGKILL after the grace period.
package process
