package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/pipeline"
	"github.com/kbukum/flowkit/process"
	"github.com/kbukum/flowkit/stage"
)

// openInput opens path for reading. The size is -1 for stdin and other
// non-regular files.
func openInput(path string) (io.ReadCloser, int64, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), -1, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	if !fi.Mode().IsRegular() {
		return f, -1, nil
	}
	return f, fi.Size(), nil
}

// openOutput creates path for writing; - is stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// parseCommands splits each command line on whitespace.
func parseCommands(lines []string) ([]process.Command, error) {
	cmds := make([]process.Command, 0, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, errors.InvalidInput("exec", fmt.Sprintf("command %d is empty", i))
		}
		cmds = append(cmds, process.Command{Binary: fields[0], Args: fields[1:]})
	}
	return cmds, nil
}

// buildStages returns source, one process stage per command, sink.
func buildStages(in io.Reader, size int64, cmds []process.Command, out io.Writer) []pipeline.Stage {
	stages := make([]pipeline.Stage, 0, len(cmds)+2)
	stages = append(stages, stage.Source("read", in, size))
	for i, cmd := range cmds {
		stages = append(stages, process.NewStage(fmt.Sprintf("exec-%d-%s", i, cmd.Binary), cmd))
	}
	return append(stages, stage.Sink("write", out))
}
