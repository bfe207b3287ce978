package process

import (
	"context"
	"io"

	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/pipeline"
	"github.com/kbukum/flowkit/stage"
)

// TypeExit is the notify event emitted when the command exits cleanly.
const TypeExit = "processexit"

var _ pipeline.Stage = (*Stage)(nil)

// Stage runs a Command as a pipeline stage.
type Stage struct {
	*stage.Base
	cmd Command
	log *logger.Logger
}

// NewStage returns a stage named name running cmd.
func NewStage(name string, cmd Command) *Stage {
	return &Stage{
		Base: stage.NewBase(name),
		cmd:  cmd,
		log:  logger.Get("process"),
	}
}

// Run pipes in through the command into out.
func (s *Stage) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	log := s.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldStage, s.Name()))
	log.Debug("process starting", logger.Fields("command", s.cmd.String()))

	res, err := Run(ctx, s.cmd, in, out)
	if err != nil {
		return err
	}

	log.Debug("process exited", logger.DurationFields(s.cmd.Binary, res.Duration))
	return s.Notify(event.New(TypeExit,
		"exit_code", res.ExitCode,
		logger.FieldDuration, res.Duration.Milliseconds(),
	))
}
