package pipeline

import (
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
)

// pipes holds the io.Pipe pairs connecting consecutive stages. readers[i]
// is the input of stage i and writers[i] its output; readers[0] and
// writers[n-1] are nil.
type pipes struct {
	readers []*io.PipeReader
	writers []*io.PipeWriter

	mu    sync.Mutex
	cause error
}

func newPipes(n int) *pipes {
	p := &pipes{
		readers: make([]*io.PipeReader, n),
		writers: make([]*io.PipeWriter, n),
	}
	for i := 0; i < n-1; i++ {
		r, w := io.Pipe()
		p.writers[i] = w
		p.readers[i+1] = r
	}
	return p
}

// in returns the input of stage i as an io.Reader, nil for the first stage.
func (p *pipes) in(i int) io.Reader {
	if p.readers[i] == nil {
		return nil
	}
	return &pipeReader{r: p.readers[i], p: p}
}

// out returns the output of stage i as an io.Writer, nil for the last stage.
func (p *pipes) out(i int) io.Writer {
	if p.writers[i] == nil {
		return nil
	}
	return &pipeWriter{w: p.writers[i], p: p}
}

// translate maps io.ErrClosedPipe to the abort cause. Once both ends of a
// pipe are closed io.Pipe reports io.ErrClosedPipe on either side.
func (p *pipes) translate(err error) error {
	if err != io.ErrClosedPipe {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cause != nil {
		return p.cause
	}
	return err
}

type pipeReader struct {
	r *io.PipeReader
	p *pipes
}

func (r *pipeReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	return n, r.p.translate(err)
}

type pipeWriter struct {
	w *io.PipeWriter
	p *pipes
}

func (w *pipeWriter) Write(b []byte) (int, error) {
	n, err := w.w.Write(b)
	return n, w.p.translate(err)
}

// finish closes the pipes of a stage that returned nil: downstream sees EOF
// and an upstream still writing gets io.ErrClosedPipe.
func (p *pipes) finish(i int) {
	if w := p.writers[i]; w != nil {
		_ = w.Close()
	}
	if r := p.readers[i]; r != nil {
		_ = r.Close()
	}
}

// abort closes every pipe with err so blocked reads and writes return it.
func (p *pipes) abort(err error) {
	p.mu.Lock()
	if p.cause == nil {
		p.cause = err
	}
	p.mu.Unlock()

	for _, w := range p.writers {
		if w != nil {
			_ = w.CloseWithError(err)
		}
	}
	for _, r := range p.readers {
		if r != nil {
			_ = r.CloseWithError(err)
		}
	}
}

// firstError records the first stage failure.
type firstError struct {
	mu  sync.Mutex
	err error
}

func (f *firstError) set(err error) {
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}

func (f *firstError) get() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// runStages executes every stage and returns once all of them returned.
// The result is the first recorded stage error, unwrapped.
func (c *Completion) runStages(ctx context.Context, rc *observability.RunContext) error {
	p := newPipes(len(c.stages))
	g, gctx := errgroup.WithContext(ctx)

	var first firstError
	watched := make(chan struct{})
	go func() {
		defer close(watched)
		<-gctx.Done()
		cause := first.get()
		if cause == nil {
			cause = context.Cause(gctx)
		}
		p.abort(cause)
	}()

	for i, s := range c.stages {
		g.Go(func() error {
			err := c.runStage(gctx, rc, i, s, p)
			if err != nil {
				first.set(err)
				c.log.WithContext(ctx).Debug("stage failed", logger.MergeWithError(logger.Fields(
					logger.FieldStage, s.Name(),
					logger.FieldStageIndex, i,
				), err))
				return err
			}
			p.finish(i)
			return nil
		})
	}

	_ = g.Wait()
	<-watched
	return first.get()
}

func (c *Completion) runStage(ctx context.Context, rc *observability.RunContext, i int, s Stage, p *pipes) (err error) {
	if rc != nil && c.opts.tracingEnabled() {
		sctx, span := rc.StartStage(ctx, i, s.Name())
		defer func() { rc.EndStage(sctx, span, s.Name(), err) }()
		ctx = sctx
	} else if rc != nil && rc.Metrics != nil {
		defer func() {
			if err != nil {
				rc.Metrics.RecordStageFailure(ctx, s.Name())
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Panic(r).WithDetail("stage", s.Name())
		}
	}()
	return s.Run(ctx, p.in(i), p.out(i))
}
