package stage

import (
	"context"
	"io"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/pipeline"
)

// DefaultChunkSize is the read buffer size of Source, Sink and Transform.
const DefaultChunkSize = 32 * 1024

var (
	_ pipeline.Stage = (*FuncStage)(nil)
	_ pipeline.Stage = (*SourceStage)(nil)
	_ pipeline.Stage = (*SinkStage)(nil)
	_ pipeline.Stage = (*TransformStage)(nil)
)

type settings struct {
	chunkSize int
}

// Option configures a stage helper.
type Option func(*settings)

// WithChunkSize sets the read buffer size. Non-positive sizes are ignored.
func WithChunkSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// RunFunc is the body of a stage.
type RunFunc func(ctx context.Context, in io.Reader, out io.Writer) error

// FuncStage adapts a RunFunc.
type FuncStage struct {
	Base
	fn RunFunc
}

// Func returns a stage named name that runs fn.
func Func(name string, fn RunFunc) *FuncStage {
	return &FuncStage{Base: Base{name: name}, fn: fn}
}

// Run calls the wrapped function.
func (s *FuncStage) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.fn(ctx, in, out)
}

// SourceStage reads from an io.Reader and reports how much was read.
type SourceStage struct {
	Base
	r    io.Reader
	size int64
	cfg  settings
}

// Source returns a first stage copying r downstream. size is the total
// number of bytes r yields, or negative if unknown; when known it is
// announced with a readsize event before any data.
func Source(name string, r io.Reader, size int64, opts ...Option) *SourceStage {
	return &SourceStage{Base: Base{name: name}, r: r, size: size, cfg: newSettings(opts)}
}

// Run copies the reader to out, emitting cumulative readprogress events
// after each chunk and readcomplete at EOF. A nil out discards the data.
func (s *SourceStage) Run(ctx context.Context, _ io.Reader, out io.Writer) error {
	if s.size >= 0 {
		if err := s.Notify(event.ReadSize(s.size)); err != nil {
			return err
		}
	}
	if out == nil {
		out = io.Discard
	}

	var total int64
	err := copyChunks(ctx, out, s.r, s.cfg.chunkSize, nil, func(n int) error {
		total += int64(n)
		return s.Notify(event.ReadProgress(total))
	})
	if err != nil {
		return err
	}
	return s.Notify(event.ReadComplete())
}

// SinkStage writes its input to an io.Writer.
type SinkStage struct {
	Base
	w   io.Writer
	cfg settings
}

// Sink returns a last stage copying its input to w.
func Sink(name string, w io.Writer, opts ...Option) *SinkStage {
	return &SinkStage{Base: Base{name: name}, w: w, cfg: newSettings(opts)}
}

// Run copies in to the sink writer. out is ignored.
func (s *SinkStage) Run(ctx context.Context, in io.Reader, _ io.Writer) error {
	if in == nil {
		return errors.InvalidInput("in", "sink "+s.name+" cannot be the first stage")
	}
	return copyChunks(ctx, s.w, in, s.cfg.chunkSize, nil, nil)
}

// TransformStage applies a function to every chunk of its input.
type TransformStage struct {
	Base
	fn  func([]byte) ([]byte, error)
	cfg settings
}

// Transform returns a middle stage writing fn(chunk) for every chunk read.
// fn must not retain chunk.
func Transform(name string, fn func([]byte) ([]byte, error), opts ...Option) *TransformStage {
	return &TransformStage{Base: Base{name: name}, fn: fn, cfg: newSettings(opts)}
}

// Run transforms in to out. A nil out discards the result.
func (s *TransformStage) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if in == nil {
		return errors.InvalidInput("in", "transform "+s.name+" cannot be the first stage")
	}
	if out == nil {
		out = io.Discard
	}
	return copyChunks(ctx, out, in, s.cfg.chunkSize, s.fn, nil)
}

// copyChunks copies src to dst in chunks of size. Each chunk passes through
// fn when set; read is called with the number of bytes read once the chunk
// was written. Copying stops at EOF, on the first error or when ctx is done.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, size int, fn func([]byte) ([]byte, error), read func(int) error) error {
	buf := make([]byte, size)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if fn != nil {
				var err error
				if chunk, err = fn(chunk); err != nil {
					return err
				}
			}
			if len(chunk) > 0 {
				if _, err := dst.Write(chunk); err != nil {
					return err
				}
			}
			if read != nil {
				if err := read(n); err != nil {
					return err
				}
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}
