package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
)

// fakeStage is a Stage backed by a function.
type fakeStage struct {
	name string
	bus  *event.Bus
	run  func(ctx context.Context, in io.Reader, out io.Writer) error
}

func newFake(name string, run func(ctx context.Context, in io.Reader, out io.Writer) error) *fakeStage {
	return &fakeStage{name: name, bus: event.NewBus(), run: run}
}

func (s *fakeStage) Name() string    { return s.name }
func (s *fakeStage) Bus() *event.Bus { return s.bus }
func (s *fakeStage) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	return s.run(ctx, in, out)
}

func (s *fakeStage) notify(ev event.Event) error {
	return s.bus.Emit(event.Notify, ev)
}

func producer(name, data string) *fakeStage {
	return newFake(name, func(_ context.Context, _ io.Reader, out io.Writer) error {
		_, err := io.WriteString(out, data)
		return err
	})
}

func upper(name string) *fakeStage {
	return newFake(name, func(_ context.Context, in io.Reader, out io.Writer) error {
		b, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		_, err = out.Write(bytes.ToUpper(b))
		return err
	})
}

func collector(name string, dst *syncBuffer) *fakeStage {
	return newFake(name, func(_ context.Context, in io.Reader, _ io.Writer) error {
		_, err := io.Copy(dst, in)
		return err
	})
}

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testLogger(buf *syncBuffer) *logger.Logger {
	return logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", buf)
}

// recorder collects events delivered to a listener.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) listen(ev event.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, ev := range r.events {
		if v, ok := ev.Get(event.KeyPercent); ok {
			out = append(out, v.(int))
		}
	}
	return out
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func joined(s []string) string { return strings.Join(s, ",") }
