package pipeline

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kbukum/flowkit/event"
)

// telemetry returns a first stage emitting readsize total followed by
// readprogress for every size and a final readcomplete.
func telemetry(total int64, sizes ...int64) *fakeStage {
	var s *fakeStage
	s = newFake("reader", func(context.Context, io.Reader, io.Writer) error {
		if err := s.notify(event.ReadSize(total)); err != nil {
			return err
		}
		for _, n := range sizes {
			if err := s.notify(event.ReadProgress(n)); err != nil {
				return err
			}
		}
		return s.notify(event.ReadComplete())
	})
	return s
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProgress_Reports(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		sizes []int64
		want  []int
	}{
		{"quarter steps", 1000, []int64{50, 100, 200, 500, 1000}, []int{5, 10, 20, 50, 100}},
		{"uneven sizes", 1000, []int64{100, 205, 400, 1000}, []int{10, 20, 40, 100}},
		{"duplicates suppressed", 1000, []int64{200, 210, 220, 400}, []int{20, 40}},
		{"below first quantum", 1000, []int64{10, 49}, nil},
		{"overshoot clamped", 100, []int64{250}, []int{100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recorder
			err := Run(context.Background(), []Stage{telemetry(tt.total, tt.sizes...)},
				WithListener(event.Progress, rec.listen))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := rec.percents(); !intsEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_LogLines(t *testing.T) {
	var logs syncBuffer
	err := Run(context.Background(), []Stage{telemetry(1000, 500, 1000)},
		WithLogger(testLogger(&logs)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := logs.String()
	for _, want := range []string{"readprogress [50%]", "readprogress [100%]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in logs, got %s", want, out)
		}
	}
}

func TestProgress_UnknownSize(t *testing.T) {
	var s *fakeStage
	s = newFake("reader", func(context.Context, io.Reader, io.Writer) error {
		return s.notify(event.ReadProgress(500))
	})

	var rec recorder
	if err := Run(context.Background(), []Stage{s}, WithListener(event.Progress, rec.listen)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.len() != 0 {
		t.Errorf("expected no progress without readsize, got %v", rec.percents())
	}
}

func TestProgress_Disabled(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"option", []Option{WithProgress(false)}},
		{"config", []Option{WithConfig(Config{Progress: ProgressConfig{Disabled: true}})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec recorder
			opts := append(tt.opts, WithListener(event.Progress, rec.listen))
			c := New([]Stage{telemetry(1000, 1000)}, opts...)
			if _, ok := c.Progress(); ok {
				t.Error("expected no tracker")
			}
			if err := c.Start(context.Background()).Wait(context.Background()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.len() != 0 {
				t.Errorf("expected no progress events, got %v", rec.percents())
			}
		})
	}
}

func TestProgress_OptionOverridesConfig(t *testing.T) {
	var rec recorder
	err := Run(context.Background(), []Stage{telemetry(100, 100)},
		WithConfig(Config{Progress: ProgressConfig{Disabled: true}}),
		WithProgress(true),
		WithListener(event.Progress, rec.listen))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.percents(); !intsEqual(got, []int{100}) {
		t.Errorf("got %v, want [100]", got)
	}
}

func TestProgress_StatePerInvocation(t *testing.T) {
	src := telemetry(1000, 500, 1000)

	for run := 0; run < 2; run++ {
		var rec recorder
		c := New([]Stage{src}, WithListener(event.Progress, rec.listen))
		if err := c.Start(context.Background()).Wait(context.Background()); err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}
		if got := rec.percents(); !intsEqual(got, []int{50, 100}) {
			t.Errorf("run %d: got %v, want [50 100]", run, got)
		}
		state, ok := c.Progress()
		if !ok || !state.SizeKnown || state.LastPercent != 100 {
			t.Errorf("run %d: unexpected state %+v", run, state)
		}
	}
}
