package chain

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/promise"
)

func await[T any](t *testing.T, p *promise.Promise[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return p.Await(ctx)
}

func TestRun_ArithmeticExample(t *testing.T) {
	ctx := context.Background()
	p := Run(ctx, 15.0,
		Lift(func(_ context.Context, r float64) (float64, error) { return r * 2, nil }),
		Lift(func(_ context.Context, r float64) (float64, error) { return r + 100, nil }),
		Lift(func(_ context.Context, r float64) (float64, error) { return r / 3, nil }),
	)
	got, err := await(t, p)
	if err != nil {
		t.Fatal(err)
	}
	if got != 43.333333333333336 {
		t.Errorf("got %v, want 43.333333333333336", got)
	}
}

func TestRun_NoStages(t *testing.T) {
	p := Run(context.Background(), "seed")
	if !p.Settled() {
		t.Error("empty chain should resolve immediately")
	}
	if v, err := p.Result(); v != "seed" || err != nil {
		t.Errorf("Result = (%q, %v)", v, err)
	}
}

func TestRun_LeftToRightComposition(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		suffix  []string
		want    string
	}{
		{"single", "a", []string{"b"}, "ab"},
		{"several", "", []string{"x", "y", "z"}, "xyz"},
		{"many", "0", []string{"1", "2", "3", "4", "5", "6"}, "0123456"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stages := make([]Stage[string], 0, len(tc.suffix))
			for _, s := range tc.suffix {
				stages = append(stages, func(_ context.Context, v string) *promise.Promise[string] {
					return promise.Resolve(v + s)
				})
			}
			got, err := await(t, Run(context.Background(), tc.initial, stages...))
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRun_ShortCircuit(t *testing.T) {
	boom := stderrors.New("stage 2 failed")
	laterCalls := 0

	p := Run(context.Background(), 1,
		Lift(func(_ context.Context, n int) (int, error) { return n + 1, nil }),
		Lift(func(_ context.Context, n int) (int, error) { return 0, boom }),
		Lift(func(_ context.Context, n int) (int, error) { laterCalls++; return n, nil }),
		Lift(func(_ context.Context, n int) (int, error) { laterCalls++; return n, nil }),
	)
	_, err := await(t, p)
	if err != boom {
		t.Errorf("expected identical error, got %v", err)
	}
	if laterCalls != 0 {
		t.Errorf("stages after the failure ran %d times", laterCalls)
	}
}

func TestRun_StrictlySequential(t *testing.T) {
	var trace []string
	stage := func(name string, delay time.Duration) Stage[int] {
		return Lift(func(_ context.Context, n int) (int, error) {
			trace = append(trace, "start "+name)
			time.Sleep(delay)
			trace = append(trace, "end "+name)
			return n + 1, nil
		})
	}

	got, err := await(t, Run(context.Background(), 0,
		stage("a", 20*time.Millisecond),
		stage("b", 0),
		stage("c", 5*time.Millisecond),
	))
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	want := "[start a end a start b end b start c end c]"
	if fmt.Sprint(trace) != want {
		t.Errorf("trace %v, want %s", trace, want)
	}
}

func TestRun_NilPromise(t *testing.T) {
	p := Run(context.Background(), 1, func(context.Context, int) *promise.Promise[int] { return nil })
	_, err := await(t, p)
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if appErr.Details["stage_index"] != 0 {
		t.Errorf("expected stage_index 0, got %v", appErr.Details["stage_index"])
	}
}

func TestRun_CanceledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	secondRan := false
	p := Run(ctx, 0,
		Lift(func(_ context.Context, n int) (int, error) { cancel(); return n, nil }),
		Lift(func(_ context.Context, n int) (int, error) { secondRan = true; return n, nil }),
	)
	_, err := await(t, p)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if secondRan {
		t.Error("stage ran after cancellation")
	}
}

func TestRun_StagePanic(t *testing.T) {
	p := Run(context.Background(), 0,
		Lift(func(context.Context, int) (int, error) { panic("bad stage") }),
	)
	if _, err := await(t, p); !errors.HasCode(err, errors.ErrCodeInternal) {
		t.Errorf("expected internal error from panic, got %v", err)
	}
}

func TestThenHeterogeneous(t *testing.T) {
	ctx := context.Background()
	lengths := promise.Then(ctx, Run(ctx, "flow", Lift(func(_ context.Context, s string) (string, error) {
		return s + "kit", nil
	})), func(_ context.Context, s string) *promise.Promise[int] {
		return promise.Resolve(len(s))
	})
	got, err := await(t, lengths)
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}
