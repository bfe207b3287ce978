package chain

import (
	"context"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/promise"
)

// Stage is one asynchronous transform of a chain.
type Stage[T any] func(context.Context, T) *promise.Promise[T]

// Run returns a promise for initial threaded through stages in order.
// Stage i+1 starts only after stage i settled. With no stages the promise
// resolves to initial.
func Run[T any](ctx context.Context, initial T, stages ...Stage[T]) *promise.Promise[T] {
	if len(stages) == 0 {
		return promise.Resolve(initial)
	}
	return promise.Go(ctx, func(ctx context.Context) (T, error) {
		return reduce(ctx, initial, stages)
	})
}

func reduce[T any](ctx context.Context, value T, stages []Stage[T]) (T, error) {
	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		next := stage(ctx, value)
		if next == nil {
			var zero T
			return zero, errors.Internal(nil).
				WithDetail("reason", "stage returned a nil promise").
				WithDetail("stage_index", i)
		}
		v, err := next.Await(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		value = v
	}
	return value, nil
}

// Lift adapts a blocking function into a Stage. The function runs on its
// own goroutine.
func Lift[T any](fn func(context.Context, T) (T, error)) Stage[T] {
	return func(ctx context.Context, v T) *promise.Promise[T] {
		return promise.Go(ctx, func(ctx context.Context) (T, error) {
			return fn(ctx, v)
		})
	}
}
