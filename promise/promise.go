package promise

import (
	"context"
	"sync"

	"github.com/kbukum/flowkit/errors"
)

// Promise is the read side of a single-assignment result.
type Promise[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// Deferred is the write side of a Promise.
type Deferred[T any] struct {
	p *Promise[T]
}

// NewDeferred creates an unsettled Deferred.
func NewDeferred[T any]() *Deferred[T] {
	return &Deferred[T]{p: &Promise[T]{done: make(chan struct{})}}
}

// Promise returns the read side of d.
func (d *Deferred[T]) Promise() *Promise[T] { return d.p }

// Resolve settles the promise with v. It reports false if the promise was
// already settled.
func (d *Deferred[T]) Resolve(v T) bool {
	return d.p.settle(v, nil)
}

// Reject settles the promise with err. It reports false if the promise was
// already settled. A nil err is replaced by an Internal error so a rejected
// promise never reports success.
func (d *Deferred[T]) Reject(err error) bool {
	if err == nil {
		err = errors.Internal(nil).WithDetail("reason", "rejected with nil error")
	}
	var zero T
	return d.p.settle(zero, err)
}

func (p *Promise[T]) settle(v T, err error) bool {
	settled := false
	p.once.Do(func() {
		p.val, p.err = v, err
		settled = true
		close(p.done)
	})
	return settled
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} { return p.done }

// Settled reports whether the promise has settled.
func (p *Promise[T]) Settled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the settled value and error. Before settlement it returns
// the zero value and nil.
func (p *Promise[T]) Result() (T, error) {
	if !p.Settled() {
		var zero T
		return zero, nil
	}
	return p.val, p.err
}

// Err returns the rejection error, or nil if the promise is unsettled or
// resolved.
func (p *Promise[T]) Err() error {
	_, err := p.Result()
	return err
}

// Await blocks until the promise settles or ctx is done.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Resolve returns a promise already resolved with v.
func Resolve[T any](v T) *Promise[T] {
	d := NewDeferred[T]()
	d.Resolve(v)
	return d.p
}

// Reject returns a promise already rejected with err.
func Reject[T any](err error) *Promise[T] {
	d := NewDeferred[T]()
	d.Reject(err)
	return d.p
}

// Go runs fn on a new goroutine and returns a promise for its result. A
// panic in fn rejects the promise with an Internal error.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Promise[T] {
	d := NewDeferred[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.Reject(errors.Panic(r))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(v)
	}()
	return d.p
}

// Then returns a promise for fn applied to the resolved value of p. A
// rejection of p is passed through unchanged and fn is not called.
func Then[T, U any](ctx context.Context, p *Promise[T], fn func(context.Context, T) *Promise[U]) *Promise[U] {
	return Go(ctx, func(ctx context.Context) (U, error) {
		v, err := p.Await(ctx)
		if err != nil {
			var zero U
			return zero, err
		}
		next := fn(ctx, v)
		if next == nil {
			var zero U
			return zero, errors.Internal(nil).WithDetail("reason", "step returned a nil promise")
		}
		return next.Await(ctx)
	})
}
