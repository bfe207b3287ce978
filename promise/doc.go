// Package promise provides a single-assignment future.
//
// A Deferred is the write side: it settles exactly once, either resolved
// with a value or rejected with an error. A Promise is the read side: it can
// be awaited, polled, or selected on through Done.
//
//	d := promise.NewDeferred[int]()
//	go func() { d.Resolve(42) }()
//	v, err := d.Promise().Await(ctx)
package promise
