// Package chain threads a value through a sequence of asynchronous stages.
//
// Each stage receives the resolved value of the previous one and returns a
// promise for the next. Stages run strictly one after another; the first
// rejection stops the chain and becomes its result, unchanged.
//
//	p := chain.Run(ctx, 15.0,
//	    chain.Lift(func(_ context.Context, r float64) (float64, error) { return r * 2, nil }),
//	    chain.Lift(func(_ context.Context, r float64) (float64, error) { return r + 100, nil }),
//	    chain.Lift(func(_ context.Context, r float64) (float64, error) { return r / 3, nil }),
//	)
//	v, err := p.Await(ctx) // 43.333333333333336
//
// Chains whose stages change the value type are composed one step at a
// time with promise.Then.
package chain
