package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
	"github.com/kbukum/flowkit/progress"
	"github.com/kbukum/flowkit/promise"
)

// Completion is the handle of one pipeline invocation. It is a future that
// settles exactly once when every stage returned, and an event bus bridged
// to the stages.
type Completion struct {
	id     string
	stages []Stage
	opts   options
	log    *logger.Logger
	bus    *event.Bus

	deferred *promise.Deferred[struct{}]
	bridge   *bridge
	tracker  *progress.Tracker
	untrack  func()

	startOnce sync.Once
}

// New wires the event bridge and the progress tracker for stages without
// moving any data. Subscribe with On (or WithListener) before calling Start
// to observe every event.
//
// With zero stages the returned Completion is already rejected with an
// invalid input error.
func New(stages []Stage, opts ...Option) *Completion {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.ApplyDefaults()
	if o.log == nil {
		o.log = logger.Get("pipeline")
	}

	c := &Completion{
		id:       uuid.NewString(),
		stages:   append([]Stage(nil), stages...),
		opts:     o,
		bus:      event.NewBus(),
		deferred: promise.NewDeferred[struct{}](),
	}
	c.log = o.log.WithFields(logger.Fields(logger.FieldPipelineID, c.id))

	for _, l := range o.listeners {
		c.bus.On(l.name, l.fn)
	}
	c.bus.Guard(event.Report, event.RequireType(event.Report))

	if len(c.stages) == 0 {
		c.deferred.Reject(errors.InvalidInput("stages", "pipeline requires at least one stage"))
		return c
	}

	c.bridge = newBridge(c.bus, c.stages, c.log, o.metrics, o.cfg.TraceEvents)
	c.bridge.attach()

	if o.progressEnabled() {
		popts := []progress.Option{
			progress.WithLogger(c.log),
			progress.WithLevel(o.cfg.Progress.Level),
		}
		if o.metrics != nil {
			m := o.metrics
			popts = append(popts, progress.WithObserver(func(pct int) {
				m.RecordProgress(context.Background(), pct)
			}))
		}
		c.tracker, c.untrack = progress.Attach(c.bus, popts...)
	}
	return c
}

// Start begins moving data through the stages. Only the first call has an
// effect; it returns the receiver.
func (c *Completion) Start(ctx context.Context) *Completion {
	c.startOnce.Do(func() {
		if c.deferred.Promise().Settled() {
			return
		}
		go c.execute(ctx)
	})
	return c
}

func (c *Completion) execute(ctx context.Context) {
	ctx = logger.ContextWithPipelineID(ctx, c.id)

	var rc *observability.RunContext
	if c.opts.tracingEnabled() || c.opts.metrics != nil {
		ctx, rc = observability.StartRun(ctx, c.id, len(c.stages), c.opts.metrics)
	}

	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.Name()
	}
	log := c.log.WithContext(ctx)
	log.Debug("pipeline started", logger.Fields(logger.FieldStages, names))

	start := time.Now()
	err := c.runStages(ctx, rc)

	c.teardown()
	if rc != nil {
		rc.End(ctx, err)
	}

	fields := logger.DurationFields("pipeline.run", time.Since(start))
	if err != nil {
		log.Error("pipeline failed", logger.MergeWithError(fields, err))
		c.deferred.Reject(err)
		return
	}
	log.Debug("pipeline completed", fields)
	c.deferred.Resolve(struct{}{})
}

// teardown detaches the bridge and the tracker. Events emitted by stages
// after this point are not forwarded.
func (c *Completion) teardown() {
	if c.bridge != nil {
		c.bridge.detach()
	}
	if c.untrack != nil {
		c.untrack()
	}
}

// ID returns the invocation id, also logged as pipeline_id.
func (c *Completion) ID() string { return c.id }

// On subscribes fn to name on the completion bus.
func (c *Completion) On(name string, fn event.Listener) event.ListenerID {
	return c.bus.On(name, fn)
}

// Off removes a subscription made with On.
func (c *Completion) Off(name string, id event.ListenerID) bool {
	return c.bus.Off(name, id)
}

// Emit emits ev on the completion bus. Events on event.Report are
// broadcast to every stage; an untyped report event returns a protocol
// violation error and reaches no listener.
func (c *Completion) Emit(name string, ev event.Event) error {
	return c.bus.Emit(name, ev)
}

// Wait blocks until the pipeline settles or ctx is done. It returns the
// first stage error unchanged.
func (c *Completion) Wait(ctx context.Context) error {
	_, err := c.deferred.Promise().Await(ctx)
	return err
}

// Done is closed when the pipeline settles.
func (c *Completion) Done() <-chan struct{} { return c.deferred.Promise().Done() }

// Err returns the rejection error once settled, nil otherwise.
func (c *Completion) Err() error { return c.deferred.Promise().Err() }

// Promise exposes the completion as a promise for composition with chain.
func (c *Completion) Promise() *promise.Promise[struct{}] { return c.deferred.Promise() }

// Progress returns a snapshot of the tracker state. ok is false when the
// tracker is disabled.
func (c *Completion) Progress() (state progress.State, ok bool) {
	if c.tracker == nil {
		return progress.State{}, false
	}
	return c.tracker.State(), true
}

// Start wires and starts a pipeline in one call.
func Start(ctx context.Context, stages []Stage, opts ...Option) *Completion {
	return New(stages, opts...).Start(ctx)
}

// Run starts a pipeline and waits for it to settle.
func Run(ctx context.Context, stages []Stage, opts ...Option) error {
	return Start(ctx, stages, opts...).Wait(ctx)
}
