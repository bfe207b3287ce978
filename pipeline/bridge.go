package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/observability"
)

type stageSub struct {
	bus   *event.Bus
	id    event.ListenerID
	guard event.ListenerID
}

// bridge forwards notify events from every stage bus to the completion bus
// and broadcasts report events from the completion bus to every stage bus.
type bridge struct {
	target  *event.Bus
	stages  []Stage
	log     *logger.Logger
	metrics *observability.Metrics
	trace   bool

	detached atomic.Bool
	mu       sync.Mutex
	subs     []stageSub
	reportID event.ListenerID
}

func newBridge(target *event.Bus, stages []Stage, log *logger.Logger, metrics *observability.Metrics, trace bool) *bridge {
	return &bridge{
		target:  target,
		stages:  stages,
		log:     log,
		metrics: metrics,
		trace:   trace,
	}
}

// attach installs the stage notify guards and the subscriptions on both
// sides.
func (b *bridge) attach() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.stages {
		bus := s.Bus()
		guard := bus.Guard(event.Notify, event.RequireType(event.Notify))
		id := bus.On(event.Notify, func(ev event.Event) {
			b.forward(i, s.Name(), ev)
		})
		b.subs = append(b.subs, stageSub{bus: bus, id: id, guard: guard})
	}
	b.reportID = b.target.On(event.Report, b.broadcast)
}

func (b *bridge) forward(index int, name string, ev event.Event) {
	if b.detached.Load() {
		return
	}
	if b.trace {
		b.log.Debug("notify forwarded", logger.Fields(
			logger.FieldChannel, event.Notify,
			logger.FieldEventType, ev.Type,
			logger.FieldStage, name,
			logger.FieldStageIndex, index,
		))
	}
	if b.metrics != nil {
		b.metrics.RecordForwarded(context.Background(), event.Notify, ev.Type)
	}
	// typed events only reach this point; the target has no notify guard
	_ = b.target.Emit(event.Notify, ev)
}

func (b *bridge) broadcast(ev event.Event) {
	if b.detached.Load() {
		return
	}
	if b.metrics != nil {
		b.metrics.RecordForwarded(context.Background(), event.Report, ev.Type)
	}
	for i, s := range b.stages {
		if b.trace {
			b.log.Debug("report forwarded", logger.Fields(
				logger.FieldChannel, event.Report,
				logger.FieldEventType, ev.Type,
				logger.FieldStage, s.Name(),
				logger.FieldStageIndex, i,
			))
		}
		if err := s.Bus().Emit(event.Report, ev); err != nil {
			b.log.Warn("report delivery failed", logger.MergeWithError(logger.Fields(
				logger.FieldStage, s.Name(),
				logger.FieldEventType, ev.Type,
			), err))
		}
	}
}

// detach removes every subscription and stage guard. Events emitted
// afterwards are dropped.
func (b *bridge) detach() {
	if b.detached.Swap(true) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s.bus.Off(event.Notify, s.id)
		s.bus.Unguard(event.Notify, s.guard)
	}
	b.subs = nil
	b.target.Off(event.Report, b.reportID)
}
