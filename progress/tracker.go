package progress

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
)

// Quantum is the granularity of reported percentages.
const Quantum = 5

var (
	steps   = big.NewInt(100 / Quantum)
	quantum = big.NewInt(Quantum)
)

// State is the per-invocation progress state.
type State struct {
	SizeKnown   bool
	TotalSize   *big.Int
	LastPercent int
}

// Tracker turns notify telemetry into progress reports.
type Tracker struct {
	mu       sync.Mutex
	state    State
	reportMu sync.Mutex // orders compute and report across emitters
	bus      *event.Bus
	log      *logger.Logger
	level    string
	observer func(percent int)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger progress lines are written to.
func WithLogger(l *logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithLevel sets the level of progress lines. Defaults to "info".
func WithLevel(level string) Option {
	return func(t *Tracker) {
		if level != "" {
			t.level = level
		}
	}
}

// WithObserver registers fn to be called with every reported percentage.
func WithObserver(fn func(percent int)) Option {
	return func(t *Tracker) { t.observer = fn }
}

// Attach subscribes a new Tracker to the notify channel of bus. Reports are
// published on bus under event.Progress. The returned detach function
// unsubscribes the tracker; the tracker state is discarded with it.
func Attach(bus *event.Bus, opts ...Option) (*Tracker, func()) {
	t := &Tracker{
		bus:   bus,
		log:   logger.Get("progress"),
		level: "info",
		state: State{TotalSize: big.NewInt(1)},
	}
	for _, opt := range opts {
		opt(t)
	}
	id := bus.On(event.Notify, t.Handle)
	return t, func() { bus.Off(event.Notify, id) }
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		SizeKnown:   t.state.SizeKnown,
		TotalSize:   new(big.Int).Set(t.state.TotalSize),
		LastPercent: t.state.LastPercent,
	}
}

// Handle applies one notify event to the tracker state.
func (t *Tracker) Handle(ev event.Event) {
	switch ev.Type {
	case event.TypeReadSize:
		t.onSize(ev)
	case event.TypeReadProgress:
		t.reportMu.Lock()
		if pct, ok := t.onProgress(ev); ok {
			t.report(pct)
		}
		t.reportMu.Unlock()
	case event.TypeReadComplete:
		t.log.Debug("readcomplete", logger.Fields(logger.FieldPercent, t.State().LastPercent))
	}
}

func (t *Tracker) onSize(ev event.Event) {
	size, ok := event.Size(ev)
	if !ok || size.Sign() <= 0 {
		t.log.Debug("ignoring readsize without a positive size", logger.Fields(logger.FieldEventType, ev.Type))
		return
	}
	t.mu.Lock()
	t.state.TotalSize = size
	t.state.SizeKnown = true
	t.mu.Unlock()
}

func (t *Tracker) onProgress(ev event.Event) (int, bool) {
	size, ok := event.Size(ev)
	if !ok {
		return 0, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.SizeKnown {
		return 0, false
	}
	pct := Percent(size, t.state.TotalSize)
	if pct <= t.state.LastPercent {
		return 0, false
	}
	t.state.LastPercent = pct
	return pct, true
}

func (t *Tracker) report(pct int) {
	t.log.Log(t.level, fmt.Sprintf("readprogress [%d%%]", pct), logger.Fields(logger.FieldPercent, pct))
	if t.observer != nil {
		t.observer(pct)
	}
	if t.bus != nil {
		_ = t.bus.Emit(event.Progress, event.New(event.TypeReadProgress, event.KeyPercent, pct))
	}
}

// Percent returns floor(size*20/total)*5 clamped to [0, 100]. A non-positive
// total yields 0.
func Percent(size, total *big.Int) int {
	if total == nil || total.Sign() <= 0 || size == nil || size.Sign() <= 0 {
		return 0
	}
	q := new(big.Int).Mul(size, steps)
	q.Quo(q, total)
	if q.Cmp(steps) >= 0 {
		return 100
	}
	return int(q.Mul(q, quantum).Int64())
}
