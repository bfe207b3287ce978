package stage

import (
	"sync"

	"github.com/kbukum/flowkit/event"
)

// Base holds the name and the bus of a stage. The zero value is usable;
// embed it to implement pipeline.Stage.
type Base struct {
	name    string
	busOnce sync.Once
	bus     *event.Bus
}

// NewBase returns a Base named name.
func NewBase(name string) *Base {
	return &Base{name: name}
}

// Name returns the stage name.
func (b *Base) Name() string { return b.name }

// Bus returns the stage bus.
func (b *Base) Bus() *event.Bus {
	b.busOnce.Do(func() {
		if b.bus == nil {
			b.bus = event.NewBus()
		}
	})
	return b.bus
}

// Notify emits ev on the notify channel of the stage bus.
func (b *Base) Notify(ev event.Event) error {
	return b.Bus().Emit(event.Notify, ev)
}

// OnReport subscribes fn to report events delivered to the stage.
func (b *Base) OnReport(fn event.Listener) event.ListenerID {
	return b.Bus().On(event.Report, fn)
}
