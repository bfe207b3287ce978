// Package event defines the event record exchanged between pipeline stages
// and observers, and the in-process bus that carries it.
//
// Two channel names are reserved by the pipeline bridge: Notify (stage to
// observer) and Report (observer to every stage). Events on those channels
// must carry a Type; the bridge installs guards that reject untyped events
// before any listener runs. Any other channel name is an ordinary
// subscription with no constraints.
//
//	bus := event.NewBus()
//	id := bus.On(event.Notify, func(ev event.Event) {
//	    fmt.Println(ev.Type, ev.Payload)
//	})
//	defer bus.Off(event.Notify, id)
//	_ = bus.Emit(event.Notify, event.ReadSize(1024))
package event
