// Package sse streams pipeline events to HTTP clients as Server-Sent Events.
//
// A Hub fans messages out to connected clients. Relay subscribes to the
// event bus of a pipeline.Completion and publishes its notify and progress
// events, plus a final settled event, under the pipeline id:
//
//	hub := sse.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//	http.Handle("/events", sse.Handler(hub))
//
//	c := pipeline.New(stages)
//	r := sse.Relay(hub, c)
//	defer r.Stop()
//	err := c.Start(ctx).Wait(ctx)
//	<-r.Settled()
//
// Clients pick the pipelines they follow with the "pipeline" query
// parameter, a glob matched against pipeline ids ("*" by default).
package sse
