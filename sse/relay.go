package sse

import (
	"encoding/json"

	"github.com/kbukum/flowkit/event"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/pipeline"
)

// SSE event names.
const (
	EventConnected = "connected"
	EventSettled   = "settled"
)

// Frame is the JSON payload of a relayed event.
type Frame struct {
	PipelineID string         `json:"pipeline_id"`
	Channel    string         `json:"channel"`
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Settled is the JSON payload of the final frame of a pipeline.
type Settled struct {
	PipelineID string `json:"pipeline_id"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// Relaying is an active Relay.
type Relaying struct {
	stop    func()
	settled chan struct{}
}

// Stop stops relaying events. The settled frame is still published.
func (r *Relaying) Stop() { r.stop() }

// Settled is closed once the settled frame has been queued on the hub.
// Wait on it before stopping the hub.
func (r *Relaying) Settled() <-chan struct{} { return r.settled }

// Relay publishes the events c emits on channels to hub under the pipeline
// id, followed by a settled frame once c settles. Without channels it relays
// event.Notify and event.Progress.
func Relay(hub *Hub, c *pipeline.Completion, channels ...string) *Relaying {
	if len(channels) == 0 {
		channels = []string{event.Notify, event.Progress}
	}
	log := hub.log.WithFields(logger.Fields(logger.FieldPipelineID, c.ID()))

	ids := make([]event.ListenerID, len(channels))
	for i, ch := range channels {
		ids[i] = c.On(ch, func(ev event.Event) {
			data, err := json.Marshal(Frame{
				PipelineID: c.ID(),
				Channel:    ch,
				Type:       ev.Type,
				Payload:    ev.Payload,
			})
			if err != nil {
				log.Warn("event not relayed", logger.MergeWithError(logger.Fields(logger.FieldEventType, ev.Type), err))
				return
			}
			hub.Publish(Message{Topic: c.ID(), Event: ch, Data: data})
		})
	}

	r := &Relaying{settled: make(chan struct{})}
	go func() {
		defer close(r.settled)
		<-c.Done()
		s := Settled{PipelineID: c.ID(), Status: "ok"}
		if err := c.Err(); err != nil {
			s.Status = "error"
			s.Error = err.Error()
		}
		data, _ := json.Marshal(s)
		hub.Publish(Message{Topic: c.ID(), Event: EventSettled, Data: data})
	}()

	r.stop = func() {
		for i, ch := range channels {
			c.Off(ch, ids[i])
		}
	}
	return r
}
