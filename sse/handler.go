package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/flowkit/logger"
)

// KeepAliveInterval is the interval between keep-alive comments.
var KeepAliveInterval = 30 * time.Second

// Handler returns an http.Handler streaming hub messages to the caller.
func Handler(hub *Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(hub, w, r, uuid.NewString(), r.URL.Query().Get("pipeline"))
	})
}

// Serve handles one SSE connection until the client disconnects or the
// hub stops.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, clientID, pattern string) {
	log := hub.log.WithFields(logger.Fields("client_id", clientID))

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// long-lived: the server WriteTimeout must not apply
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.Fields(logger.FieldError, err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, pattern, 0)
	if !hub.Register(client) {
		http.Error(w, "hub stopped", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	connected, _ := json.Marshal(map[string]string{"client_id": clientID, "pipeline": client.pattern})
	writeFrame(w, EventConnected, connected)
	flusher.Flush()

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Events():
			if !ok {
				return
			}
			writeFrame(w, msg.Event, msg.Data)
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, name string, data []byte) {
	if name != "" {
		_, _ = fmt.Fprintf(w, "event: %s\n", name)
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
