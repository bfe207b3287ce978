package sse

import (
	"path/filepath"
	"sync"

	"github.com/kbukum/flowkit/logger"
)

// Client is a connected SSE client following the pipelines whose id
// matches its pattern.
type Client struct {
	id      string
	pattern string
	events  chan Message
}

// NewClient creates a client following pattern. An empty pattern follows
// every pipeline.
func NewClient(id, pattern string, buffer int) *Client {
	if pattern == "" {
		pattern = "*"
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{id: id, pattern: pattern, events: make(chan Message, buffer)}
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Pattern returns the glob the client follows.
func (c *Client) Pattern() string { return c.pattern }

// Events returns the channel of messages for the client.
func (c *Client) Events() <-chan Message { return c.events }

// Send queues msg. It returns false if the client is too slow and the
// message was dropped.
func (c *Client) Send(msg Message) bool {
	select {
	case c.events <- msg:
		return true
	default:
		return false
	}
}

// Message is one SSE frame published under a pipeline id.
type Message struct {
	Topic string // pipeline id
	Event string // SSE event name
	Data  []byte
}

// Hub manages SSE client connections and message fan-out.
type Hub struct {
	clients  map[string]*Client
	publish  chan Message
	done     chan struct{}
	stopped  bool
	stopOnce sync.Once
	mu       sync.RWMutex
	log      *logger.Logger
}

// NewHub creates a new hub. Call Run to start delivering messages.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		publish: make(chan Message, 256),
		done:    make(chan struct{}),
		log:     logger.Get("sse"),
	}
}

// Run is the hub's delivery loop. It blocks until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.drain()
			h.closeAllClients()
			return
		case msg := <-h.publish:
			h.fanOut(msg)
		}
	}
}

// Stop shuts the hub down and closes every client. Safe to call multiple
// times.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
		close(h.done)
	})
}

// drain delivers the messages queued before Stop.
func (h *Hub) drain() {
	for {
		select {
		case msg := <-h.publish:
			h.fanOut(msg)
		default:
			return
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.events)
		delete(h.clients, id)
	}
}

// Register adds a client. It reports false if the hub is stopped.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return false
	}
	h.clients[client.id] = client
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("client registered", logger.Fields("client_id", client.id, "pattern", client.pattern, "total_clients", n))
	return true
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if c, ok := h.clients[client.id]; ok && c == client {
		delete(h.clients, client.id)
		close(client.events)
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("client unregistered", logger.Fields("client_id", client.id, "total_clients", n))
}

// Publish queues msg for every client whose pattern matches msg.Topic.
func (h *Hub) Publish(msg Message) {
	select {
	case h.publish <- msg:
	case <-h.done:
	}
}

func (h *Hub) fanOut(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		matched, err := filepath.Match(client.pattern, msg.Topic)
		if err != nil || !matched {
			continue
		}
		if !client.Send(msg) {
			h.log.Warn("client too slow, dropping message", logger.Fields(
				"client_id", client.id,
				logger.FieldPipelineID, msg.Topic,
			))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
