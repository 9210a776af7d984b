package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

type action int

const (
	actionSubscribe action = iota
	actionUnsubscribe
	actionPing
)

// request is a client command handled on the hub goroutine.
type request struct {
	client *Client
	action action
	topic  string
}

// Hub maintains the set of active clients and fans events out to topic rooms.
// All room membership changes and sends happen on the Run goroutine, so a
// client's Send channel is only ever written and closed from one place.
type Hub struct {
	clients map[*Client]bool

	// rooms maps topics to subscribed clients
	rooms map[string]map[*Client]bool

	// retained holds the latest event per topic, replayed on subscribe
	retained map[string]domain.Event

	broadcast  chan domain.Event
	register   chan *Client
	unregister chan *Client
	requests   chan request
	done       chan struct{}

	// mu protects the counters read from other goroutines
	mu          sync.RWMutex
	clientCount int
	roomSizes   map[string]int

	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		retained:   make(map[string]domain.Event),
		broadcast:  make(chan domain.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan request, 64),
		done:       make(chan struct{}),
		roomSizes:  make(map[string]int),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast queues an event for its topic room. It never blocks; when the
// queue is full the event is dropped.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"topic", event.Topic,
		)
	}
	return nil
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Subscribe joins c to topic. The latest event of the topic, if any, is
// delivered right away.
func (h *Hub) Subscribe(c *Client, topic string) {
	h.submit(request{client: c, action: actionSubscribe, topic: topic})
}

// Unsubscribe removes c from topic.
func (h *Hub) Unsubscribe(c *Client, topic string) {
	h.submit(request{client: c, action: actionUnsubscribe, topic: topic})
}

// Ping queues a PONG reply for c.
func (h *Hub) Ping(c *Client) {
	h.submit(request{client: c, action: actionPing})
}

func (h *Hub) submit(req request) {
	select {
	case h.requests <- req:
	case <-h.done:
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled. On exit
// every client's Send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.unregisterClient(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.requests:
			h.handleRequest(req)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.syncCounts()

	h.logger.Info("client registered",
		"client_id", client.ID,
		"subject", client.Subject,
		"total_connections", len(h.clients),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)

	for _, topic := range client.Topics() {
		h.leave(client, topic)
	}
	client.CloseSend()
	h.syncCounts()

	h.logger.Info("client unregistered", "client_id", client.ID)
}

func (h *Hub) handleRequest(req request) {
	if !h.clients[req.client] {
		return
	}

	switch req.action {
	case actionSubscribe:
		if h.rooms[req.topic] == nil {
			h.rooms[req.topic] = make(map[*Client]bool)
		}
		h.rooms[req.topic][req.client] = true
		req.client.addTopic(req.topic)
		h.syncCounts()

		h.logger.Debug("client subscribed", "client_id", req.client.ID, "topic", req.topic)
		if event, ok := h.retained[req.topic]; ok {
			h.deliver(req.client, event)
		}

	case actionUnsubscribe:
		h.leave(req.client, req.topic)
		h.syncCounts()
		h.logger.Debug("client unsubscribed", "client_id", req.client.ID, "topic", req.topic)

	case actionPing:
		h.deliver(req.client, domain.Event{Type: domain.EventPong})
	}
}

func (h *Hub) leave(client *Client, topic string) {
	if room, ok := h.rooms[topic]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, topic)
		}
	}
	client.removeTopic(topic)
}

// broadcastEvent sends an event to all clients subscribed to its topic
func (h *Hub) broadcastEvent(event domain.Event) {
	if event.Topic == "" {
		return
	}
	h.retained[event.Topic] = event

	room := h.rooms[event.Topic]
	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"topic", event.Topic,
		"client_count", len(room),
	)

	for client := range room {
		h.deliver(client, event)
	}
}

// deliver queues event for client, dropping clients that cannot keep up.
func (h *Hub) deliver(client *Client, event domain.Event) {
	select {
	case client.Send <- event:
	default:
		h.logger.Warn("client send buffer full, unregistering", "client_id", client.ID)
		h.unregisterClient(client)
	}
}

func (h *Hub) syncCounts() {
	sizes := make(map[string]int, len(h.rooms))
	for topic, room := range h.rooms {
		sizes[topic] = len(room)
	}

	h.mu.Lock()
	h.clientCount = len(h.clients)
	h.roomSizes = sizes
	h.mu.Unlock()
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clientCount
}

// GetClientsInRoom returns the number of clients subscribed to a topic
func (h *Hub) GetClientsInRoom(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.roomSizes[topic]
}
