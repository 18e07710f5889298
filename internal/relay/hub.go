// Package relay forwards watcher events to websocket clients.
//
// Clients join groups named after event kinds and receive every event of
// those kinds as a JSON message.
package relay

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/metrics"
)

// Hub manages WebSocket connections and group subscriptions.
type Hub struct {
	clients    map[*Client]bool
	groups     map[string]map[*Client]bool // group -> clients
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewHub creates a new Hub. m may be nil.
func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		groups:     make(map[string]map[*Client]bool),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// Run processes disconnects of slow clients. Call this in a goroutine.
// Returns when context is cancelled, after closing every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("relay hub shutting down")
			h.shutdown()
			return

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return false
	default:
	}

	h.clients[client] = true
	h.setGauge()
	h.logger.Debug("client registered", zap.String("connID", client.connID))
	return true
}

// remove drops client from the hub and all its groups. It is safe to call
// more than once.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	for group := range client.groups {
		if clients, ok := h.groups[group]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.groups, group)
			}
		}
	}
	close(client.send)
	h.setGauge()

	h.logger.Debug("client unregistered", zap.String("connID", client.connID))
}

// shutdown closes all client connections.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closeOnce.Do(func() { close(h.done) })
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.groups = make(map[string]map[*Client]bool)
	h.setGauge()
}

func (h *Hub) setGauge() {
	if h.metrics != nil {
		h.metrics.RelayClients.Set(float64(len(h.clients)))
	}
}

// JoinGroup adds a client to a group.
func (h *Hub) JoinGroup(client *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][client] = true
	client.groups[group] = true

	h.logger.Debug("client joined group",
		zap.String("connID", client.connID),
		zap.String("group", group),
	)
}

// LeaveGroup removes a client from a group.
func (h *Hub) LeaveGroup(client *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.groups[group]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.groups, group)
		}
	}
	delete(client.groups, group)

	h.logger.Debug("client left group",
		zap.String("connID", client.connID),
		zap.String("group", group),
	)
}

// ActiveGroups returns all groups with at least one subscriber.
func (h *Hub) ActiveGroups() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var groups []string
	for group, clients := range h.groups {
		if len(clients) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends ev to every client in the group named after its kind.
// It has the shape of an events.Handler.
func (h *Hub) Publish(ev events.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encoding event", zap.String("kind", ev.Kind.String()), zap.Error(err))
		return
	}
	h.Broadcast(ev.Kind.String(), payload)
}

// Broadcast sends a data message with payload to all clients in a group.
func (h *Hub) Broadcast(group string, payload json.RawMessage) {
	msg := buildDataMessage(group, payload)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.groups[group] {
		h.deliverLocked(client, msg)
	}
}

// deliver queues msg for client unless it has already been removed.
func (h *Hub) deliver(client *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[client] {
		h.deliverLocked(client, msg)
	}
}

func (h *Hub) deliverLocked(client *Client, msg []byte) {
	select {
	case client.send <- msg:
	default:
		// Buffer full, schedule disconnect
		h.logger.Debug("client send buffer full, disconnecting", zap.String("connID", client.connID))
		select {
		case h.unregister <- client:
		default:
			go func(c *Client) {
				select {
				case h.unregister <- c:
				case <-h.done:
				}
			}(client)
		}
	}
}
