package realtime

import (
	"log/slog"
	"sync"

	"github.com/mcoot/homeguess/internal/model"
)

// Hub manages the websocket clients subscribed to a single session
type Hub struct {
	sessionID model.SessionID
	clients   map[*Client]bool
	closed    bool
	mu        sync.RWMutex
	logger    *slog.Logger

	broadcast chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a new Hub for a session
func NewHub(sessionID model.SessionID, logger *slog.Logger) *Hub {
	return &Hub{
		sessionID: sessionID,
		clients:   make(map[*Client]bool),
		logger:    logger.With(slog.String("session_id", string(sessionID))),
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

// Run delivers broadcasts in order until the hub is closed
func (h *Hub) Run() {
	h.logger.Debug("hub started")
	for {
		select {
		case message := <-h.broadcast:
			h.deliver(message)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Debug("hub stopped", slog.Int("detached_clients", clientCount))
			return
		}
	}
}

func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sentCount := 0
	droppedCount := 0
	for client := range h.clients {
		if client.Send(message) {
			sentCount++
			continue
		}
		droppedCount++
		h.logger.Warn("push dropped - client buffer full",
			slog.String("connection_id", client.id),
			slog.String("player_id", string(client.PlayerID())))
	}
	if droppedCount > 0 {
		h.logger.Warn("broadcast partial failure",
			slog.Int("sent", sentCount),
			slog.Int("dropped", droppedCount))
	}
}

// Register adds a client. It returns false if the hub has been closed.
func (h *Hub) Register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = true
	h.logger.Info("client subscribed",
		slog.String("connection_id", client.id),
		slog.Int("total_clients", len(h.clients)))
	return true
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.logger.Info("client unsubscribed",
			slog.String("connection_id", client.id),
			slog.Int("total_clients", len(h.clients)))
	}
}

// Broadcast queues a message for every client
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast dropped - hub buffer full")
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()
		close(h.done)
	})
}

// ClientCount returns the number of subscribed clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all sessions with local subscribers
type HubManager struct {
	hubs   map[model.SessionID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.SessionID]*Hub),
		logger: logger,
	}
}

// Subscribe registers a client with the session's hub, creating it if needed
func (m *HubManager) Subscribe(sessionID model.SessionID, client *Client) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	hub, ok := m.hubs[sessionID]
	if !ok {
		hub = NewHub(sessionID, m.logger)
		m.hubs[sessionID] = hub
		go hub.Run()
	}
	// Hubs are only closed under m.mu after being removed from the map
	hub.Register(client)
	return hub
}

// GetHub returns the hub for a session, or nil if it doesn't exist
func (m *HubManager) GetHub(sessionID model.SessionID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[sessionID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(sessionID model.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[sessionID]; ok {
		hub.Close()
		delete(m.hubs, sessionID)
		m.logger.Info("hub removed", slog.String("session_id", string(sessionID)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("empty hubs cleaned up", slog.Int("removed", removedCount))
	}
	return removedCount
}

// CloseAll closes every hub
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}

// Stats returns the number of hubs and subscribed clients
func (m *HubManager) Stats() (hubs int, clients int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, hub := range m.hubs {
		clients += hub.ClientCount()
	}
	return len(m.hubs), clients
}
