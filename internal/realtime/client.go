package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/homeguess/internal/model"
)

// Client is one websocket connection. It is subscribed to at most one
// session at a time.
type Client struct {
	id          string
	conn        *websocket.Conn
	broadcaster *Broadcaster
	connectedAt time.Time
	logger      *slog.Logger

	send   chan []byte
	mu     sync.Mutex
	closed bool

	// Guarded by mu
	sessionID model.SessionID
	playerID  model.PlayerID
	hub       *Hub
}

func newClient(id string, conn *websocket.Conn, b *Broadcaster) *Client {
	return &Client{
		id:          id,
		conn:        conn,
		broadcaster: b,
		connectedAt: b.clock.Now(),
		logger:      b.logger.With(slog.String("connection_id", id)),
		send:        make(chan []byte, b.cfg.SendBufferSize),
	}
}

// Send queues a message without blocking. It returns false if the
// connection is gone or its buffer is full.
func (c *Client) Send(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// SessionID returns the session the client is subscribed to
func (c *Client) SessionID() model.SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// PlayerID returns the player the client subscribed as
func (c *Client) PlayerID() model.PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Client) currentHub() *Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hub
}

// attach records a new subscription and returns the previous hub
func (c *Client) attach(sessionID model.SessionID, playerID model.PlayerID, hub *Hub) *Hub {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.hub
	c.sessionID = sessionID
	c.playerID = playerID
	c.hub = hub
	return prev
}

// close detaches the client from its hub and stops the write pump
func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	hub := c.hub
	c.hub = nil
	close(c.send)
	c.mu.Unlock()

	if hub != nil {
		hub.Unregister(c)
	}
}

// writePump sends queued messages and keepalive pings
func (c *Client) writePump() {
	cfg := c.broadcaster.cfg
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("websocket ping failed", slog.String("error", err.Error()))
				return
			}
		}
	}
}

// readPump handles client messages until the connection drops
func (c *Client) readPump() {
	cfg := c.broadcaster.cfg
	defer c.close()

	c.conn.SetReadLimit(cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.Send(errorMessage("", "malformed message"))
			continue
		}
		c.broadcaster.handleClientMessage(c, msg)
	}
}
