// Package realtime pushes session snapshots to websocket clients.
//
// Every server instance keeps its own hubs for the connections it holds.
// State changes travel over a pubsub.Bus so that an update handled by one
// instance reaches subscribers connected to any other.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/homeguess/internal/dependencies/clock"
	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/pubsub"
	"github.com/mcoot/homeguess/internal/services/session"
	"github.com/mcoot/homeguess/internal/storage"
)

// Config holds websocket and housekeeping settings
type Config struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration // must be less than PongWait
	MaxMessageSize int64
	SendBufferSize int

	// JanitorInterval is how often hubs without clients are removed
	JanitorInterval time.Duration
	// StoreTimeout bounds snapshot reads
	StoreTimeout time.Duration
	// AllowedOrigins lists browser origins allowed to connect; "*" allows all
	AllowedOrigins []string
}

// DefaultConfig returns default websocket settings
func DefaultConfig() Config {
	return Config{
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      54 * time.Second,
		MaxMessageSize:  4096,
		SendBufferSize:  32,
		JanitorInterval: time.Minute,
		StoreTimeout:    3 * time.Second,
		AllowedOrigins:  []string{"*"},
	}
}

// Stats reports the broadcaster's local load
type Stats struct {
	Hubs        int
	Subscribed  int
	Connections int
}

// Broadcaster owns this instance's websocket connections and delivers
// session snapshots to them
type Broadcaster struct {
	hubs     *HubManager
	store    storage.Storage
	bus      pubsub.Bus
	upgrader websocket.Upgrader
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger

	connections atomic.Int64
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(store storage.Storage, bus pubsub.Bus, clock clock.Clock, logger *slog.Logger, cfg Config) *Broadcaster {
	logger = logger.With(slog.String("component", "realtime"))
	b := &Broadcaster{
		hubs:   NewHubManager(logger),
		store:  store,
		bus:    bus,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
	b.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     b.checkOrigin,
	}
	return b
}

// Ensure Broadcaster implements the notifier interface
var _ session.Notifier = (*Broadcaster)(nil)

// SessionUpdated announces a new session state to every instance
func (b *Broadcaster) SessionUpdated(ctx context.Context, s *model.Session) {
	b.publish(ctx, pubsub.Event{Kind: pubsub.EventUpdated, SessionID: s.ID, Session: s.Clone()})
}

// SessionDeleted announces a deleted session to every instance
func (b *Broadcaster) SessionDeleted(ctx context.Context, id model.SessionID) {
	b.publish(ctx, pubsub.Event{Kind: pubsub.EventDeleted, SessionID: id})
}

// publish never fails the caller; if the bus is down local subscribers
// are still served
func (b *Broadcaster) publish(ctx context.Context, event pubsub.Event) {
	if err := b.bus.Publish(ctx, event); err != nil {
		b.logger.Warn("bus publish failed, delivering locally",
			slog.String("session_id", string(event.SessionID)),
			slog.String("error", err.Error()))
		b.handleEvent(event)
	}
}

// Run consumes bus events and cleans up idle hubs until ctx is done
func (b *Broadcaster) Run(ctx context.Context) error {
	b.logger.Info("broadcaster started")
	defer b.hubs.CloseAll()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.bus.Subscribe(ctx, b.handleEvent)
	})
	g.Go(func() error {
		b.runJanitor(ctx)
		return nil
	})
	err := g.Wait()
	b.logger.Info("broadcaster stopped")
	return err
}

func (b *Broadcaster) runJanitor(ctx context.Context) {
	ticker := b.clock.NewTicker(b.cfg.JanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			b.hubs.CleanupEmptyHubs()
		}
	}
}

// handleEvent pushes an event to this instance's subscribers of the session
func (b *Broadcaster) handleEvent(event pubsub.Event) {
	hub := b.hubs.GetHub(event.SessionID)
	if hub == nil {
		return
	}

	switch event.Kind {
	case pubsub.EventDeleted:
		msg, err := deletedMessage(event.SessionID)
		if err != nil {
			b.logger.Error("failed to encode message", slog.String("error", err.Error()))
			return
		}
		hub.Broadcast(msg)

	case pubsub.EventUpdated:
		s := event.Session
		if s == nil {
			var err error
			s, err = b.loadSession(context.Background(), event.SessionID)
			if err != nil {
				b.logger.Warn("cannot load snapshot for push",
					slog.String("session_id", string(event.SessionID)),
					slog.String("error", err.Error()))
				return
			}
		}
		msg, err := stateMessage(s)
		if err != nil {
			b.logger.Error("failed to encode snapshot", slog.String("error", err.Error()))
			return
		}
		hub.Broadcast(msg)
	}
}

func (b *Broadcaster) handleClientMessage(c *Client, msg ClientMessage) {
	switch msg.Type {
	case TypeSubscribe:
		b.subscribe(c, model.SessionID(msg.SessionID), model.PlayerID(msg.PlayerID))

	case TypeUpdate:
		id := model.SessionID(msg.SessionID)
		if id == "" {
			id = c.SessionID()
		}
		if id == "" {
			c.Send(errorMessage("", "sessionId is required"))
			return
		}
		b.publish(context.Background(), pubsub.Event{Kind: pubsub.EventUpdated, SessionID: id})

	case TypePing:
		c.Send(pongMessage())

	default:
		c.Send(errorMessage(msg.SessionID, "unknown message type"))
	}
}

// subscribe moves a client to a session and sends it the current snapshot
func (b *Broadcaster) subscribe(c *Client, sessionID model.SessionID, playerID model.PlayerID) {
	if sessionID == "" {
		c.Send(errorMessage("", "sessionId is required"))
		return
	}

	// Register before reading so no update between the read and the
	// registration is missed
	current := c.currentHub()
	hub := b.hubs.Subscribe(sessionID, c)

	s, err := b.loadSession(context.Background(), sessionID)
	if err != nil {
		if current != hub {
			hub.Unregister(c)
		}
		text := "session unavailable"
		if errors.Is(err, model.ErrSessionNotFound) {
			text = "session not found"
		}
		c.Send(errorMessage(string(sessionID), text))
		return
	}

	if prev := c.attach(sessionID, playerID, hub); prev != nil && prev != hub {
		prev.Unregister(c)
	}

	msg, err := stateMessage(s)
	if err != nil {
		b.logger.Error("failed to encode snapshot", slog.String("error", err.Error()))
		return
	}
	c.Send(msg)
}

func (b *Broadcaster) loadSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.StoreTimeout)
	defer cancel()
	return b.store.GetSession(ctx, id)
}

// ServeWS upgrades the request to a websocket and serves it until it closes.
// A sessionId query parameter subscribes the connection straight away.
func (b *Broadcaster) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(uuid.NewString(), conn, b)
	b.connections.Add(1)
	defer b.connections.Add(-1)

	client.logger.Debug("websocket connected", slog.String("remote_addr", r.RemoteAddr))

	if sessionID := r.URL.Query().Get("sessionId"); sessionID != "" {
		b.subscribe(client, model.SessionID(sessionID), model.PlayerID(r.URL.Query().Get("playerId")))
	}

	go client.writePump()
	client.readPump()

	client.logger.Debug("websocket disconnected",
		slog.Duration("connection_duration", b.clock.Since(client.connectedAt)))
}

// Stats returns hub and connection counts for this instance
func (b *Broadcaster) Stats() Stats {
	hubs, subscribed := b.hubs.Stats()
	return Stats{
		Hubs:        hubs,
		Subscribed:  subscribed,
		Connections: int(b.connections.Load()),
	}
}

func (b *Broadcaster) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(b.cfg.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(b.cfg.AllowedOrigins, origin)
}
