// Package pubsub fans session change events out to every server instance
// so each can push snapshots to its own websocket connections.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcoot/homeguess/internal/model"
)

// EventKind is the type of change a session went through
type EventKind string

const (
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event announces that a session changed
type Event struct {
	Kind      EventKind       `json:"kind"`
	SessionID model.SessionID `json:"sessionId"`

	// Session is the new state when the publisher is in the same process.
	// It never crosses the wire; remote subscribers reload from the store.
	Session *model.Session `json:"-"`
}

// Handler receives events. It must not block for long.
type Handler func(Event)

// Bus publishes session events and delivers them to subscribers
type Bus interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe delivers events to handler until ctx is done
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

func encodeEvent(event Event) ([]byte, error) {
	return json.Marshal(event)
}

func decodeEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if event.SessionID == "" {
		return Event{}, fmt.Errorf("decode event: missing session id")
	}
	switch event.Kind {
	case EventUpdated, EventDeleted:
	default:
		return Event{}, fmt.Errorf("decode event: unknown kind %q", event.Kind)
	}
	return event, nil
}
