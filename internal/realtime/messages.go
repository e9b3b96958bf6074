package realtime

import (
	"encoding/json"

	"github.com/mcoot/homeguess/internal/api/response"
	"github.com/mcoot/homeguess/internal/model"
)

// Message types on the push channel
const (
	// Client to server
	TypeSubscribe = "subscribe"
	TypeUpdate    = "update"
	TypePing      = "ping"

	// Server to client
	TypeState   = "state"
	TypeDeleted = "deleted"
	TypeError   = "error"
	TypePong    = "pong"
)

// ClientMessage is a message received from a websocket client
type ClientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
}

// ServerMessage is a message pushed to a websocket client
type ServerMessage struct {
	Type      string            `json:"type"`
	SessionID string            `json:"sessionId,omitempty"`
	Session   *response.Session `json:"session,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func stateMessage(s *model.Session) ([]byte, error) {
	snapshot := response.SessionFromModel(s)
	return json.Marshal(ServerMessage{Type: TypeState, SessionID: string(s.ID), Session: &snapshot})
}

func deletedMessage(id model.SessionID) ([]byte, error) {
	return json.Marshal(ServerMessage{Type: TypeDeleted, SessionID: string(id)})
}

func errorMessage(sessionID string, text string) []byte {
	data, _ := json.Marshal(ServerMessage{Type: TypeError, SessionID: sessionID, Error: text})
	return data
}

func pongMessage() []byte {
	data, _ := json.Marshal(ServerMessage{Type: TypePong})
	return data
}
