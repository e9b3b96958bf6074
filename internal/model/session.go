package model

import (
	"fmt"
	"time"
)

// SessionID uniquely identifies a two-player match
type SessionID string

// PlayerID is the opaque per-player token handed out on create/join
type PlayerID string

// SessionState represents the lifecycle phase of a session
type SessionState string

const (
	SessionStateWaiting  SessionState = "waiting"  // One player, match not started
	SessionStatePlaying  SessionState = "playing"  // Two players, rounds proceed
	SessionStateFinished SessionState = "finished" // Terminal
)

// MaxPlayers is the number of players in a match
const MaxPlayers = 2

// Player is a participant in a session. Score is a penalty counter.
type Player struct {
	ID    PlayerID
	Name  string
	Score int
}

// Session is the authoritative state of one match
type Session struct {
	ID      SessionID
	Players []Player
	State   SessionState
	Homes   []PropertyRecord    // one per round, append-only
	Guesses map[PlayerID]string // zip per player, cleared each round

	// RoundScored is set once the current round's penalties have been applied
	RoundScored bool
	// LoserID is the player who crossed the penalty threshold, if any
	LoserID PlayerID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Round returns the current round number, derived from the homes drawn so far
func (s *Session) Round() int {
	if len(s.Homes) == 0 {
		return 1
	}
	return len(s.Homes)
}

// CurrentHome returns the home for the current round, or nil before the first round
func (s *Session) CurrentHome() *PropertyRecord {
	if len(s.Homes) == 0 {
		return nil
	}
	return &s.Homes[len(s.Homes)-1]
}

// GetPlayer returns the player with the given ID, or nil if not found
func (s *Session) GetPlayer(id PlayerID) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// GetLoser returns the designated loser, or nil if the game was not lost on points
func (s *Session) GetLoser() *Player {
	if s.LoserID == "" {
		return nil
	}
	return s.GetPlayer(s.LoserID)
}

// IsFull returns true if no more players can join
func (s *Session) IsFull() bool {
	return len(s.Players) >= MaxPlayers
}

// IsFinished returns true once the session reached its terminal state
func (s *Session) IsFinished() bool {
	return s.State == SessionStateFinished
}

// AllGuessed returns true if both players have guessed for the current round
func (s *Session) AllGuessed() bool {
	if len(s.Players) != MaxPlayers || len(s.Guesses) != MaxPlayers {
		return false
	}
	for _, p := range s.Players {
		if _, ok := s.Guesses[p.ID]; !ok {
			return false
		}
	}
	return true
}

// NeedsNewRound returns true if an advance should draw a new home
func (s *Session) NeedsNewRound() bool {
	return len(s.Homes) == 0 || s.RoundScored
}

// Validate checks the structural invariants of a session
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("missing session id")
	}
	switch s.State {
	case SessionStateWaiting, SessionStateFinished:
	case SessionStatePlaying:
		if len(s.Players) != MaxPlayers {
			return fmt.Errorf("playing session has %d players", len(s.Players))
		}
	default:
		return fmt.Errorf("unknown state %q", s.State)
	}
	if len(s.Players) > MaxPlayers {
		return fmt.Errorf("session has %d players", len(s.Players))
	}
	seen := make(map[PlayerID]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID == "" {
			return fmt.Errorf("player with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate player %s", p.ID)
		}
		seen[p.ID] = true
	}
	for id := range s.Guesses {
		if !seen[id] {
			return fmt.Errorf("guess from unknown player %s", id)
		}
	}
	return nil
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	c.Players = make([]Player, len(s.Players))
	copy(c.Players, s.Players)
	c.Homes = make([]PropertyRecord, len(s.Homes))
	for i, h := range s.Homes {
		c.Homes[i] = h.Clone()
	}
	c.Guesses = make(map[PlayerID]string, len(s.Guesses))
	for k, v := range s.Guesses {
		c.Guesses[k] = v
	}
	return &c
}
