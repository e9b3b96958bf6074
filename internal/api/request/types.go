package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodyBytes caps request bodies
const MaxBodyBytes = 16 << 10

// MaxPlayerNameLength caps display names
const MaxPlayerNameLength = 64

// ErrInvalidBody is returned when a body is not valid JSON or fails validation
var ErrInvalidBody = errors.New("invalid request body")

// Validator is implemented by request bodies that check their own fields
type Validator interface {
	Validate() error
}

// CreateRequest is the request body for creating a session
type CreateRequest struct {
	PlayerName string `json:"playerName"`
}

// Validate trims and checks the player name
func (r *CreateRequest) Validate() error {
	name, err := playerName(r.PlayerName)
	if err != nil {
		return err
	}
	r.PlayerName = name
	return nil
}

// JoinRequest is the request body for joining a session
type JoinRequest struct {
	SessionID  string `json:"sessionId"`
	PlayerName string `json:"playerName"`
}

// Validate checks the session id and player name
func (r *JoinRequest) Validate() error {
	if err := sessionID(&r.SessionID); err != nil {
		return err
	}
	name, err := playerName(r.PlayerName)
	if err != nil {
		return err
	}
	r.PlayerName = name
	return nil
}

// SessionRequest is the request body for operations addressed only by session
type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

// Validate checks the session id
func (r *SessionRequest) Validate() error {
	return sessionID(&r.SessionID)
}

// GuessRequest is the request body for submitting a guess
type GuessRequest struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
	Zip       string `json:"zip"`
}

// Validate checks all fields are present
func (r *GuessRequest) Validate() error {
	if err := sessionID(&r.SessionID); err != nil {
		return err
	}
	if err := playerID(&r.PlayerID); err != nil {
		return err
	}
	r.Zip = strings.TrimSpace(r.Zip)
	if r.Zip == "" {
		return fmt.Errorf("%w: zip is required", ErrInvalidBody)
	}
	return nil
}

// LeaveRequest is the request body for leaving a session
type LeaveRequest struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

// Validate checks both ids are present
func (r *LeaveRequest) Validate() error {
	if err := sessionID(&r.SessionID); err != nil {
		return err
	}
	return playerID(&r.PlayerID)
}

// Decode reads a JSON body into v and validates it. The Content-Type header is
// ignored since beacons arrive as text/plain.
func Decode(w http.ResponseWriter, r *http.Request, v Validator) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidBody)
		}
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return v.Validate()
}

func playerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: playerName is required", ErrInvalidBody)
	}
	if len([]rune(name)) > MaxPlayerNameLength {
		return "", fmt.Errorf("%w: playerName must be at most %d characters", ErrInvalidBody, MaxPlayerNameLength)
	}
	return name, nil
}

func sessionID(id *string) error {
	*id = strings.TrimSpace(*id)
	if *id == "" {
		return fmt.Errorf("%w: sessionId is required", ErrInvalidBody)
	}
	return nil
}

func playerID(id *string) error {
	*id = strings.TrimSpace(*id)
	if *id == "" {
		return fmt.Errorf("%w: playerId is required", ErrInvalidBody)
	}
	return nil
}
