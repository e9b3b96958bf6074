package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcoot/homeguess/internal/model"
)

// recordVersion is the current schema version of stored sessions.
// Records without a version predate it and are normalized on read.
const recordVersion = 1

type playerRecord struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type addressRecord struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zipcode       string `json:"zipcode"`
}

type homeRecord struct {
	Address   addressRecord `json:"address"`
	YearBuilt int           `json:"yearBuilt"`
	Price     int           `json:"price"`
	Images    []string      `json:"images"`
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
}

type sessionRecord struct {
	Version     int               `json:"v,omitempty"`
	ID          string            `json:"id"`
	Players     []playerRecord    `json:"players"`
	State       string            `json:"state"`
	Round       int               `json:"round"`
	Homes       []homeRecord      `json:"homes"`
	Guesses     map[string]string `json:"guesses"`
	RoundScored bool              `json:"roundScored"`
	LoserID     string            `json:"loserId,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func encodeSession(s *model.Session) ([]byte, error) {
	rec := sessionRecord{
		Version:     recordVersion,
		ID:          string(s.ID),
		Players:     make([]playerRecord, len(s.Players)),
		State:       string(s.State),
		Round:       s.Round(),
		Homes:       make([]homeRecord, len(s.Homes)),
		Guesses:     make(map[string]string, len(s.Guesses)),
		RoundScored: s.RoundScored,
		LoserID:     string(s.LoserID),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	for i, p := range s.Players {
		rec.Players[i] = playerRecord{ID: string(p.ID), Name: p.Name, Score: p.Score}
	}
	for i, h := range s.Homes {
		rec.Homes[i] = homeRecord{
			Address: addressRecord{
				StreetAddress: h.Address.Street,
				City:          h.Address.City,
				State:         h.Address.State,
				Zipcode:       h.Address.Zipcode,
			},
			YearBuilt: h.YearBuilt,
			Price:     h.Price,
			Images:    h.Images,
			Latitude:  h.Latitude,
			Longitude: h.Longitude,
		}
	}
	for id, zip := range s.Guesses {
		rec.Guesses[string(id)] = zip
	}
	return json.Marshal(rec)
}

// decodeSession parses and validates a stored session. id is the key the
// record was read from; legacy records do not carry their own id.
func decodeSession(id model.SessionID, data []byte) (*model.Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSessionCorrupt, err)
	}

	switch rec.Version {
	case 0:
		normalizeLegacy(id, &rec)
	case recordVersion:
	default:
		return nil, fmt.Errorf("%w: unsupported version %d", model.ErrSessionCorrupt, rec.Version)
	}

	if rec.ID != string(id) {
		return nil, fmt.Errorf("%w: record id %q stored under %q", model.ErrSessionCorrupt, rec.ID, id)
	}

	s := &model.Session{
		ID:          model.SessionID(rec.ID),
		Players:     make([]model.Player, len(rec.Players)),
		State:       model.SessionState(rec.State),
		Homes:       make([]model.PropertyRecord, len(rec.Homes)),
		Guesses:     make(map[model.PlayerID]string, len(rec.Guesses)),
		RoundScored: rec.RoundScored,
		LoserID:     model.PlayerID(rec.LoserID),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	for i, p := range rec.Players {
		s.Players[i] = model.Player{ID: model.PlayerID(p.ID), Name: p.Name, Score: p.Score}
	}
	for i, h := range rec.Homes {
		s.Homes[i] = model.PropertyRecord{
			Address: model.Address{
				Street:  h.Address.StreetAddress,
				City:    h.Address.City,
				State:   h.Address.State,
				Zipcode: h.Address.Zipcode,
			},
			YearBuilt: h.YearBuilt,
			Price:     h.Price,
			Images:    h.Images,
			Latitude:  h.Latitude,
			Longitude: h.Longitude,
		}
	}
	for pid, zip := range rec.Guesses {
		s.Guesses[model.PlayerID(pid)] = zip
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSessionCorrupt, err)
	}
	return s, nil
}

// normalizeLegacy fills in fields that unversioned records never stored.
// Guesses left behind by departed players are dropped; the stored round
// counter is ignored in favour of the homes list.
func normalizeLegacy(id model.SessionID, rec *sessionRecord) {
	if rec.ID == "" {
		rec.ID = string(id)
	}
	known := make(map[string]bool, len(rec.Players))
	for _, p := range rec.Players {
		known[p.ID] = true
	}
	for pid := range rec.Guesses {
		if !known[pid] {
			delete(rec.Guesses, pid)
		}
	}
}
