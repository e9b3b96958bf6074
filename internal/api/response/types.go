package response

import (
	"time"

	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/services/session"
)

// Player represents a player in API responses
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:    string(p.ID),
		Name:  p.Name,
		Score: p.Score,
	}
}

func playersFromModel(players []model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// Address represents a property address
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zipcode       string `json:"zipcode"`
}

// Home represents a property record
type Home struct {
	Address   Address  `json:"address"`
	YearBuilt int      `json:"yearBuilt"`
	Price     int      `json:"price"`
	Images    []string `json:"images"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// HomeFromModel converts a model.PropertyRecord
func HomeFromModel(h model.PropertyRecord) Home {
	images := h.Images
	if images == nil {
		images = []string{}
	}
	return Home{
		Address: Address{
			StreetAddress: h.Address.Street,
			City:          h.Address.City,
			State:         h.Address.State,
			Zipcode:       h.Address.Zipcode,
		},
		YearBuilt: h.YearBuilt,
		Price:     h.Price,
		Images:    images,
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
	}
}

// Session is the full snapshot of a session sent to clients
type Session struct {
	ID          string            `json:"id"`
	Players     []Player          `json:"players"`
	State       string            `json:"state"`
	Round       int               `json:"round"`
	Homes       []Home            `json:"homes"`
	Guesses     map[string]string `json:"guesses"`
	RoundScored bool              `json:"roundScored"`
	LoserID     *string           `json:"loserId"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// SessionFromModel converts a model.Session
func SessionFromModel(s *model.Session) Session {
	homes := make([]Home, len(s.Homes))
	for i, h := range s.Homes {
		homes[i] = HomeFromModel(h)
	}
	guesses := make(map[string]string, len(s.Guesses))
	for id, zip := range s.Guesses {
		guesses[string(id)] = zip
	}

	var loserID *string
	if s.LoserID != "" {
		id := string(s.LoserID)
		loserID = &id
	}

	return Session{
		ID:          string(s.ID),
		Players:     playersFromModel(s.Players),
		State:       string(s.State),
		Round:       s.Round(),
		Homes:       homes,
		Guesses:     guesses,
		RoundScored: s.RoundScored,
		LoserID:     loserID,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// JoinResponse is returned by create and join
type JoinResponse struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

// AdvanceResponse carries the current round's home, null before the first round
type AdvanceResponse struct {
	Home *Home `json:"home"`
}

// AdvanceResponseFromModel converts an advance result
func AdvanceResponseFromModel(h *model.PropertyRecord) AdvanceResponse {
	if h == nil {
		return AdvanceResponse{}
	}
	home := HomeFromModel(*h)
	return AdvanceResponse{Home: &home}
}

// ScoreResponse is the outcome of scoring a round
type ScoreResponse struct {
	Players []Player `json:"players"`
	State   string   `json:"state"`
	Loser   *Player  `json:"loser"`
}

// ScoreResponseFromResult converts a session.ScoreResult
func ScoreResponseFromResult(r *session.ScoreResult) ScoreResponse {
	resp := ScoreResponse{
		Players: playersFromModel(r.Players),
		State:   string(r.State),
	}
	if r.Loser != nil {
		loser := PlayerFromModel(*r.Loser)
		resp.Loser = &loser
	}
	return resp
}

// OKResponse acknowledges an action
type OKResponse struct {
	OK bool `json:"ok"`
}

// ZipMarker is a map pin for a guessable zip code
type ZipMarker struct {
	Zip string  `json:"zip"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ZipMarkersFromModel converts catalog markers
func ZipMarkersFromModel(markers []model.ZipMarker) []ZipMarker {
	out := make([]ZipMarker, len(markers))
	for i, m := range markers {
		out[i] = ZipMarker{Zip: m.Zip, Lat: m.Lat, Lng: m.Lng}
	}
	return out
}

// HealthResponse reports dependency status
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RealtimeStats reports push connection counts
type RealtimeStats struct {
	Hubs        int `json:"hubs"`
	Subscribed  int `json:"subscribed"`
	Connections int `json:"connections"`
}
