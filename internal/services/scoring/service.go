package scoring

import (
	"math"

	"github.com/mcoot/homeguess/internal/model"
)

const (
	// EarthRadiusMiles is the sphere radius used by the haversine formula
	EarthRadiusMiles = 3958.8
	// MilesPerPoint converts distance into penalty points
	MilesPerPoint = 5.0
	// LoseThreshold is the penalty total that ends the game
	LoseThreshold = 2000
)

// ZipLookup resolves a zip code to coordinates
type ZipLookup interface {
	LookupZip(zip string) (model.ZipMarker, bool)
}

// Service applies distance penalties to a session's players
type Service struct {
	zips ZipLookup
}

// New creates a new ScoringService
func New(zips ZipLookup) *Service {
	return &Service{zips: zips}
}

// DistanceMiles returns the great-circle distance between two points in miles
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Pow(math.Sin(dLng/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// Penalty converts a distance into penalty points
func Penalty(distanceMiles float64) int {
	return int(math.Round(distanceMiles / MilesPerPoint))
}

// RoundPenalty is the outcome of one player's guess
type RoundPenalty struct {
	PlayerID model.PlayerID
	Zip      string
	Resolved bool // false if the zip is unknown; no penalty applies
	Distance float64
	Points   int
}

// ScoreRound adds each player's penalty for the current home and marks the
// round scored. It returns the per-player penalties.
// The session must have a current home.
func (s *Service) ScoreRound(session *model.Session) []RoundPenalty {
	home := session.CurrentHome()
	results := make([]RoundPenalty, 0, len(session.Players))

	for i := range session.Players {
		player := &session.Players[i]
		zip, ok := session.Guesses[player.ID]
		if !ok {
			continue
		}

		result := RoundPenalty{PlayerID: player.ID, Zip: zip}
		if marker, found := s.zips.LookupZip(zip); found && home != nil {
			result.Resolved = true
			result.Distance = DistanceMiles(marker.Lat, marker.Lng, home.Latitude, home.Longitude)
			result.Points = Penalty(result.Distance)
			player.Score += result.Points
		}
		results = append(results, result)
	}

	session.RoundScored = true
	return results
}

// FindLoser returns the player who lost on points, or nil if nobody reached the
// threshold. If several did, the highest score loses; ties go to join order.
func FindLoser(players []model.Player) *model.Player {
	var loser *model.Player
	for i := range players {
		p := &players[i]
		if p.Score < LoseThreshold {
			continue
		}
		if loser == nil || p.Score > loser.Score {
			loser = p
		}
	}
	return loser
}
