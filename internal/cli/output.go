package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case JoinResult:
		o.printJoinResult(v)
	case AdvanceResult:
		o.printAdvanceResult(v)
	case OKResult:
		o.printOKResult(v)
	case ScoreResult:
		o.printScoreResult(v)
	case Session:
		o.printSession(v)
	case Home:
		o.printHome(v)
	case ZipList:
		o.printZips(v)
	case HealthResult:
		o.printHealthResult(v)
	case StreamMessage:
		o.printStreamMessage(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// JoinResult response type for create and join
type JoinResult struct {
	SessionID string `json:"sessionId"`
	PlayerID  string `json:"playerId"`
}

// Player response type
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Address response type
type Address struct {
	StreetAddress string `json:"streetAddress"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zipcode       string `json:"zipcode"`
}

// Home response type
type Home struct {
	Address   Address  `json:"address"`
	YearBuilt int      `json:"yearBuilt"`
	Price     int      `json:"price"`
	Images    []string `json:"images"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// AdvanceResult response type
type AdvanceResult struct {
	Home *Home `json:"home"`
}

// OKResult response type
type OKResult struct {
	OK bool `json:"ok"`
}

// ScoreResult response type
type ScoreResult struct {
	Players []Player `json:"players"`
	State   string   `json:"state"`
	Loser   *Player  `json:"loser"`
}

// Session response type
type Session struct {
	ID          string            `json:"id"`
	Players     []Player          `json:"players"`
	State       string            `json:"state"`
	Round       int               `json:"round"`
	Homes       []Home            `json:"homes"`
	Guesses     map[string]string `json:"guesses"`
	RoundScored bool              `json:"roundScored"`
	LoserID     *string           `json:"loserId"`
}

// ZipMarker response type
type ZipMarker struct {
	Zip string  `json:"zip"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ZipList response type
type ZipList []ZipMarker

// HealthResult response type
type HealthResult struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StreamMessage is a message pushed over the websocket
type StreamMessage struct {
	Type      string   `json:"type"`
	SessionID string   `json:"sessionId,omitempty"`
	Session   *Session `json:"session,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (o *Output) printJoinResult(j JoinResult) {
	fmt.Fprintf(o.w, "Session: %s\n", j.SessionID)
	fmt.Fprintf(o.w, "Player: %s\n", j.PlayerID)
}

func (o *Output) printAdvanceResult(a AdvanceResult) {
	if a.Home == nil {
		fmt.Fprintln(o.w, "No round in progress (waiting for an opponent)")
		return
	}
	o.printHome(*a.Home)
}

func (o *Output) printOKResult(r OKResult) {
	if r.OK {
		fmt.Fprintln(o.w, "OK")
	}
}

func (o *Output) printScoreResult(s ScoreResult) {
	fmt.Fprintf(o.w, "State: %s\n", s.State)
	fmt.Fprintln(o.w, "Scores:")
	for _, p := range s.Players {
		fmt.Fprintf(o.w, "  %s (%s): %d\n", p.Name, p.ID, p.Score)
	}
	if s.Loser != nil {
		fmt.Fprintf(o.w, "\nGame over! %s loses with %d points\n", s.Loser.Name, s.Loser.Score)
	}
}

func (o *Output) printSession(s Session) {
	fmt.Fprintf(o.w, "Session: %s\n", s.ID)
	fmt.Fprintf(o.w, "State: %s\n", s.State)
	fmt.Fprintf(o.w, "Round: %d\n", s.Round)

	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		guessed := ""
		if _, ok := s.Guesses[p.ID]; ok {
			guessed = " [guessed]"
		}
		fmt.Fprintf(o.w, "  - %s (%s): %d%s\n", p.Name, p.ID, p.Score, guessed)
	}

	if len(s.Homes) > 0 {
		current := s.Homes[len(s.Homes)-1]
		fmt.Fprintf(o.w, "Current home: %s, %s %s\n", current.Address.City, current.Address.State, formatPrice(current.Price))
		if s.RoundScored {
			fmt.Fprintf(o.w, "Answer: %s\n", current.Address.Zipcode)
		}
	}

	if s.LoserID != nil {
		fmt.Fprintf(o.w, "Loser: %s\n", *s.LoserID)
	}
}

func (o *Output) printHome(h Home) {
	fmt.Fprintf(o.w, "Price: %s\n", formatPrice(h.Price))
	if h.YearBuilt > 0 {
		fmt.Fprintf(o.w, "Built: %d\n", h.YearBuilt)
	}
	fmt.Fprintf(o.w, "Images (%d):\n", len(h.Images))
	for _, img := range h.Images {
		fmt.Fprintf(o.w, "  %s\n", img)
	}
}

func (o *Output) printZips(zips ZipList) {
	for _, z := range zips {
		fmt.Fprintf(o.w, "%s  %.4f,%.4f\n", z.Zip, z.Lat, z.Lng)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	for name, status := range h.Checks {
		fmt.Fprintf(o.w, "  %s: %s\n", name, status)
	}
}

func (o *Output) printStreamMessage(m StreamMessage) {
	switch m.Type {
	case "state":
		if m.Session == nil {
			return
		}
		fmt.Fprintln(o.w, strings.Repeat("-", 40))
		o.printSession(*m.Session)
	case "deleted":
		fmt.Fprintf(o.w, "Session %s was deleted\n", m.SessionID)
	case "error":
		fmt.Fprintf(o.w, "Error: %s\n", m.Error)
	default:
		fmt.Fprintf(o.w, "%s\n", m.Type)
	}
}

// formatPrice renders whole dollars with thousands separators
func formatPrice(price int) string {
	s := fmt.Sprintf("%d", price)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + b.String()
}
