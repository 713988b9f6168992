package rotation

import (
	"errors"
	"time"
)

// PlayerStatus is derived from a player's placement, see DeriveStatus.
type PlayerStatus string

const (
	StatusPlaying PlayerStatus = "playing"
	StatusQueued  PlayerStatus = "queued"
	StatusResting PlayerStatus = "resting"
	StatusAway    PlayerStatus = "away"
)

// CourtStatus represents whether a court currently hosts a match.
type CourtStatus string

const (
	CourtPlaying CourtStatus = "playing"
	CourtEmpty   CourtStatus = "empty"
)

// WeightType is the kind of pairing bias a PreferenceWeight expresses.
type WeightType string

const (
	WeightTeammate WeightType = "teammate"
	WeightOpponent WeightType = "opponent"
)

// DefaultQueueTarget is the number of upcoming matches the queue is kept at.
const DefaultQueueTarget = 2

var (
	ErrCourtNotFound  = errors.New("court not found")
	ErrCourtEmpty     = errors.New("court has no active match")
	ErrPlayerNotFound = errors.New("player not found")
)

// Player is a participant in the rotation.
type Player struct {
	ID          string         `json:"id" msgpack:"id"`
	Name        string         `json:"name" msgpack:"name"`
	GamesPlayed int            `json:"games_played" msgpack:"games_played"`
	RestRounds  int            `json:"rest_rounds" msgpack:"rest_rounds"`
	Teammates   map[string]int `json:"teammates,omitempty" msgpack:"teammates"`
	Opponents   map[string]int `json:"opponents,omitempty" msgpack:"opponents"`
	HasLeft     bool           `json:"has_left" msgpack:"has_left"`
	LeftAt      *time.Time     `json:"left_at,omitempty" msgpack:"left_at"`
	LeftReason  string         `json:"left_reason,omitempty" msgpack:"left_reason"`
	Away        bool           `json:"away" msgpack:"away"`
	Status      PlayerStatus   `json:"status" msgpack:"status"`
}

// Active reports whether the player can be placed on a court or in the queue.
func (p *Player) Active() bool {
	return !p.HasLeft && !p.Away
}

func (p Player) clone() Player {
	c := p
	c.Teammates = cloneCounts(p.Teammates)
	c.Opponents = cloneCounts(p.Opponents)
	if p.LeftAt != nil {
		at := *p.LeftAt
		c.LeftAt = &at
	}
	return c
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Team is a pair of distinct player ids. Slot order carries no meaning.
type Team [2]string

// Contains reports whether id is one of the team's players.
func (t Team) Contains(id string) bool {
	return t[0] == id || t[1] == id
}

// SameAs reports whether both teams hold the same two players.
func (t Team) SameAs(o Team) bool {
	return (t[0] == o[0] && t[1] == o[1]) || (t[0] == o[1] && t[1] == o[0])
}

// Match is two teams, optionally placed on a court.
type Match struct {
	Team1     Team       `json:"team1" msgpack:"team1"`
	Team2     Team       `json:"team2" msgpack:"team2"`
	Court     int        `json:"court,omitempty" msgpack:"court"`
	StartedAt *time.Time `json:"started_at,omitempty" msgpack:"started_at"`
	Score     float64    `json:"score" msgpack:"score"`
	// Provisional queue entries contain players still on a court.
	Provisional bool     `json:"provisional,omitempty" msgpack:"provisional"`
	Borrowed    []string `json:"borrowed,omitempty" msgpack:"borrowed"`
}

// PlayerIDs returns the four ids in team order.
func (m Match) PlayerIDs() []string {
	return []string{m.Team1[0], m.Team1[1], m.Team2[0], m.Team2[1]}
}

// Contains reports whether id plays in the match.
func (m Match) Contains(id string) bool {
	return m.Team1.Contains(id) || m.Team2.Contains(id)
}

func (m Match) clone() Match {
	c := m
	if m.StartedAt != nil {
		at := *m.StartedAt
		c.StartedAt = &at
	}
	if m.Borrowed != nil {
		c.Borrowed = append([]string(nil), m.Borrowed...)
	}
	return c
}

// Court is a numbered slot holding at most one active match.
type Court struct {
	Number int         `json:"number" msgpack:"number"`
	Name   string      `json:"name,omitempty" msgpack:"name"`
	Status CourtStatus `json:"status" msgpack:"status"`
	Match  *Match      `json:"match,omitempty" msgpack:"match"`
}

// PreferenceWeight biases two players towards playing together or against each other.
type PreferenceWeight struct {
	Player1  string     `json:"player1" msgpack:"player1"`
	Player2  string     `json:"player2" msgpack:"player2"`
	Type     WeightType `json:"type" msgpack:"type"`
	Strength int        `json:"strength" msgpack:"strength"`
}

func (w PreferenceWeight) pairs(a, b string) bool {
	return (w.Player1 == a && w.Player2 == b) || (w.Player1 == b && w.Player2 == a)
}

// Settings are the per-session knobs.
type Settings struct {
	CourtCount  int `json:"court_count" msgpack:"court_count"`
	QueueTarget int `json:"queue_target" msgpack:"queue_target"`
}

func (s Settings) queueTarget() int {
	if s.QueueTarget <= 0 {
		return DefaultQueueTarget
	}
	return s.QueueTarget
}

// Session is the full snapshot a caller hands to the engine.
type Session struct {
	ID        string             `json:"id" msgpack:"id"`
	Name      string             `json:"name" msgpack:"name"`
	Players   []Player           `json:"players" msgpack:"players"`
	Courts    []Court            `json:"courts" msgpack:"courts"`
	Queue     []Match            `json:"queue" msgpack:"queue"`
	Weights   []PreferenceWeight `json:"weights" msgpack:"weights"`
	Settings  Settings           `json:"settings" msgpack:"settings"`
	Round     int                `json:"round" msgpack:"round"`
	UpdatedAt time.Time          `json:"updated_at" msgpack:"updated_at"`
}

// Clone returns a deep copy so callers can hand the engine a value it may freely mutate.
func (s Session) Clone() Session {
	c := s
	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.clone()
	}
	c.Courts = make([]Court, len(s.Courts))
	for i, court := range s.Courts {
		c.Courts[i] = court
		if court.Match != nil {
			m := court.Match.clone()
			c.Courts[i].Match = &m
		}
	}
	c.Queue = make([]Match, len(s.Queue))
	for i, m := range s.Queue {
		c.Queue[i] = m.clone()
	}
	c.Weights = append([]PreferenceWeight(nil), s.Weights...)
	return c
}

// Player returns a pointer into the session's roster, or nil.
func (s *Session) Player(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Quality summarises how good an assignment is.
type Quality struct {
	TotalScore        float64 `json:"total_score"`
	AverageScore      float64 `json:"average_score"`
	CourtsFilled      int     `json:"courts_filled"`
	GamesPlayedSpread int     `json:"games_played_spread"`
	GamesPlayedStdDev float64 `json:"games_played_std_dev"`
	EligiblePlayers   int     `json:"eligible_players"`
}

// Assignment is the result of GenerateOptimalTeams.
type Assignment struct {
	Courts  []Court  `json:"courts"`
	Queue   []Match  `json:"queue"`
	Waiting []string `json:"waiting"`
	Quality Quality  `json:"quality"`
}

// ValidationResult lists structural findings. It is diagnostic only.
type ValidationResult struct {
	IsValid    bool     `json:"is_valid"`
	Errors     []string `json:"errors"`
	Duplicates []string `json:"duplicates"`
}

// Roster indexes players by id.
type Roster map[string]*Player

// NewRoster indexes the given players. The map points into the slice.
func NewRoster(players []Player) Roster {
	r := make(Roster, len(players))
	for i := range players {
		r[players[i].ID] = &players[i]
	}
	return r
}

func (r Roster) gamesPlayed(id string) int {
	if p, ok := r[id]; ok {
		return p.GamesPlayed
	}
	return 0
}

func (r Roster) restRounds(id string) int {
	if p, ok := r[id]; ok {
		return p.RestRounds
	}
	return 0
}

// History lookups always read the lower id's map so a pair scores the same
// whichever way round it is asked.
func (r Roster) teammateCount(a, b string) int {
	if a > b {
		a, b = b, a
	}
	if p, ok := r[a]; ok {
		return p.Teammates[b]
	}
	return 0
}

func (r Roster) opponentCount(a, b string) int {
	if a > b {
		a, b = b, a
	}
	if p, ok := r[a]; ok {
		return p.Opponents[b]
	}
	return 0
}
