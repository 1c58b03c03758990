package models

import "fmt"

// BetSide represents the side of a proposition (over or under the threshold)
type BetSide string

const (
	BetSideOver  BetSide = "over"
	BetSideUnder BetSide = "under"
)

// Valid reports whether the side is one of the supported values
func (s BetSide) Valid() bool {
	return s == BetSideOver || s == BetSideUnder
}

// Statistic names as they appear in the proposition feed and game logs
const (
	StatPoints    = "points"
	StatRebounds  = "rebounds"
	StatAssists   = "assists"
	StatSteals    = "steals"
	StatBlocks    = "blocks"
	StatTurnovers = "turnovers"
	StatFGM       = "fgm"
	StatFGA       = "fga"
	StatFG3M      = "fg3m"
	StatFG3A      = "fg3a"
	StatFTM       = "ftm"
	StatFTA       = "fta"
)

var knownStats = map[string]struct{}{
	StatPoints: {}, StatRebounds: {}, StatAssists: {}, StatSteals: {},
	StatBlocks: {}, StatTurnovers: {}, StatFGM: {}, StatFGA: {},
	StatFG3M: {}, StatFG3A: {}, StatFTM: {}, StatFTA: {},
}

// KnownStat reports whether stat is tracked in game logs
func KnownStat(stat string) bool {
	_, ok := knownStats[stat]
	return ok
}

// PropSkeleton is an unscored proposition as delivered by a feed
type PropSkeleton struct {
	Player       string  `json:"player" validate:"required"`
	Team         string  `json:"team"`
	Stat         string  `json:"stat" validate:"required"`
	Side         BetSide `json:"side"`
	Threshold    float64 `json:"threshold" validate:"gte=0"`
	AmericanOdds int     `json:"odds"`
}

// Key returns the identity of the proposition within a working set
func (s PropSkeleton) Key() PropKey {
	return PropKey{Player: s.Player, Stat: s.Stat, Side: s.Side}
}

// PropKey identifies a proposition: one side of one player statistic
type PropKey struct {
	Player string
	Stat   string
	Side   BetSide
}

// String returns a readable form of the key
func (k PropKey) String() string {
	return fmt.Sprintf("%s %s %s", k.Player, k.Stat, k.Side)
}

// Proposition is a scored proposition
type Proposition struct {
	Player           string  `json:"player" db:"player"`
	Team             string  `json:"team" db:"team"`
	Stat             string  `json:"stat" db:"stat"`
	Side             BetSide `json:"side" db:"side"`
	Threshold        float64 `json:"threshold" db:"threshold"`
	AmericanOdds     int     `json:"odds" db:"american_odds"`
	DecimalOdds      float64 `json:"decimal_odds" db:"decimal_odds"`
	Probability      float64 `json:"probability" db:"probability"`
	HouseProbability float64 `json:"house_probability" db:"house_probability"`
	ExpectedValue    float64 `json:"expected_value" db:"expected_value"`
	SampleSize       int     `json:"sample_size" db:"sample_size"`
}

// Key returns the identity of the proposition
func (p *Proposition) Key() PropKey {
	return PropKey{Player: p.Player, Stat: p.Stat, Side: p.Side}
}

// Profitable reports whether the proposition has positive expected value
func (p *Proposition) Profitable() bool {
	return p.ExpectedValue > 0
}

// Edge returns model probability minus bookmaker-implied probability
func (p *Proposition) Edge() float64 {
	return p.Probability - p.HouseProbability
}

// Label renders the proposition as a single parlay leg
func (p *Proposition) Label() string {
	return fmt.Sprintf("%s %s %s %g (%+d)", p.Player, p.Stat, p.Side, p.Threshold, p.AmericanOdds)
}
