package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Combination is an unordered subset of propositions scored as a parlay.
// Legs index into the proposition table the combination was generated from.
type Combination struct {
	Legs                     []int           `json:"legs"`
	CombinedProbability      float64         `json:"combined_probability"`
	CombinedHouseProbability float64         `json:"combined_house_probability"`
	CombinedOdds             float64         `json:"combined_odds"`
	CombinedEV               float64         `json:"combined_ev"`
	SumEV                    float64         `json:"sum_ev"`
	ExactEV                  float64         `json:"exact_ev"`
	ToWin                    decimal.Decimal `json:"to_win"`
	StakeToWin               decimal.Decimal `json:"stake_to_win"`
	Diversity                int             `json:"diversity"`
	Sequence                 int             `json:"sequence"`
}

// Size returns the number of legs
func (c *Combination) Size() int {
	return len(c.Legs)
}

// Describe renders the legs of the combination against the table it indexes
func (c *Combination) Describe(props []Proposition) string {
	labels := make([]string, 0, len(c.Legs))
	for _, idx := range c.Legs {
		labels = append(labels, props[idx].Label())
	}
	return strings.Join(labels, " | ")
}

// Parlay is a combination admitted into the final portfolio
type Parlay struct {
	Combination
	ParlayID int `json:"parlay_id"`
	Rank     int `json:"rank"`
}

// Portfolio is the result of one constrained selection run
type Portfolio struct {
	Parlays        []Parlay       `json:"parlays"`
	TargetSize     int            `json:"target_size"`
	PropositionCap float64        `json:"proposition_cap"`
	PlayerCap      float64        `json:"player_cap"`
	Rejections     map[string]int `json:"rejections"`
}

// Size returns the number of parlays in the portfolio
func (p *Portfolio) Size() int {
	return len(p.Parlays)
}
