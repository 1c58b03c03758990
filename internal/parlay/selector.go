package parlay

import (
	"fmt"
	"math"

	"github.com/rustam-sa/nba-01/internal/models"
)

// Rejection reasons reported in Portfolio.Rejections
const (
	RejectConflict       = "conflict"
	RejectPropositionCap = "proposition_cap"
	RejectPlayerCap      = "player_cap"
)

// SelectorConfig controls portfolio assembly
type SelectorConfig struct {
	MinLegs              int
	MaxLegs              int
	MaxPermeationRate    float64
	PlayerPermeationRate float64
	Conflicts            ConflictTable
}

// TargetSize derives the intended portfolio size from the number of
// propositions, the average leg count and the permeation rate.
func TargetSize(numProps, minLegs, maxLegs int, maxPermeationRate float64) int {
	avgLegs := float64(minLegs+maxLegs) / 2
	if avgLegs <= 0 || maxPermeationRate <= 0 {
		return 0
	}
	return int(math.Floor(float64(numProps) / (avgLegs * maxPermeationRate)))
}

// exposure counts how often each proposition and each player has been
// admitted during one selection run
type exposure struct {
	props   []int
	players map[string]int
}

func newExposure(numProps int) *exposure {
	return &exposure{
		props:   make([]int, numProps),
		players: make(map[string]int),
	}
}

func distinctPlayers(props []models.Proposition, legs []int) []string {
	seen := make(map[string]struct{}, len(legs))
	players := make([]string, 0, len(legs))
	for _, idx := range legs {
		name := props[idx].Player
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		players = append(players, name)
	}
	return players
}

func (e *exposure) admit(legs []int, players []string) {
	for _, idx := range legs {
		e.props[idx]++
	}
	for _, name := range players {
		e.players[name]++
	}
}

// Select walks the ranked combinations once and admits every combination
// that has no internal stat conflict and whose propositions and players are
// all still below their exposure caps. Counters are local to the call.
func Select(props []models.Proposition, ranked []models.Combination, cfg SelectorConfig) (*models.Portfolio, error) {
	if cfg.MaxPermeationRate <= 0 || cfg.MaxPermeationRate > 1 {
		return nil, fmt.Errorf("max permeation rate must be in (0, 1], got %v", cfg.MaxPermeationRate)
	}
	if cfg.PlayerPermeationRate <= 0 || cfg.PlayerPermeationRate > 1 {
		return nil, fmt.Errorf("player permeation rate must be in (0, 1], got %v", cfg.PlayerPermeationRate)
	}

	target := TargetSize(len(props), cfg.MinLegs, cfg.MaxLegs, cfg.MaxPermeationRate)
	portfolio := &models.Portfolio{
		TargetSize:     target,
		PropositionCap: float64(target) * cfg.MaxPermeationRate,
		PlayerCap:      float64(target) * cfg.PlayerPermeationRate,
		Rejections:     map[string]int{},
	}

	exp := newExposure(len(props))
	for rank := range ranked {
		combo := &ranked[rank]

		if _, _, ok := cfg.Conflicts.FindConflict(props, combo.Legs); ok {
			portfolio.Rejections[RejectConflict]++
			continue
		}

		if exp.propositionCapped(combo.Legs, portfolio.PropositionCap) {
			portfolio.Rejections[RejectPropositionCap]++
			continue
		}

		players := distinctPlayers(props, combo.Legs)
		if exp.playerCapped(players, portfolio.PlayerCap) {
			portfolio.Rejections[RejectPlayerCap]++
			continue
		}

		exp.admit(combo.Legs, players)
		portfolio.Parlays = append(portfolio.Parlays, models.Parlay{
			Combination: *combo,
			ParlayID:    len(portfolio.Parlays) + 1,
			Rank:        rank + 1,
		})
	}

	if len(portfolio.Parlays) == 0 {
		return portfolio, fmt.Errorf("%w: %d combinations ranked, target size %d", models.ErrEmptyPortfolio, len(ranked), target)
	}
	return portfolio, nil
}

func (e *exposure) propositionCapped(legs []int, limit float64) bool {
	for _, idx := range legs {
		if float64(e.props[idx]) >= limit {
			return true
		}
	}
	return false
}

func (e *exposure) playerCapped(players []string, limit float64) bool {
	for _, name := range players {
		if float64(e.players[name]) >= limit {
			return true
		}
	}
	return false
}

// Counts returns how many admitted parlays include each proposition
func Counts(numProps int, portfolio *models.Portfolio) []int {
	counts := make([]int, numProps)
	if portfolio == nil {
		return counts
	}
	for _, p := range portfolio.Parlays {
		for _, idx := range p.Legs {
			counts[idx]++
		}
	}
	return counts
}
