package pipeline

import (
	"sort"
	"strings"

	"github.com/rustam-sa/nba-01/internal/models"
)

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

// Filter keeps propositions with EV above MinEV that are not excluded, orders
// them by model probability (highest first, ties keep input order) and keeps
// the first TopN. TopN <= 0 keeps all. The input is not modified.
func Filter(props []models.Proposition, cfg FilterConfig) []models.Proposition {
	players := lowerSet(cfg.ExcludedPlayers)
	stats := lowerSet(cfg.ExcludedStats)

	kept := make([]models.Proposition, 0, len(props))
	for _, p := range props {
		if p.ExpectedValue <= cfg.MinEV {
			continue
		}
		if _, ok := players[strings.ToLower(p.Player)]; ok {
			continue
		}
		if _, ok := stats[strings.ToLower(p.Stat)]; ok {
			continue
		}
		kept = append(kept, p)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Probability > kept[j].Probability
	})

	if cfg.TopN > 0 && len(kept) > cfg.TopN {
		kept = kept[:cfg.TopN]
	}
	return kept
}

// CheckDuplicates fails if two skeletons share player, statistic and side
func CheckDuplicates(skeletons []models.PropSkeleton) error {
	seen := make(map[models.PropKey]int, len(skeletons))
	for i, s := range skeletons {
		key := s.Key()
		if first, ok := seen[key]; ok {
			return &DuplicateError{Key: key, First: first, Second: i}
		}
		seen[key] = i
	}
	return nil
}

// DuplicateError names the two positions holding the same proposition
type DuplicateError struct {
	Key    models.PropKey
	First  int
	Second int
}

func (e *DuplicateError) Error() string {
	return models.ErrDuplicateProposition.Error() + ": " + e.Key.String()
}

// Unwrap lets errors.Is match ErrDuplicateProposition
func (e *DuplicateError) Unwrap() error {
	return models.ErrDuplicateProposition
}
