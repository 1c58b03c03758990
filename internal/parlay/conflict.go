package parlay

import (
	"fmt"
	"strings"

	"github.com/rustam-sa/nba-01/internal/models"
)

// StatPair names two statistics that must not be combined for the same player
type StatPair struct {
	A string `mapstructure:"a" json:"a"`
	B string `mapstructure:"b" json:"b"`
}

// ConflictTable is a set of mutually exclusive statistic pairs. The zero
// value has no conflicts.
type ConflictTable struct {
	pairs map[[2]string]struct{}
}

func pairKey(a, b string) [2]string {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// NewConflictTable builds a table from unordered statistic pairs
func NewConflictTable(pairs ...StatPair) ConflictTable {
	t := ConflictTable{pairs: make(map[[2]string]struct{}, len(pairs))}
	for _, p := range pairs {
		t.pairs[pairKey(p.A, p.B)] = struct{}{}
	}
	return t
}

// DefaultConflictTable forbids pairing points with field goals made, which
// are linearly dependent for the same player.
func DefaultConflictTable() ConflictTable {
	return NewConflictTable(StatPair{A: models.StatPoints, B: models.StatFGM})
}

// Conflicts reports whether two statistics of the same player are exclusive
func (t ConflictTable) Conflicts(statA, statB string) bool {
	if len(t.pairs) == 0 {
		return false
	}
	_, ok := t.pairs[pairKey(statA, statB)]
	return ok
}

// Len returns the number of configured pairs
func (t ConflictTable) Len() int {
	return len(t.pairs)
}

// FindConflict returns the first pair of legs that belong to the same
// player and carry exclusive statistics.
func (t ConflictTable) FindConflict(props []models.Proposition, legs []int) (int, int, bool) {
	if len(t.pairs) == 0 {
		return 0, 0, false
	}
	for i := 0; i < len(legs); i++ {
		a := &props[legs[i]]
		for j := i + 1; j < len(legs); j++ {
			b := &props[legs[j]]
			if a.Player == b.Player && t.Conflicts(a.Stat, b.Stat) {
				return legs[i], legs[j], true
			}
		}
	}
	return 0, 0, false
}

// String lists the configured pairs
func (t ConflictTable) String() string {
	parts := make([]string, 0, len(t.pairs))
	for k := range t.pairs {
		parts = append(parts, fmt.Sprintf("%s/%s", k[0], k[1]))
	}
	return strings.Join(parts, ",")
}
