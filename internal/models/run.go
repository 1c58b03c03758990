package models

import (
	"time"

	"github.com/google/uuid"
)

// Exclusion records a skeleton that was dropped because it could not be scored
type Exclusion struct {
	Skeleton PropSkeleton `json:"skeleton"`
	Reason   string       `json:"reason"`
}

// Run is the outcome of one pipeline execution. Propositions is the
// filtered table every Combination and Parlay indexes into.
type Run struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	StartedAt        time.Time     `json:"started_at" db:"started_at"`
	CompletedAt      time.Time     `json:"completed_at" db:"completed_at"`
	EVMode           string        `json:"ev_mode" db:"ev_mode"`
	MinLegs          int           `json:"min_legs" db:"min_legs"`
	MaxLegs          int           `json:"max_legs" db:"max_legs"`
	Scored           []Proposition `json:"-"`
	Propositions     []Proposition `json:"propositions"`
	Combinations     []Combination `json:"-"`
	CombinationCount int           `json:"combination_count" db:"combinations"`
	Portfolio        *Portfolio    `json:"portfolio"`
	Excluded         []Exclusion   `json:"excluded,omitempty"`
}

// Duration returns the wall time of the run
func (r *Run) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}
