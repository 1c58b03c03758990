package models

import "errors"

// Custom errors
var (
	ErrInvalidOdds          = errors.New("invalid odds")
	ErrInsufficientData     = errors.New("insufficient historical data")
	ErrUnknownBetSide       = errors.New("unknown bet side")
	ErrEmptyPortfolio       = errors.New("no selectable parlays")
	ErrDuplicateProposition = errors.New("duplicate proposition")
	ErrTooManyPropositions  = errors.New("too many propositions for exhaustive enumeration")
	ErrInvalidLegRange      = errors.New("invalid leg range")
	ErrNotFound             = errors.New("record not found")
)
