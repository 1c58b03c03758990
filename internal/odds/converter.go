// Package odds converts between American odds, decimal odds and implied probability.
package odds

import (
	"fmt"
	"math"

	"github.com/rustam-sa/nba-01/internal/models"
)

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -200 → Decimal 1.50
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("%w: american odds cannot be 0", models.ErrInvalidOdds)
	}

	if american > 0 {
		return 1.0 + float64(american)/100.0, nil
	}

	return 1.0 + 100.0/float64(-american), nil
}

// ImpliedProbability converts decimal odds to the bookmaker-implied probability
func ImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 0 || math.IsNaN(decimal) {
		return 0, fmt.Errorf("%w: decimal odds must be > 0, got %v", models.ErrInvalidOdds, decimal)
	}

	return 1.0 / decimal, nil
}

// DecimalToAmerican converts decimal odds back to American odds
// Decimal 2.50 → American +150
// Decimal 1.50 → American -200
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1.0 || math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return 0, fmt.Errorf("%w: decimal odds must be > 1, got %v", models.ErrInvalidOdds, decimal)
	}

	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}

	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// AmericanToImpliedProbability combines AmericanToDecimal and ImpliedProbability
func AmericanToImpliedProbability(american int) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return ImpliedProbability(decimal)
}
