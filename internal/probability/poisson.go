// Package probability estimates outcome probabilities for count statistics.
//
// The estimator fits a Poisson model whose rate is the sample mean (the
// maximum-likelihood estimate) and reads tail probabilities off its CDF.
// No smoothing or shrinkage is applied.
package probability

import (
	"fmt"
	"math"

	"github.com/rustam-sa/nba-01/internal/models"
)

// tailEpsilon bounds the pmf terms still worth summing once past the mode
const tailEpsilon = 1e-18

// Lambda returns the Poisson rate fitted to the samples (their mean)
func Lambda(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("%w: empty sample", models.ErrInsufficientData)
	}

	sum := 0.0
	for i, v := range samples {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: observation %d is %v", models.ErrInsufficientData, i, v)
		}
		sum += v
	}
	return sum / float64(len(samples)), nil
}

// PoissonPMF returns P(X = k) for rate lambda
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	lg, _ := math.Lgamma(float64(k + 1))
	return math.Exp(-lambda + float64(k)*math.Log(lambda) - lg)
}

// PoissonCDF returns P(X <= n) for rate lambda. Fractional thresholds are
// floored, so a 24.5 line reads P(X <= 24).
func PoissonCDF(n float64, lambda float64) float64 {
	if n < 0 || math.IsNaN(n) {
		return 0
	}
	if lambda == 0 {
		return 1
	}

	upper := math.Floor(n)
	cdf := 0.0
	for k := 0; float64(k) <= upper; k++ {
		term := PoissonPMF(k, lambda)
		cdf += term
		if float64(k) > lambda && term < tailEpsilon {
			break
		}
	}
	return math.Min(cdf, 1)
}

// POver returns the probability that the statistic exceeds n
func POver(samples []float64, n float64) (float64, error) {
	lambda, err := Lambda(samples)
	if err != nil {
		return 0, err
	}
	return 1 - PoissonCDF(n, lambda), nil
}

// PUnder returns the probability that the statistic is at most n
func PUnder(samples []float64, n float64) (float64, error) {
	lambda, err := Lambda(samples)
	if err != nil {
		return 0, err
	}
	return PoissonCDF(n, lambda), nil
}
