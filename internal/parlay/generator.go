// Package parlay enumerates proposition combinations and assembles them into
// an exposure-capped parlay portfolio.
//
// Legs are treated as independent: combined probabilities and odds are plain
// products. The only dependence the package knows about is the explicit
// conflict table applied during selection.
package parlay

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rustam-sa/nba-01/internal/evaluator"
	"github.com/rustam-sa/nba-01/internal/models"
)

// EVMode selects the figure stored in Combination.CombinedEV
type EVMode string

const (
	// EVModeSum ranks by the sum of leg expected values
	EVModeSum EVMode = "sum"
	// EVModeExact ranks by the expected value of the parlay itself
	EVModeExact EVMode = "exact"
)

// Default enumeration guards
const (
	DefaultMaxPropositions = 40
	DefaultMaxCombinations = 250000
)

// GeneratorConfig controls combination enumeration
type GeneratorConfig struct {
	MinLegs         int
	MaxLegs         int
	EVMode          EVMode
	Stake           decimal.Decimal
	MaxPropositions int
	MaxCombinations int
	PruneBelowMinEV bool
	MinCombinedEV   float64
	Workers         int
}

func (c GeneratorConfig) validate(n int) error {
	if c.MinLegs < 1 || c.MaxLegs < c.MinLegs {
		return fmt.Errorf("%w: min_legs=%d max_legs=%d", models.ErrInvalidLegRange, c.MinLegs, c.MaxLegs)
	}
	switch c.EVMode {
	case "", EVModeSum, EVModeExact:
	default:
		return fmt.Errorf("unknown ev mode %q", c.EVMode)
	}

	maxProps := c.MaxPropositions
	if maxProps <= 0 {
		maxProps = DefaultMaxPropositions
	}
	if n > maxProps {
		return fmt.Errorf("%w: %d propositions exceeds limit of %d", models.ErrTooManyPropositions, n, maxProps)
	}

	maxCombos := c.MaxCombinations
	if maxCombos <= 0 {
		maxCombos = DefaultMaxCombinations
	}
	if total := CountCombinations(n, c.MinLegs, c.MaxLegs, maxCombos); total > maxCombos {
		return fmt.Errorf("%w: more than %d combinations for %d propositions", models.ErrTooManyPropositions, maxCombos, n)
	}
	return nil
}

// saturated is the value returned once a count exceeds limit
func saturated(limit int) int {
	if limit == math.MaxInt {
		return limit
	}
	return limit + 1
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Binomial returns C(n, k), saturating at limit+1 once it exceeds limit
func Binomial(n, k, limit int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1
	for i := 0; i < k; i++ {
		// c*(n-i) is divisible by i+1; reduce first so the product only
		// overflows when the result itself would.
		g := gcd(c, i+1)
		factor := (n - i) / ((i + 1) / g)
		c /= g
		if c > limit/factor {
			return saturated(limit)
		}
		c *= factor
		if c > limit {
			return saturated(limit)
		}
	}
	return c
}

// CountCombinations returns the number of k-subsets summed over the leg
// range, saturating at limit+1.
func CountCombinations(n, minLegs, maxLegs, limit int) int {
	total := 0
	for k := minLegs; k <= maxLegs; k++ {
		count := Binomial(n, k, limit)
		if count > limit-total {
			return saturated(limit)
		}
		total += count
	}
	return total
}

// enumerate lists every k-subset of [0, n) for k in [minLegs, maxLegs],
// smallest k first, each size in lexicographic order.
func enumerate(n, minLegs, maxLegs int) [][]int {
	var out [][]int
	for k := minLegs; k <= maxLegs && k <= n; k++ {
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		for {
			out = append(out, append([]int(nil), idx...))

			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				break
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
	return out
}

// Score computes the combined figures of one subset of propositions. ToWin
// is the profit on a unit stake; StakeToWin scales it by stake.
func Score(props []models.Proposition, legs []int, mode EVMode, stake decimal.Decimal) models.Combination {
	prob, house, combinedOdds, sumEV := 1.0, 1.0, 1.0, 0.0
	players := make(map[string]struct{}, len(legs))
	stats := make(map[string]struct{}, len(legs))
	teams := make(map[string]struct{}, len(legs))

	for _, idx := range legs {
		p := &props[idx]
		prob *= p.Probability
		house *= p.HouseProbability
		combinedOdds *= p.DecimalOdds
		sumEV += p.ExpectedValue
		players[p.Player] = struct{}{}
		stats[p.Stat] = struct{}{}
		teams[p.Team] = struct{}{}
	}

	exact := evaluator.ExpectedValue(prob, combinedOdds, evaluator.UnitStake)
	combinedEV := sumEV
	if mode == EVModeExact {
		combinedEV = exact
	}

	if stake.IsZero() {
		stake = decimal.NewFromInt(1)
	}
	toWin := decimal.NewFromFloat(combinedOdds - 1)

	return models.Combination{
		Legs:                     append([]int(nil), legs...),
		CombinedProbability:      prob,
		CombinedHouseProbability: house,
		CombinedOdds:             combinedOdds,
		CombinedEV:               combinedEV,
		SumEV:                    sumEV,
		ExactEV:                  exact,
		ToWin:                    toWin.Round(2),
		StakeToWin:               stake.Mul(toWin).Round(2),
		Diversity:                len(players) + len(stats) + len(teams),
	}
}

// Generate enumerates and scores every combination of props within the leg
// range. Output is in generation order; Sequence records that order.
func Generate(ctx context.Context, props []models.Proposition, cfg GeneratorConfig) ([]models.Combination, error) {
	if err := cfg.validate(len(props)); err != nil {
		return nil, err
	}

	subsets := enumerate(len(props), cfg.MinLegs, cfg.MaxLegs)
	if len(subsets) == 0 {
		return nil, fmt.Errorf("%w: %d propositions cannot fill %d legs", models.ErrEmptyPortfolio, len(props), cfg.MinLegs)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := int(math.Ceil(float64(len(subsets)) / float64(workers)))

	results := make([]models.Combination, len(subsets))
	keep := make([]bool, len(subsets))

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(subsets); start += chunk {
		end := min(start+chunk, len(subsets))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				c := Score(props, subsets[i], cfg.EVMode, cfg.Stake)
				c.Sequence = i
				if cfg.PruneBelowMinEV && c.CombinedEV < cfg.MinCombinedEV {
					continue
				}
				results[i] = c
				keep[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combos := results[:0]
	for i := range results {
		if keep[i] {
			combos = append(combos, results[i])
		}
	}
	if len(combos) == 0 {
		return nil, fmt.Errorf("%w: every combination fell below combined EV %v", models.ErrEmptyPortfolio, cfg.MinCombinedEV)
	}
	return combos, nil
}

// Rank returns the combinations ordered by combined EV, highest first. Ties
// keep generation order.
func Rank(combos []models.Combination) []models.Combination {
	ranked := make([]models.Combination, len(combos))
	copy(ranked, combos)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CombinedEV != ranked[j].CombinedEV {
			return ranked[i].CombinedEV > ranked[j].CombinedEV
		}
		return ranked[i].Sequence < ranked[j].Sequence
	})
	return ranked
}
