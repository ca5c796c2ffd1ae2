package rsafactor

import (
	"context"
	"math/big"
	"time"

	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

// Strategy is one factoring algorithm. Implementations are pure functions
// of n with an internal effort budget: they return a candidate pair, or nil
// once the budget is spent. They never return errors; the orchestrator
// verifies every candidate.
//
// The context is polled cooperatively and should be honoured so that a
// parallel race or a deadline can stop the loop early.
type Strategy interface {
	// Attempt tries to split n. It returns nil when no factor was found.
	Attempt(ctx context.Context, n *big.Int) *FactorPair

	// Name returns a human-readable name for this strategy.
	Name() string
}

// FactorConfig configures the default strategy list and the orchestrator.
type FactorConfig struct {
	// SmallFactorBound is the largest divisor the small-factor pass tries.
	SmallFactorBound uint64

	// TrialDivisionLimit caps wheel trial division.
	TrialDivisionLimit uint64

	// FermatMaxIterations caps the number of a values Fermat's method tests.
	FermatMaxIterations uint64

	// PollardP1Bound is the smoothness bound B for Pollard's p-1.
	PollardP1Bound uint64

	// PollardRhoSeeds and PollardRhoConstants are combined pairwise as
	// starting points x0 and increments c for f(x) = x^2 + c mod N.
	PollardRhoSeeds     []int64
	PollardRhoConstants []int64

	// PollardRhoMaxIterations caps sequence steps per (seed, c) pair.
	PollardRhoMaxIterations uint64

	// PollardRhoWorkers races (seed, c) pairs concurrently when > 1.
	PollardRhoWorkers int

	// EnableExternalOracle appends the oracle strategy last.
	EnableExternalOracle bool

	// OracleURL is the base URL of a FactorDB-compatible service.
	OracleURL string

	// CacheDir, when set, keeps verified factorizations on disk and
	// consults them before any other strategy.
	CacheDir string

	// PerStrategyTimeout bounds each strategy (0 = no per-strategy limit).
	PerStrategyTimeout time.Duration

	// TotalTimeout bounds the whole run (0 = no limit).
	TotalTimeout time.Duration

	// Parallel races every strategy instead of trying them in order.
	Parallel bool
}

// DefaultFactorConfig returns budgets that catch the usual weak moduli in
// seconds on a laptop.
func DefaultFactorConfig() FactorConfig {
	return FactorConfig{
		SmallFactorBound:        1000,
		TrialDivisionLimit:      1_000_000,
		FermatMaxIterations:     1_000_000,
		PollardP1Bound:          100_000,
		PollardRhoSeeds:         []int64{2, 3, 5, 7, 11},
		PollardRhoConstants:     []int64{1, 3, 5, 7},
		PollardRhoMaxIterations: 2_000_000,
		PollardRhoWorkers:       1,
		EnableExternalOracle:    false,
		OracleURL:               DefaultFactorDBURL,
		PerStrategyTimeout:      time.Minute,
		TotalTimeout:            5 * time.Minute,
		Parallel:                false,
	}
}

// DefaultStrategies returns the strategy list in increasing cost order:
// small factors, trial division, Fermat, Pollard p-1, Pollard rho, and the
// oracle last when enabled and supplied.
func DefaultStrategies(cfg FactorConfig, oracle Oracle) []Strategy {
	strategies := []Strategy{
		&SmallFactorStrategy{Bound: cfg.SmallFactorBound},
		&TrialDivisionStrategy{Limit: cfg.TrialDivisionLimit},
		&FermatStrategy{MaxIterations: cfg.FermatMaxIterations},
		&PollardP1Strategy{Bound: cfg.PollardP1Bound},
		&PollardRhoStrategy{
			Seeds:         cfg.PollardRhoSeeds,
			Constants:     cfg.PollardRhoConstants,
			MaxIterations: cfg.PollardRhoMaxIterations,
			Workers:       cfg.PollardRhoWorkers,
		},
	}
	if cfg.EnableExternalOracle && oracle != nil {
		strategies = append(strategies, &OracleStrategy{Oracle: oracle, Timeout: cfg.PerStrategyTimeout})
	}
	return strategies
}

// pollInterval is how many loop iterations pass between context checks.
const pollInterval = 1 << 12

var (
	one  = big.NewInt(1)
	two  = big.NewInt(2)
	four = big.NewInt(4)
)

func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// rejectTrivial reports whether n is outside every arithmetic strategy's
// domain: too small, even (left to the small-factor pass) or prime.
func rejectTrivial(n *big.Int) bool {
	return n.Cmp(four) < 0 || n.Bit(0) == 0 || numtheory.IsProbablyPrime(n)
}

// splitOn returns the pair (g, n/g) when g is a non-trivial divisor of n.
func splitOn(g, n *big.Int, strategy string) *FactorPair {
	if g.Cmp(one) <= 0 || g.Cmp(n) >= 0 {
		return nil
	}
	return newFactorPair(g, n, strategy)
}
