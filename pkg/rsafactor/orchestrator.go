package rsafactor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Orchestrator runs an ordered list of strategies against a modulus and
// returns the first verified factor pair.
type Orchestrator struct {
	config     FactorConfig
	strategies []Strategy
	oracle     Oracle
	cache      *FileCache
}

// NewOrchestrator creates an orchestrator with the default strategy list
// for cfg.
func NewOrchestrator(cfg FactorConfig) *Orchestrator {
	return &Orchestrator{config: cfg}
}

// WithStrategies replaces the default strategy list. Order matters in
// sequential mode.
func (o *Orchestrator) WithStrategies(strategies ...Strategy) *Orchestrator {
	o.strategies = strategies
	return o
}

// WithOracle supplies the oracle used when EnableExternalOracle is set.
// Without one, a FactorDBClient for OracleURL is created.
func (o *Orchestrator) WithOracle(oracle Oracle) *Orchestrator {
	o.oracle = oracle
	return o
}

// WithCache consults c before every other strategy and records each new
// verified pair in it. Without one, a FileCache for CacheDir is used when
// that is set.
func (o *Orchestrator) WithCache(c *FileCache) *Orchestrator {
	o.cache = c
	return o
}

func (o *Orchestrator) fileCache() *FileCache {
	if o.cache == nil && o.config.CacheDir != "" {
		return NewFileCache(o.config.CacheDir)
	}
	return o.cache
}

// Config returns the orchestrator's configuration.
func (o *Orchestrator) Config() FactorConfig {
	return o.config
}

// Strategies returns the strategies a run will use, in order. A cache,
// when configured, always comes first.
func (o *Orchestrator) Strategies() []Strategy {
	strategies := o.strategies
	if strategies == nil {
		oracle := o.oracle
		if oracle == nil && o.config.EnableExternalOracle {
			oracle = NewFactorDBClient(o.config.OracleURL)
		}
		strategies = DefaultStrategies(o.config, oracle)
	}
	if c := o.fileCache(); c != nil {
		strategies = append([]Strategy{&OracleStrategy{Oracle: c, Label: CacheStrategyName}}, strategies...)
	}
	return strategies
}

// Run factors n. On success the Result holds a verified pair; otherwise the
// error is a *FactorizationError wrapping ErrFactorizationExhausted or
// ErrTimedOut, or wraps ErrInvalidInput for n < 4.
func (o *Orchestrator) Run(ctx context.Context, n *big.Int) (*Result, error) {
	if n == nil || n.Cmp(four) < 0 {
		return nil, fmt.Errorf("modulus %v must be at least 4: %w", n, ErrInvalidInput)
	}
	n = new(big.Int).Set(n)

	if o.config.TotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.TotalTimeout)
		defer cancel()
	}

	strategies := o.Strategies()
	res := &Result{RunID: uuid.NewString(), State: StatePending}
	start := time.Now()
	glog.Infof("[%s] factoring %d-bit modulus with %d strategies (parallel=%v)", res.RunID, n.BitLen(), len(strategies), o.config.Parallel)

	res.State = StateTrying
	if o.config.Parallel {
		o.runParallel(ctx, n, strategies, res)
	} else {
		o.runSequential(ctx, n, strategies, res)
	}
	res.Elapsed = time.Since(start)

	if res.Pair != nil {
		res.State = StateSucceeded
		glog.Infof("[%s] %s split N in %v: %s", res.RunID, res.Pair.Strategy, res.Elapsed, res.Pair)
		if c := o.fileCache(); c != nil && res.Pair.Strategy != CacheStrategyName {
			if err := c.Store(n, res.Pair); err != nil {
				glog.Warningf("[%s] failed to cache factorization: %v", res.RunID, err)
			}
		}
		return res, nil
	}

	res.State = StateFailed
	kind := ErrFactorizationExhausted
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = ErrTimedOut
	} else if ctx.Err() != nil {
		return res, fmt.Errorf("factorization cancelled: %w", ctx.Err())
	}
	glog.Infof("[%s] %v after %v", res.RunID, kind, res.Elapsed)
	return res, &FactorizationError{Kind: kind, Attempts: res.Attempts}
}

// runSequential tries each strategy in order until one yields a verified
// pair.
func (o *Orchestrator) runSequential(ctx context.Context, n *big.Int, strategies []Strategy, res *Result) {
	for _, s := range strategies {
		if ctx.Err() != nil {
			return
		}
		attempt, pair := o.try(ctx, s, n, res.RunID)
		res.Attempts = append(res.Attempts, attempt)
		if pair != nil {
			res.Pair = pair
			return
		}
	}
}

type racedAttempt struct {
	attempt Attempt
	pair    *FactorPair
}

// errRaceWon is returned by the first strategy in a parallel run to produce a
// verified pair; errgroup cancels the group context on it, stopping the rest.
var errRaceWon = errors.New("strategy won the race")

// runParallel starts every strategy at once; the first verified pair
// cancels the others. All goroutines are waited for so their attempts are
// recorded.
func (o *Orchestrator) runParallel(ctx context.Context, n *big.Int, strategies []Strategy, res *Result) {
	results := make(chan racedAttempt, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range strategies {
		s := s
		g.Go(func() error {
			attempt, pair := o.try(gctx, s, n, res.RunID)
			results <- racedAttempt{attempt: attempt, pair: pair}
			if pair != nil {
				return errRaceWon
			}
			return nil
		})
	}
	// The only error a racer returns is errRaceWon.
	_ = g.Wait()
	close(results)

	for r := range results {
		res.Attempts = append(res.Attempts, r.attempt)
		if r.pair != nil && res.Pair == nil {
			res.Pair = r.pair
		}
	}
}

// try runs one strategy under the per-strategy timeout and verifies its
// result. A pair that fails verification is logged and discarded.
func (o *Orchestrator) try(ctx context.Context, s Strategy, n *big.Int, runID string) (Attempt, *FactorPair) {
	sctx := ctx
	if o.config.PerStrategyTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, o.config.PerStrategyTimeout)
		defer cancel()
	}

	glog.V(1).Infof("[%s] trying %s", runID, s.Name())
	start := time.Now()
	pair := s.Attempt(sctx, n)
	attempt := Attempt{Strategy: s.Name(), Elapsed: time.Since(start)}

	switch {
	case pair == nil && sctx.Err() != nil:
		if errors.Is(sctx.Err(), context.DeadlineExceeded) {
			attempt.Outcome = OutcomeTimedOut
		} else {
			attempt.Outcome = OutcomeCancelled
		}
	case pair == nil:
		attempt.Outcome = OutcomeExhausted
	default:
		if err := pair.Verify(n); err != nil {
			glog.Errorf("[%s] %s returned a bad pair, discarding: %v", runID, s.Name(), err)
			attempt.Outcome = OutcomeRejected
			attempt.Err = err
			pair = nil
		} else {
			attempt.Outcome = OutcomeFound
			if pair.P.Cmp(pair.Q) > 0 {
				pair.P, pair.Q = pair.Q, pair.P
			}
			if pair.Strategy == "" {
				pair.Strategy = s.Name()
			}
		}
	}
	glog.Infof("[%s] %s: %s in %v", runID, s.Name(), attempt.Outcome, attempt.Elapsed)
	return attempt, pair
}

// Factor splits n into a verified factor pair using cfg's default
// strategies.
func Factor(ctx context.Context, n *big.Int, cfg FactorConfig) (*FactorPair, error) {
	res, err := NewOrchestrator(cfg).Run(ctx, n)
	if err != nil {
		return nil, err
	}
	return res.Pair, nil
}
