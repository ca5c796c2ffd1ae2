package rsafactor

import (
	"context"
	"math/big"
	"sync"

	"github.com/golang/glog"
	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

// defaultRhoBatch is the number of |x-y| terms multiplied together between
// gcd checks.
const defaultRhoBatch = 128

// PollardRhoStrategy is Pollard's rho with Brent's cycle detection. The
// sequence x' = x² + c mod N is run from every (seed, c) combination in
// order, since any single pair can fail for a given N.
type PollardRhoStrategy struct {
	Seeds         []int64
	Constants     []int64
	MaxIterations uint64 // Sequence steps per (seed, c) pair
	BatchSize     int    // 0 uses defaultRhoBatch
	Workers       int    // > 1 races pairs concurrently
}

// rhoParams is one (seed, c) starting point.
type rhoParams struct {
	seed int64
	c    int64
}

// Name returns the name of this strategy.
func (s *PollardRhoStrategy) Name() string {
	return "PollardRho"
}

// Attempt implements the Strategy interface.
func (s *PollardRhoStrategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
	if rejectTrivial(n) {
		return nil
	}

	params := s.params(n)
	if len(params) == 0 {
		return nil
	}
	if s.Workers > 1 {
		return s.race(ctx, n, params)
	}

	for _, p := range params {
		if cancelled(ctx) {
			return nil
		}
		if g := s.brent(ctx, n, p); g != nil {
			return splitOn(g, n, s.Name())
		}
		glog.V(1).Infof("%s: seed=%d c=%d found nothing", s.Name(), p.seed, p.c)
	}
	return nil
}

// params expands seeds x constants, dropping constants 0 and -2 mod N for
// which x² + c degenerates.
func (s *PollardRhoStrategy) params(n *big.Int) []rhoParams {
	minusTwo := new(big.Int).Sub(n, two)
	cm := new(big.Int)
	var out []rhoParams
	for _, c := range s.Constants {
		cm.Mod(big.NewInt(c), n)
		if cm.Sign() == 0 || cm.Cmp(minusTwo) == 0 {
			continue
		}
		for _, seed := range s.Seeds {
			out = append(out, rhoParams{seed: seed, c: c})
		}
	}
	return out
}

// race runs pairs over a worker pool; the first divisor found wins and
// cancels the rest.
func (s *PollardRhoStrategy) race(ctx context.Context, n *big.Int, params []rhoParams) *FactorPair {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan rhoParams, len(params))
	for _, p := range params {
		workChan <- p
	}
	close(workChan)

	resultChan := make(chan *big.Int, 1)
	var wg sync.WaitGroup
	for w := 0; w < s.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range workChan {
				if cancelled(ctx) {
					return
				}
				if g := s.brent(ctx, n, p); g != nil {
					select {
					case resultChan <- g:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	select {
	case g := <-resultChan:
		return splitOn(g, n, s.Name())
	default:
		return nil
	}
}

// brent runs one (seed, c) sequence and returns a non-trivial divisor or
// nil. All state is local so concurrent calls are independent.
func (s *PollardRhoStrategy) brent(ctx context.Context, n *big.Int, p rhoParams) *big.Int {
	batch := s.BatchSize
	if batch <= 0 {
		batch = defaultRhoBatch
	}

	c := new(big.Int).Mod(big.NewInt(p.c), n)
	y := new(big.Int).Mod(big.NewInt(p.seed), n)
	f := func(v *big.Int) {
		v.Mul(v, v)
		v.Add(v, c)
		v.Mod(v, n)
	}

	x := new(big.Int)
	ys := new(big.Int)
	q := big.NewInt(1)
	g := big.NewInt(1)
	diff := new(big.Int)

	var steps uint64
	for r := 1; g.Cmp(one) == 0; r *= 2 {
		if steps >= s.MaxIterations || cancelled(ctx) {
			return nil
		}

		x.Set(y)
		for i := 0; i < r; i++ {
			f(y)
		}
		steps += uint64(r)

		for k := 0; k < r && g.Cmp(one) == 0; k += batch {
			if cancelled(ctx) {
				return nil
			}
			// Checkpoint: every gcd before this batch was 1.
			ys.Set(y)
			m := batch
			if r-k < m {
				m = r - k
			}
			for i := 0; i < m; i++ {
				f(y)
				diff.Sub(x, y)
				diff.Abs(diff)
				q.Mul(q, diff)
				q.Mod(q, n)
			}
			g = numtheory.GCD(q, n)
			steps += uint64(m)
		}
	}

	if g.Cmp(n) == 0 {
		// The batch product collapsed to 0 mod N. Replay the batch from
		// the checkpoint one step at a time to find the first real gcd.
		g.SetInt64(1)
		for i := 0; i <= batch && g.Cmp(one) == 0; i++ {
			f(ys)
			diff.Sub(x, ys)
			diff.Abs(diff)
			g = numtheory.GCD(diff, n)
		}
	}

	if g.Cmp(one) == 0 || g.Cmp(n) == 0 {
		return nil
	}
	return g
}
