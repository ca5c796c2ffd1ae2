package rsafactor

import (
	"context"
	"math/big"

	"github.com/golang/glog"
	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

// defaultP1GCDInterval is how many exponent steps pass between gcd checks.
const defaultP1GCDInterval = 64

// PollardP1Strategy computes a = 2^(j!) mod N for j up to Bound and checks
// gcd(a-1, N) along the way. It succeeds when p-1 (or q-1) is Bound-smooth.
type PollardP1Strategy struct {
	Bound       uint64
	GCDInterval uint64 // 0 uses defaultP1GCDInterval
}

// Name returns the name of this strategy.
func (s *PollardP1Strategy) Name() string {
	return "PollardP-1"
}

// Attempt implements the Strategy interface.
func (s *PollardP1Strategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
	if rejectTrivial(n) || s.Bound < 2 {
		return nil
	}
	interval := s.GCDInterval
	if interval == 0 {
		interval = defaultP1GCDInterval
	}

	a := big.NewInt(2)
	// checkpoint holds a before exponent checkpointJ was applied; every
	// gcd up to that point was 1.
	checkpoint := new(big.Int).Set(a)
	checkpointJ := uint64(2)

	j := new(big.Int)
	am1 := new(big.Int)
	for k := uint64(2); k <= s.Bound; k++ {
		if (k-2)%pollInterval == 0 && cancelled(ctx) {
			return nil
		}

		a = numtheory.ModPow(a, j.SetUint64(k), n)
		if (k-checkpointJ+1) < interval && k != s.Bound {
			continue
		}

		g := numtheory.GCD(am1.Sub(a, one), n)
		switch {
		case g.Cmp(one) == 0:
			checkpoint.Set(a)
			checkpointJ = k + 1
		case g.Cmp(n) == 0:
			glog.V(1).Infof("%s: gcd hit N between j=%d and j=%d, backtracking", s.Name(), checkpointJ, k)
			return s.backtrack(n, checkpoint, checkpointJ, k)
		default:
			return splitOn(g, n, s.Name())
		}
	}
	return nil
}

// backtrack replays exponents from..to one at a time from a saved state,
// checking the gcd after every step. A step that jumps straight from 1 to
// N means both p-1 and q-1 became smooth together and p-1 cannot separate
// them.
func (s *PollardP1Strategy) backtrack(n, from *big.Int, fromJ, toJ uint64) *FactorPair {
	a := new(big.Int).Set(from)
	j := new(big.Int)
	am1 := new(big.Int)
	for k := fromJ; k <= toJ; k++ {
		a = numtheory.ModPow(a, j.SetUint64(k), n)
		g := numtheory.GCD(am1.Sub(a, one), n)
		if g.Cmp(one) == 0 {
			continue
		}
		if g.Cmp(n) == 0 {
			return nil
		}
		return splitOn(g, n, s.Name())
	}
	return nil
}
