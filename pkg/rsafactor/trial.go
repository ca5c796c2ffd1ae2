package rsafactor

import (
	"context"
	"math/big"

	"github.com/golang/glog"
	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

// SmallFactorStrategy strips primes up to Bound. It is the only strategy
// that accepts even moduli.
type SmallFactorStrategy struct {
	Bound uint64
}

// Name returns the name of this strategy.
func (s *SmallFactorStrategy) Name() string {
	return "SmallFactors"
}

// Attempt implements the Strategy interface.
func (s *SmallFactorStrategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
	if n.Cmp(four) < 0 {
		return nil
	}
	factors, _ := numtheory.RemoveSmallFactors(n, s.Bound)
	if len(factors) == 0 {
		return nil
	}
	glog.V(1).Infof("%s: small factors %v", s.Name(), factors)
	return splitOn(factors[0], n, s.Name())
}

// TrialDivisionStrategy divides by the wheel sequence up to
// min(Limit, √n). It is exhaustive below Limit and deterministic.
type TrialDivisionStrategy struct {
	Limit uint64
}

// Name returns the name of this strategy.
func (s *TrialDivisionStrategy) Name() string {
	return "TrialDivision"
}

// Attempt implements the Strategy interface.
func (s *TrialDivisionStrategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
	if rejectTrivial(n) {
		return nil
	}

	root := new(big.Int).Sqrt(n)
	limit := s.Limit
	if root.IsUint64() && root.Uint64() < limit {
		limit = root.Uint64()
	}

	d := new(big.Int)
	q := new(big.Int)
	r := new(big.Int)
	w := numtheory.NewWheel()
	for i := 0; ; i++ {
		if i%pollInterval == 0 && cancelled(ctx) {
			return nil
		}
		p := w.Next()
		if p > limit {
			return nil
		}
		d.SetUint64(p)
		q.QuoRem(n, d, r)
		if r.Sign() == 0 {
			return splitOn(d, n, s.Name())
		}
	}
}

// Factors returns the full factorization of n over primes <= Limit, in
// non-decreasing order, and the unfactored remainder.
func (s *TrialDivisionStrategy) Factors(n *big.Int) ([]*big.Int, *big.Int) {
	return numtheory.RemoveSmallFactors(n, s.Limit)
}
