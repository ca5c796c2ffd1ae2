package rsafactor

import (
	"context"
	"math/big"
	"time"

	"github.com/golang/glog"
)

// Oracle looks up previously computed factorizations of n. Lookup returns
// known factors (any order, possibly with repeats) or an empty slice when
// nothing is known.
type Oracle interface {
	Lookup(ctx context.Context, n *big.Int) ([]*big.Int, error)
}

// OracleStrategy adapts an Oracle to the Strategy interface. Lookup errors
// are logged and treated as "no result"; they never fail a run.
type OracleStrategy struct {
	Oracle  Oracle
	Timeout time.Duration // 0 leaves the caller's deadline in charge
	Label   string        // Defaults to "ExternalOracle"
}

// Name returns the name of this strategy.
func (s *OracleStrategy) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "ExternalOracle"
}

// Attempt implements the Strategy interface.
func (s *OracleStrategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
	if s.Oracle == nil || n.Cmp(four) < 0 {
		return nil
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	factors, err := s.Oracle.Lookup(ctx, n)
	if err != nil {
		glog.Warningf("%s: lookup of %d-bit modulus failed: %v", s.Name(), n.BitLen(), err)
		return nil
	}

	r := new(big.Int)
	for _, f := range factors {
		if f == nil || f.Cmp(one) <= 0 || f.Cmp(n) >= 0 {
			continue
		}
		if r.Mod(n, f).Sign() == 0 {
			return newFactorPair(f, n, s.Name())
		}
	}
	return nil
}
