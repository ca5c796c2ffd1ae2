package rsafactor

import (
	"context"
	"math/big"

	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

// squaresMod64 marks the residues a square can take modulo 64. It rejects
// most candidates before the expensive integer square root.
var squaresMod64 = func() [64]bool {
	var t [64]bool
	for i := 0; i < 64; i++ {
		t[(i*i)%64] = true
	}
	return t
}()

// FermatStrategy writes N = a² - b² = (a-b)(a+b), starting from a = ⌈√N⌉
// and walking a upward. It finds factors quickly only when p and q are
// numerically close; the cost grows with (p-q)²/√N.
type FermatStrategy struct {
	MaxIterations uint64
}

// Name returns the name of this strategy.
func (s *FermatStrategy) Name() string {
	return "Fermat"
}

// Attempt implements the Strategy interface.
func (s *FermatStrategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
	if rejectTrivial(n) {
		return nil
	}

	a := numtheory.CeilSqrt(n)
	b2 := new(big.Int).Mul(a, a)
	b2.Sub(b2, n)
	step := new(big.Int)

	for i := uint64(0); i < s.MaxIterations; i++ {
		if i%pollInterval == 0 && cancelled(ctx) {
			return nil
		}

		if squaresMod64[lowBits(b2)&63] {
			if b, ok := numtheory.IsPerfectSquare(b2); ok {
				f := new(big.Int).Sub(a, b)
				return splitOn(f, n, s.Name())
			}
		}

		// (a+1)² - N = a² - N + 2a + 1
		step.Lsh(a, 1)
		step.Add(step, one)
		b2.Add(b2, step)
		a.Add(a, one)
	}
	return nil
}

func lowBits(n *big.Int) uint64 {
	words := n.Bits()
	if len(words) == 0 {
		return 0
	}
	return uint64(words[0])
}
