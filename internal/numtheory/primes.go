package numtheory

import "math/big"

// TrialPrimalityLimit is the largest trial divisor IsProbablyPrime will use.
// Inputs whose square root exceeds it are handed to Miller-Rabin instead.
const TrialPrimalityLimit = 1 << 20

// millerRabinRounds is passed to big.Int.ProbablyPrime for large inputs.
const millerRabinRounds = 20

// SmallPrimes is the fixed prime list tried before the wheel takes over.
var SmallPrimes = []uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47,
	53, 59, 61, 67, 71, 73, 79, 83, 89, 97,
}

// wheelIncrements walks the residues coprime to 30, starting from 7 mod 30.
var wheelIncrements = [8]uint64{4, 2, 4, 2, 4, 6, 2, 6}

// IsProbablyPrime reports whether n is prime. Below 2^40 the answer comes
// from deterministic trial division by 6k±1; above that it is Miller-Rabin
// with a fixed number of rounds.
//
// This is a correctness aid for the factoring strategies, not a
// cryptographic primality proof.
func IsProbablyPrime(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	if !n.IsUint64() || n.Uint64() >= uint64(TrialPrimalityLimit)*uint64(TrialPrimalityLimit) {
		return n.ProbablyPrime(millerRabinRounds)
	}

	v := n.Uint64()
	switch {
	case v < 2:
		return false
	case v < 4:
		return true
	case v%2 == 0 || v%3 == 0:
		return false
	}
	for i := uint64(5); i*i <= v; i += 6 {
		if v%i == 0 || v%(i+2) == 0 {
			return false
		}
	}
	return true
}

// Wheel yields trial divisors: first SmallPrimes, then every integer above
// 97 that is coprime to 30. Composite candidates are harmless because their
// prime factors have already been divided out by the time they come up.
type Wheel struct {
	idx int
	d   uint64
}

// NewWheel returns a wheel positioned before the first divisor (2).
func NewWheel() *Wheel {
	return &Wheel{}
}

// Next returns the next trial divisor.
func (w *Wheel) Next() uint64 {
	if w.idx < len(SmallPrimes) {
		p := SmallPrimes[w.idx]
		w.idx++
		w.d = p
		return p
	}
	// 97 ≡ 7 (mod 30), so the increment table lines up with the last small prime.
	w.d += wheelIncrements[(w.idx-len(SmallPrimes))%len(wheelIncrements)]
	w.idx++
	return w.d
}

// RemoveSmallFactors strips every prime factor <= bound from n.
//
// Returns:
//   - factors in non-decreasing order, with multiplicity
//   - the remainder, which is 1 or has no prime factor <= bound
//
// A remainder that is itself a prime <= bound is moved into factors.
func RemoveSmallFactors(n *big.Int, bound uint64) ([]*big.Int, *big.Int) {
	rem := new(big.Int).Abs(n)
	var factors []*big.Int
	if rem.Cmp(one) <= 0 {
		return factors, rem
	}

	d := new(big.Int)
	q := new(big.Int)
	r := new(big.Int)
	sq := new(big.Int)

	w := NewWheel()
	for {
		p := w.Next()
		if p > bound {
			break
		}
		d.SetUint64(p)
		if sq.Mul(d, d).Cmp(rem) > 0 {
			// No divisor left at or below √rem, so rem is 1 or prime.
			if rem.Cmp(one) > 0 && rem.IsUint64() && rem.Uint64() <= bound {
				factors = append(factors, new(big.Int).Set(rem))
				rem.SetInt64(1)
			}
			break
		}
		for {
			q.QuoRem(rem, d, r)
			if !isZero(r) {
				break
			}
			factors = append(factors, new(big.Int).Set(d))
			rem.Set(q)
		}
	}
	return factors, rem
}
