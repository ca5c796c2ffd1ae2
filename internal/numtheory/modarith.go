// Package numtheory provides the exact-integer arithmetic the factoring
// strategies and RSA key recovery are built on: gcd, Bézout coefficients,
// modular inverses, modular exponentiation and small-prime utilities.
//
// All functions treat their *big.Int arguments as read-only and return
// freshly allocated results.
package numtheory

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrNoInverse is returned when gcd(a, m) != 1.
	ErrNoInverse = errors.New("modular inverse does not exist")

	// ErrInvalidModulus is returned when a modulus is not strictly positive.
	ErrInvalidModulus = errors.New("modulus must be positive")
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// GCD returns the non-negative greatest common divisor of a and b using
// Euclid's algorithm. GCD(0, 0) is 0. Negative inputs are accepted.
func GCD(a, b *big.Int) *big.Int {
	x := new(big.Int).Abs(a)
	y := new(big.Int).Abs(b)
	r := new(big.Int)
	for y.Sign() != 0 {
		r.Rem(x, y)
		x, y, r = y, r, x
	}
	return x
}

// ExtendedGCD returns g = gcd(a, b) together with Bézout coefficients x, y
// such that a*x + b*y = g. The identity holds exactly for every input,
// including zero and negative values; g is always non-negative.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	q := new(big.Int)
	rem := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		q.QuoRem(oldR, r, rem)
		oldR, r = r, new(big.Int).Set(rem)

		tmp.Mul(q, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(q, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}

// ModInverse returns the inverse of a modulo m in [0, m).
//
// Returns:
//   - an error wrapping ErrInvalidModulus when m <= 0
//   - an error wrapping ErrNoInverse when gcd(a, m) != 1
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, fmt.Errorf("inverse of %s mod %s: %w", a, m, ErrInvalidModulus)
	}

	reduced := new(big.Int).Mod(a, m)
	g, x, _ := ExtendedGCD(reduced, m)
	if g.Cmp(one) != 0 {
		return nil, fmt.Errorf("inverse of %s mod %s (gcd %s): %w", a, m, g, ErrNoInverse)
	}
	return x.Mod(x, m), nil
}

// ModPow computes base^exponent mod modulus by right-to-left binary
// square-and-multiply. An exponent of 0 yields 1 (or 0 when modulus is 1).
// Negative bases are reduced into [0, modulus) first.
//
// ModPow panics on a negative exponent or a non-positive modulus; those are
// programming errors, not data errors.
func ModPow(base, exponent, modulus *big.Int) *big.Int {
	if modulus.Sign() <= 0 {
		panic("numtheory: ModPow with non-positive modulus")
	}
	if exponent.Sign() < 0 {
		panic("numtheory: ModPow with negative exponent")
	}
	if modulus.Cmp(one) == 0 {
		return new(big.Int)
	}

	result := big.NewInt(1)
	b := new(big.Int).Mod(base, modulus)
	for i := 0; i < exponent.BitLen(); i++ {
		if exponent.Bit(i) == 1 {
			result.Mul(result, b)
			result.Mod(result, modulus)
		}
		b.Mul(b, b)
		b.Mod(b, modulus)
	}
	return result
}

// IsPerfectSquare reports whether n is a perfect square and returns its
// integer square root. Negative n is never a square.
func IsPerfectSquare(n *big.Int) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	root := new(big.Int).Sqrt(n)
	sq := new(big.Int).Mul(root, root)
	return root, sq.Cmp(n) == 0
}

// CeilSqrt returns ⌈√n⌉ for n >= 0.
func CeilSqrt(n *big.Int) *big.Int {
	root := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(root, root).Cmp(n) != 0 {
		root.Add(root, one)
	}
	return root
}

func isZero(n *big.Int) bool { return n.Cmp(zero) == 0 }
