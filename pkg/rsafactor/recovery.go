package rsafactor

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/golang/glog"
	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

// DefaultPublicExponent is used when a challenge omits e.
var DefaultPublicExponent = big.NewInt(65537)

// PrivateKeyMaterial is derived once from a verified factor pair.
type PrivateKeyMaterial struct {
	P   *big.Int
	Q   *big.Int
	N   *big.Int
	E   *big.Int
	Phi *big.Int // (p-1)(q-1)
	D   *big.Int // e^-1 mod phi
}

// RecoverPrivateKey computes φ = (p-1)(q-1) and d = e^-1 mod φ.
//
// Returns:
//   - an error wrapping ErrInvalidPublicExponent (and ErrNoInverse) when
//     gcd(e, φ) != 1; that is bad input data, not an algorithm failure
func RecoverPrivateKey(pair *FactorPair, e *big.Int) (*PrivateKeyMaterial, error) {
	if pair == nil || pair.P == nil || pair.Q == nil {
		return nil, fmt.Errorf("missing factor pair: %w", ErrInvalidInput)
	}
	if e == nil || e.Sign() <= 0 {
		return nil, fmt.Errorf("public exponent %v must be positive: %w", e, ErrInvalidInput)
	}

	pm1 := new(big.Int).Sub(pair.P, one)
	qm1 := new(big.Int).Sub(pair.Q, one)
	phi := new(big.Int).Mul(pm1, qm1)

	d, err := numtheory.ModInverse(e, phi)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicExponent, err)
	}

	return &PrivateKeyMaterial{
		P:   new(big.Int).Set(pair.P),
		Q:   new(big.Int).Set(pair.Q),
		N:   new(big.Int).Mul(pair.P, pair.Q),
		E:   new(big.Int).Set(e),
		Phi: phi,
		D:   d,
	}, nil
}

// Decrypt returns c^d mod N.
func (k *PrivateKeyMaterial) Decrypt(c *big.Int) *big.Int {
	return DecryptWithKey(c, k.N, k.D)
}

// DecryptWithKey returns c^d mod n.
func DecryptWithKey(c, n, d *big.Int) *big.Int {
	return numtheory.ModPow(c, d, n)
}

// Decryption is the outcome of a full key recovery.
type Decryption struct {
	Plaintext     *big.Int
	D             *big.Int
	Key           *PrivateKeyMaterial
	Pair          *FactorPair
	Message       Plaintext
	Consistent    bool    // Re-encrypting Plaintext with e gives back C
	Factorization *Result // Diagnostics from the orchestrator
}

// validateChallenge checks N > 3, e > 0 and 0 <= C < N.
func validateChallenge(c, n, e *big.Int) error {
	switch {
	case n == nil || n.Cmp(four) < 0:
		return fmt.Errorf("modulus %v must be at least 4: %w", n, ErrInvalidInput)
	case e == nil || e.Sign() <= 0:
		return fmt.Errorf("public exponent %v must be positive: %w", e, ErrInvalidInput)
	case c == nil || c.Sign() < 0 || c.Cmp(n) >= 0:
		return fmt.Errorf("ciphertext %v must be in [0, N): %w", c, ErrInvalidInput)
	}
	return nil
}

// Decrypt factors n, recovers d and decrypts c.
func (o *Orchestrator) Decrypt(ctx context.Context, c, n, e *big.Int) (*Decryption, error) {
	if err := validateChallenge(c, n, e); err != nil {
		return nil, err
	}

	res, err := o.Run(ctx, n)
	if err != nil {
		return nil, err
	}

	key, err := RecoverPrivateKey(res.Pair, e)
	if err != nil {
		return nil, err
	}

	m := key.Decrypt(c)
	consistent := numtheory.ModPow(m, e, n).Cmp(c) == 0
	if !consistent {
		glog.Warningf("[%s] re-encryption of the plaintext does not match C; N may have more than two prime factors", res.RunID)
	}

	return &Decryption{
		Plaintext:     m,
		D:             key.D,
		Key:           key,
		Pair:          res.Pair,
		Message:       Materialize(m),
		Consistent:    consistent,
		Factorization: res,
	}, nil
}

// RSADecrypt recovers the private exponent for (n, e) by factoring n with
// cfg's default strategies and returns the plaintext of c together with d.
func RSADecrypt(ctx context.Context, c, n, e *big.Int, cfg FactorConfig) (*Decryption, error) {
	return NewOrchestrator(cfg).Decrypt(ctx, c, n, e)
}

// IsRSAError reports whether err is a key-recovery failure rather than a
// factorization failure.
func IsRSAError(err error) bool {
	return errors.Is(err, ErrInvalidPublicExponent) || errors.Is(err, ErrInvalidInput)
}
