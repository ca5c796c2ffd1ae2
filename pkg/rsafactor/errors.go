package rsafactor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mahdiidarabi/rsa-factor/internal/numtheory"
)

var (
	// ErrNoInverse reports that a modular inverse is undefined.
	ErrNoInverse = numtheory.ErrNoInverse

	// ErrFactorizationExhausted means every strategy ran out of budget.
	// Enlarging the budgets or adding strategies may help; it is not a bug.
	ErrFactorizationExhausted = errors.New("factorization exhausted")

	// ErrTimedOut means the total orchestration deadline passed first.
	ErrTimedOut = errors.New("factorization timed out")

	// ErrInvalidPublicExponent means e is not coprime to φ(N).
	ErrInvalidPublicExponent = errors.New("public exponent is not invertible modulo phi(N)")

	// ErrVerificationFailed marks a strategy result that does not multiply
	// back to N. It is never returned to callers as success.
	ErrVerificationFailed = errors.New("factor pair verification failed")

	// ErrInvalidInput reports a malformed modulus, exponent or ciphertext.
	ErrInvalidInput = errors.New("invalid input")
)

// FactorizationError is returned by the orchestrator when no strategy
// produced a verified pair. It unwraps to ErrFactorizationExhausted or
// ErrTimedOut.
type FactorizationError struct {
	Kind     error
	Attempts []Attempt
}

func (e *FactorizationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if len(e.Attempts) > 0 {
		b.WriteString(" (")
		for i, a := range e.Attempts {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s in %v", a.Strategy, a.Outcome, a.Elapsed)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *FactorizationError) Unwrap() error {
	return e.Kind
}
