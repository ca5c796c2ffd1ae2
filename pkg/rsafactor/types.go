package rsafactor

import (
	"fmt"
	"math/big"
	"time"
)

// FactorPair is a verified non-trivial split of a modulus: P*Q = N with
// 1 < P <= Q < N. P is always the smaller factor so that results do not
// depend on which strategy or worker found them.
type FactorPair struct {
	P        *big.Int
	Q        *big.Int
	Strategy string // Name of the strategy that produced the pair
}

// newFactorPair builds the normalised pair (f, n/f). It does not verify
// divisibility; the orchestrator does that.
func newFactorPair(f, n *big.Int, strategy string) *FactorPair {
	p := new(big.Int).Set(f)
	q := new(big.Int).Quo(n, f)
	if p.Cmp(q) > 0 {
		p, q = q, p
	}
	return &FactorPair{P: p, Q: q, Strategy: strategy}
}

// Verify reports whether the pair is a non-trivial factorization of n.
func (fp *FactorPair) Verify(n *big.Int) error {
	if fp == nil || fp.P == nil || fp.Q == nil {
		return fmt.Errorf("empty factor pair: %w", ErrVerificationFailed)
	}
	if fp.P.Cmp(one) <= 0 || fp.P.Cmp(n) >= 0 || fp.Q.Cmp(one) <= 0 || fp.Q.Cmp(n) >= 0 {
		return fmt.Errorf("trivial factor pair (%s, %s) for %s: %w", fp.P, fp.Q, n, ErrVerificationFailed)
	}
	if new(big.Int).Mul(fp.P, fp.Q).Cmp(n) != 0 {
		return fmt.Errorf("%s * %s != %s: %w", fp.P, fp.Q, n, ErrVerificationFailed)
	}
	return nil
}

func (fp *FactorPair) String() string {
	return fmt.Sprintf("%s * %s", fp.P, fp.Q)
}

// Outcome classifies how a single strategy attempt ended.
type Outcome int

const (
	OutcomeFound     Outcome = iota // Verified factor pair
	OutcomeExhausted                // Budget spent without a factor
	OutcomeTimedOut                 // Per-strategy or total deadline hit
	OutcomeRejected                 // Returned a pair that failed verification
	OutcomeCancelled                // Another strategy won the race
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeTimedOut:
		return "timed-out"
	case OutcomeRejected:
		return "rejected"
	case OutcomeCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// State is the orchestrator's position in its strategy list.
type State int

const (
	StatePending State = iota
	StateTrying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateTrying:
		return "trying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Attempt records one strategy run for diagnostics. Timings never affect
// which result is returned.
type Attempt struct {
	Strategy string
	Elapsed  time.Duration
	Outcome  Outcome
	Err      error // Set for OutcomeRejected
}

// Result is the outcome of an orchestrated factorization.
type Result struct {
	RunID    string        // Correlates log lines for one run
	Pair     *FactorPair   // Nil unless State is StateSucceeded
	State    State         // StateSucceeded or StateFailed
	Attempts []Attempt     // In the order the strategies finished
	Elapsed  time.Duration // Wall time of the whole run
}
