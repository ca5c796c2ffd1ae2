// Package rsafactor recovers RSA private keys from public material when
// the modulus is weak enough to factor.
//
// Given (N, e, C) it tries a sequence of classical factoring strategies in
// increasing cost order, verifies the first factor pair found, derives
// φ(N) and d = e⁻¹ mod φ(N), and decrypts C.
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/rsa-factor/pkg/rsafactor"
//
//	dec, err := rsafactor.RSADecrypt(ctx, c, n, e, rsafactor.DefaultFactorConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("p=%s q=%s d=%s\n", dec.Pair.P, dec.Pair.Q, dec.D)
//	fmt.Printf("message: %q\n", dec.Message.Text)
//
// # Strategies
//
// The default list is:
//
//	SmallFactors   primes up to SmallFactorBound (handles even N)
//	TrialDivision  2-3-5 wheel up to TrialDivisionLimit
//	Fermat         close primes, |p-q| small relative to N^(1/4)
//	PollardP-1     p-1 smooth below PollardP1Bound
//	PollardRho     Brent's variant over several (seed, c) pairs
//	ExternalOracle FactorDB lookup, only when EnableExternalOracle is set
//
// With CacheDir set (or a FileCache passed to WithCache), a Cache lookup
// runs before everything else and each newly verified pair is written back.
//
// # Custom Strategies
//
// Implement the Strategy interface to add an algorithm:
//
//	type MyStrategy struct{}
//
//	func (s *MyStrategy) Attempt(ctx context.Context, n *big.Int) *FactorPair {
//	    // Return nil when the budget is spent.
//	}
//
//	func (s *MyStrategy) Name() string {
//	    return "MyStrategy"
//	}
//
//	o := rsafactor.NewOrchestrator(cfg).WithStrategies(&MyStrategy{})
//
// Every returned pair is checked (P*Q == N, 1 < P < N) before it is used;
// a pair that fails the check is logged and ignored.
//
// # Concurrency
//
// With FactorConfig.Parallel set, all strategies race and the first
// verified pair cancels the rest. Strategies poll their context, so
// TotalTimeout bounds the run even on adversarial inputs.
package rsafactor
