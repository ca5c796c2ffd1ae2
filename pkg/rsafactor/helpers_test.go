package rsafactor

import (
	"math/big"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// fixturesDir returns the path to the fixtures directory (works regardless of test cwd).
func fixturesDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "fixtures")
}

// testConfig keeps every budget small enough for unit tests.
func testConfig() FactorConfig {
	cfg := DefaultFactorConfig()
	cfg.TrialDivisionLimit = 10_000
	cfg.FermatMaxIterations = 20_000
	cfg.PollardP1Bound = 5_000
	cfg.PollardRhoMaxIterations = 500_000
	cfg.PerStrategyTimeout = 30 * time.Second
	cfg.TotalTimeout = time.Minute
	return cfg
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	z, ok := new(big.Int).SetString(s, 0)
	require.True(t, ok, "bad test integer %q", s)
	return z
}

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
})

// Known moduli used across tests.
const (
	textbookN = "3233" // 61 * 53

	closeP = "18446744073709563973"
	closeQ = "18446744073709565069"
	closeN = "340282366920938939573839149875461659137"
	closeC = "327994615705011016466831495898893545089" // "Weak primes!" with e = 65537

	smoothP = "18898521768563" // p-1 is 811-smooth
	smoothQ = "932398020271"   // q-1 has the prime factor 2974441
	smoothN = "17620944283056538844540573"
	smoothC = "11930493720617963768898915" // "p-1!" with e = 65537

	rhoP = "2151553051"
	rhoQ = "44347426259"
	rhoN = "95415840271548966209"
	rhoC = "4895118751916439911" // "rho!" with e = 65537
)
