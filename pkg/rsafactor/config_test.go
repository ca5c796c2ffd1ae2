package rsafactor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFixture(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(fixturesDir(), "config.yaml"))
	require.NoError(t, err)

	want := DefaultFactorConfig()
	want.TrialDivisionLimit = 100_000
	want.FermatMaxIterations = 50_000
	want.PollardP1Bound = 20_000
	want.PollardRhoSeeds = []int64{2, 3, 5}
	want.PollardRhoConstants = []int64{1, 3}
	want.PollardRhoMaxIterations = 1_000_000
	want.PerStrategyTimeout = 30 * time.Second
	want.TotalTimeout = 2 * time.Minute

	assert.Empty(t, cmp.Diff(want, cfg), "LoadConfig mismatch (-want +got)")
}

func TestParseConfigEmptyKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(DefaultFactorConfig(), cfg), "ParseConfig mismatch (-want +got)")
}

func TestParseConfigOracleAndParallel(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
enable_external_oracle: true
oracle_url: http://localhost:8080
parallel: true
pollard_rho_workers: 4
cache_dir: /tmp/rsafactor-cache
`))
	require.NoError(t, err)
	assert.True(t, cfg.EnableExternalOracle)
	assert.Equal(t, "http://localhost:8080", cfg.OracleURL)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 4, cfg.PollardRhoWorkers)
	assert.Equal(t, "/tmp/rsafactor-cache", cfg.CacheDir)
}

func TestParseConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(fixturesDir(), "invalid_config.yaml"))
	assert.Error(t, err, "unknown fields must be rejected")

	_, err = LoadConfig(filepath.Join(fixturesDir(), "does-not-exist.yaml"))
	assert.Error(t, err)

	testCases := map[string]string{
		"bad duration":        "total_timeout: soon",
		"negative timeout":    "per_strategy_timeout: -1s",
		"negative workers":    "pollard_rho_workers: -2",
		"degenerate constant": "pollard_rho_constants: [1, -2]",
		"wrong type":          "fermat_max_iterations: lots",
	}
	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}
