package rsafactor

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

// configFile is the on-disk form of FactorConfig. Unset fields keep their
// defaults; durations are Go duration strings such as "30s".
type configFile struct {
	SmallFactorBound        *uint64 `json:"small_factor_bound,omitempty"`
	TrialDivisionLimit      *uint64 `json:"trial_division_limit,omitempty"`
	FermatMaxIterations     *uint64 `json:"fermat_max_iterations,omitempty"`
	PollardP1Bound          *uint64 `json:"pollard_p1_bound,omitempty"`
	PollardRhoSeeds         []int64 `json:"pollard_rho_seeds,omitempty"`
	PollardRhoConstants     []int64 `json:"pollard_rho_constants,omitempty"`
	PollardRhoMaxIterations *uint64 `json:"pollard_rho_max_iterations,omitempty"`
	PollardRhoWorkers       *int    `json:"pollard_rho_workers,omitempty"`
	EnableExternalOracle    *bool   `json:"enable_external_oracle,omitempty"`
	OracleURL               *string `json:"oracle_url,omitempty"`
	CacheDir                *string `json:"cache_dir,omitempty"`
	PerStrategyTimeout      *string `json:"per_strategy_timeout,omitempty"`
	TotalTimeout            *string `json:"total_timeout,omitempty"`
	Parallel                *bool   `json:"parallel,omitempty"`
}

// LoadConfig reads a YAML (or JSON) configuration file and overlays it on
// DefaultFactorConfig.
func LoadConfig(path string) (FactorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FactorConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes over DefaultFactorConfig.
func ParseConfig(data []byte) (FactorConfig, error) {
	var f configFile
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return FactorConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := DefaultFactorConfig()
	setUint(&cfg.SmallFactorBound, f.SmallFactorBound)
	setUint(&cfg.TrialDivisionLimit, f.TrialDivisionLimit)
	setUint(&cfg.FermatMaxIterations, f.FermatMaxIterations)
	setUint(&cfg.PollardP1Bound, f.PollardP1Bound)
	setUint(&cfg.PollardRhoMaxIterations, f.PollardRhoMaxIterations)
	if f.PollardRhoSeeds != nil {
		cfg.PollardRhoSeeds = f.PollardRhoSeeds
	}
	if f.PollardRhoConstants != nil {
		cfg.PollardRhoConstants = f.PollardRhoConstants
	}
	if f.PollardRhoWorkers != nil {
		cfg.PollardRhoWorkers = *f.PollardRhoWorkers
	}
	if f.EnableExternalOracle != nil {
		cfg.EnableExternalOracle = *f.EnableExternalOracle
	}
	if f.OracleURL != nil {
		cfg.OracleURL = *f.OracleURL
	}
	if f.CacheDir != nil {
		cfg.CacheDir = *f.CacheDir
	}
	if f.Parallel != nil {
		cfg.Parallel = *f.Parallel
	}

	var err error
	if cfg.PerStrategyTimeout, err = parseDuration(f.PerStrategyTimeout, cfg.PerStrategyTimeout); err != nil {
		return FactorConfig{}, fmt.Errorf("per_strategy_timeout: %w", err)
	}
	if cfg.TotalTimeout, err = parseDuration(f.TotalTimeout, cfg.TotalTimeout); err != nil {
		return FactorConfig{}, fmt.Errorf("total_timeout: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return FactorConfig{}, err
	}
	return cfg, nil
}

// Validate rejects configurations no run could use.
func (c FactorConfig) Validate() error {
	if c.PerStrategyTimeout < 0 || c.TotalTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.PollardRhoWorkers < 0 {
		return fmt.Errorf("pollard_rho_workers must not be negative")
	}
	for _, k := range c.PollardRhoConstants {
		if k == 0 || k == -2 {
			return fmt.Errorf("pollard rho constant %d degenerates the sequence", k)
		}
	}
	return nil
}

func setUint(dst *uint64, v *uint64) {
	if v != nil {
		*dst = *v
	}
}

func parseDuration(s *string, def time.Duration) (time.Duration, error) {
	if s == nil {
		return def, nil
	}
	return time.ParseDuration(*s)
}
