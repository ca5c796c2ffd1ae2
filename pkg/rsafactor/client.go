package rsafactor

import (
	"context"
	"fmt"
	"math/big"

	"github.com/golang/glog"
)

// Client provides a high-level API for RSA key recovery operations.
type Client struct {
	config     FactorConfig
	strategies []Strategy
	oracle     Oracle
	cache      *FileCache
	parser     ChallengeParser
}

// NewClient creates a new client with default settings.
func NewClient() *Client {
	return &Client{
		config: DefaultFactorConfig(),
		parser: &JSONParser{},
	}
}

// WithConfig sets the factoring configuration.
func (c *Client) WithConfig(cfg FactorConfig) *Client {
	c.config = cfg
	return c
}

// WithStrategies replaces the default strategy list.
func (c *Client) WithStrategies(strategies ...Strategy) *Client {
	c.strategies = strategies
	return c
}

// WithOracle sets the factorization oracle. It is only consulted when the
// configuration enables it.
func (c *Client) WithOracle(oracle Oracle) *Client {
	c.oracle = oracle
	return c
}

// WithCache sets the on-disk factorization cache.
func (c *Client) WithCache(cache *FileCache) *Client {
	c.cache = cache
	return c
}

// WithParser sets a custom challenge parser.
func (c *Client) WithParser(parser ChallengeParser) *Client {
	c.parser = parser
	return c
}

func (c *Client) orchestrator() *Orchestrator {
	o := NewOrchestrator(c.config)
	if c.strategies != nil {
		o.WithStrategies(c.strategies...)
	}
	if c.oracle != nil {
		o.WithOracle(c.oracle)
	}
	if c.cache != nil {
		o.WithCache(c.cache)
	}
	return o
}

// Factor splits n and returns the full run diagnostics.
func (c *Client) Factor(ctx context.Context, n *big.Int) (*Result, error) {
	return c.orchestrator().Run(ctx, n)
}

// Decrypt recovers the private key for one challenge and decrypts it.
func (c *Client) Decrypt(ctx context.Context, ch *Challenge) (*Decryption, error) {
	if ch == nil {
		return nil, fmt.Errorf("nil challenge: %w", ErrInvalidInput)
	}
	e := ch.E
	if e == nil {
		e = DefaultPublicExponent
	}
	return c.orchestrator().Decrypt(ctx, ch.C, ch.N, e)
}

// ChallengeResult pairs a challenge with its decryption or error.
type ChallengeResult struct {
	Challenge  *Challenge
	Decryption *Decryption
	Err        error
}

// DecryptFile parses challenges from source and decrypts each one in turn.
// A failing challenge does not stop the others; its error is recorded in
// the corresponding ChallengeResult.
//
// Args:
//   - ctx: Context for cancellation.
//   - source: Path to a challenge file (JSON or CSV, per the parser).
//
// Returns:
//   - one ChallengeResult per challenge, or an error if parsing failed.
func (c *Client) DecryptFile(ctx context.Context, source string) ([]*ChallengeResult, error) {
	challenges, err := c.parser.ParseChallenges(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse challenges: %w", err)
	}
	if len(challenges) == 0 {
		return nil, fmt.Errorf("no challenges in %s", source)
	}

	results := make([]*ChallengeResult, 0, len(challenges))
	for _, ch := range challenges {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		dec, err := c.Decrypt(ctx, ch)
		if err != nil {
			glog.Warningf("%s: %v", ch.Name, err)
		}
		results = append(results, &ChallengeResult{Challenge: ch, Decryption: dec, Err: err})
	}
	return results, nil
}
