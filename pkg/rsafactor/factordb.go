package rsafactor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultFactorDBURL is the public FactorDB service.
const DefaultFactorDBURL = "http://factordb.com"

const factorDBEndpoint = "/api"

// FactorDBClient is an Oracle backed by a FactorDB-compatible HTTP API:
//
//	GET <base>/api?query=<N>
//	{"id": "...", "status": "FF", "factors": [["61", 1], ["53", 1]]}
type FactorDBClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewFactorDBClient creates a client for the given base URL.
func NewFactorDBClient(baseURL string) *FactorDBClient {
	if baseURL == "" {
		baseURL = DefaultFactorDBURL
	}
	return &FactorDBClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Statuses whose factor list holds at least one proper divisor: fully
// factored, and composite with some factors known.
const (
	factorDBFullyFactored    = "FF"
	factorDBCompositeFactors = "CF"
)

// factorDBResponse mirrors the API's JSON. Factors are [value, exponent]
// tuples where the value may be a string or a number.
type factorDBResponse struct {
	ID      json.RawMessage     `json:"id"`
	Status  string              `json:"status"`
	Factors [][]json.RawMessage `json:"factors"`
}

// Lookup implements the Oracle interface.
func (c *FactorDBClient) Lookup(ctx context.Context, n *big.Int) ([]*big.Int, error) {
	u := fmt.Sprintf("%s%s?query=%s", c.BaseURL, factorDBEndpoint, url.QueryEscape(n.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build factordb request: %w", err)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("factordb request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("factordb returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed factorDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse factordb response: %w", err)
	}

	if parsed.Status != factorDBFullyFactored && parsed.Status != factorDBCompositeFactors {
		return nil, nil
	}

	var factors []*big.Int
	for i, tuple := range parsed.Factors {
		if len(tuple) == 0 {
			continue
		}
		f, err := parseRawBigInt(tuple[0])
		if err != nil {
			return nil, fmt.Errorf("factordb factor %d: %w", i, err)
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// parseRawBigInt accepts a JSON number or a quoted decimal string.
func parseRawBigInt(raw json.RawMessage) (*big.Int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	z, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid number format: %s", s)
	}
	return z, nil
}
