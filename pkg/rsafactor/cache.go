package rsafactor

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// CacheStrategyName labels pairs served from a FileCache.
const CacheStrategyName = "Cache"

// FileCache is an on-disk Oracle of factorizations this process (or an
// earlier run) has already verified. Each modulus is one JSON file named
// by the BLAKE3 digest of its big-endian bytes.
type FileCache struct {
	Dir string
}

type cacheRecord struct {
	N        string `json:"n"`
	P        string `json:"p"`
	Q        string `json:"q"`
	Strategy string `json:"strategy"`
}

// NewFileCache returns a cache rooted at dir. The directory is created on
// the first Store.
func NewFileCache(dir string) *FileCache {
	return &FileCache{Dir: dir}
}

func (c *FileCache) path(n *big.Int) string {
	hasher := blake3.New()
	hasher.Write(n.Bytes())
	return filepath.Join(c.Dir, hex.EncodeToString(hasher.Sum(nil))+".json")
}

// Lookup implements the Oracle interface. A missing entry is not an error.
func (c *FileCache) Lookup(ctx context.Context, n *big.Int) ([]*big.Int, error) {
	data, err := os.ReadFile(c.path(n))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse cache entry: %w", err)
	}
	if rec.N != n.String() {
		return nil, fmt.Errorf("cache entry is for a different modulus")
	}

	var factors []*big.Int
	for _, s := range []string{rec.P, rec.Q} {
		f, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("invalid number format in cache entry: %s", s)
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// Store records a verified pair for n, replacing any earlier entry.
func (c *FileCache) Store(n *big.Int, pair *FactorPair) error {
	if err := pair.Verify(n); err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(cacheRecord{
		N:        n.String(),
		P:        pair.P.String(),
		Q:        pair.Q.String(),
		Strategy: pair.Strategy,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.Dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), c.path(n))
}
