package rsafactor

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDecryptFile(t *testing.T) {
	testCases := []struct {
		file     string
		parser   ChallengeParser
		wantText map[string]string
	}{
		{
			file:   "challenges.json",
			parser: &JSONParser{},
			wantText: map[string]string{
				"close-primes":     "Weak primes!",
				"smooth-p-minus-1": "p-1!",
				"close-primes-hex": "Weak primes!",
			},
		},
		{
			file:   "challenges.csv",
			parser: &CSVParser{},
			wantText: map[string]string{
				"close-primes": "Weak primes!",
				"rho":          "rho!",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.file, func(t *testing.T) {
			client := NewClient().WithConfig(testConfig()).WithParser(tc.parser)
			results, err := client.DecryptFile(context.Background(), filepath.Join(fixturesDir(), tc.file))
			require.NoError(t, err)

			for _, r := range results {
				require.NoError(t, r.Err, r.Challenge.Name)
				if r.Challenge.Name == "textbook" {
					assert.Equal(t, int64(65), r.Decryption.Plaintext.Int64())
					continue
				}
				assert.Equal(t, tc.wantText[r.Challenge.Name], r.Decryption.Message.Text, r.Challenge.Name)
			}
		})
	}
}

func TestClientDecryptFileKeepsGoing(t *testing.T) {
	path := writeTemp(t, "mixed.json", `[
		{"name": "bad-exponent", "n": 3233, "e": 3, "c": 2790},
		{"name": "good", "n": 3233, "e": 17, "c": 2790}
	]`)

	results, err := NewClient().WithConfig(testConfig()).DecryptFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrInvalidPublicExponent)
	assert.Nil(t, results[0].Decryption)
	require.NoError(t, results[1].Err)
	assert.Equal(t, int64(65), results[1].Decryption.Plaintext.Int64())
}

func TestClientDecryptFileErrors(t *testing.T) {
	client := NewClient().WithConfig(testConfig())

	_, err := client.DecryptFile(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)

	_, err = client.DecryptFile(context.Background(), writeTemp(t, "empty.json", "[]"))
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	client := NewClient().
		WithConfig(testConfig()).
		WithStrategies(&TrialDivisionStrategy{Limit: 100}).
		WithOracle(staticOracle{factors: []*big.Int{big.NewInt(53)}})

	res, err := client.Factor(context.Background(), big.NewInt(3233))
	require.NoError(t, err)
	assert.Equal(t, "TrialDivision", res.Pair.Strategy)
	require.Len(t, res.Attempts, 1)

	_, err = client.Decrypt(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	dec, err := client.Decrypt(context.Background(), &Challenge{N: big.NewInt(3233), C: big.NewInt(0)})
	require.NoError(t, err)
	assert.Zero(t, dec.Plaintext.Sign())
}
