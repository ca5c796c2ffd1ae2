package rsafactor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactorDBServer(t *testing.T, handler func(query string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			http.NotFound(w, r)
			return
		}
		code, body := handler(r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFactorDBClientLookup(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want []*big.Int
	}{
		{
			name: "string factors",
			body: `{"id":"1100000000001234567","status":"FF","factors":[["53",1],["61",1]]}`,
			want: []*big.Int{big.NewInt(53), big.NewInt(61)},
		},
		{
			name: "numeric factors",
			body: `{"id":1234,"status":"FF","factors":[[53,1],[61,1]]}`,
			want: []*big.Int{big.NewInt(53), big.NewInt(61)},
		},
		{
			name: "partially factored",
			body: `{"id":"1","status":"CF","factors":[["53",1],["61",1]]}`,
			want: []*big.Int{big.NewInt(53), big.NewInt(61)},
		},
		{
			name: "unknown composite",
			body: `{"id":"1","status":"C","factors":[["3233",1]]}`,
			want: nil,
		},
		{
			name: "no factors",
			body: `{"id":"1","status":"U","factors":[]}`,
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotQuery string
			srv := newFactorDBServer(t, func(q string) (int, string) {
				gotQuery = q
				return http.StatusOK, tc.body
			})

			got, err := NewFactorDBClient(srv.URL + "/").Lookup(context.Background(), big.NewInt(3233))
			require.NoError(t, err)
			assert.Equal(t, "3233", gotQuery)
			assert.Empty(t, cmp.Diff(tc.want, got, bigIntComparer), "Lookup mismatch (-want +got)")
		})
	}
}

func TestFactorDBClientErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := newFactorDBServer(t, func(string) (int, string) {
			return http.StatusInternalServerError, "boom"
		})
		_, err := NewFactorDBClient(srv.URL).Lookup(context.Background(), big.NewInt(3233))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := newFactorDBServer(t, func(string) (int, string) {
			return http.StatusOK, `{"factors": [[`
		})
		_, err := NewFactorDBClient(srv.URL).Lookup(context.Background(), big.NewInt(3233))
		require.Error(t, err)
	})

	t.Run("non numeric factor", func(t *testing.T) {
		srv := newFactorDBServer(t, func(string) (int, string) {
			return http.StatusOK, `{"status":"FF","factors":[["abc",1]]}`
		})
		_, err := NewFactorDBClient(srv.URL).Lookup(context.Background(), big.NewInt(3233))
		require.Error(t, err)
	})
}

// staticOracle returns canned factors or an error.
type staticOracle struct {
	factors []*big.Int
	err     error
}

func (o staticOracle) Lookup(ctx context.Context, n *big.Int) ([]*big.Int, error) {
	return o.factors, o.err
}

func TestOracleStrategy(t *testing.T) {
	n := big.NewInt(3233)
	testCases := []struct {
		name   string
		oracle Oracle
		wantP  int64
	}{
		{"proper factors", staticOracle{factors: []*big.Int{big.NewInt(61), big.NewInt(53)}}, 53},
		{"skips trivial factors", staticOracle{factors: []*big.Int{big.NewInt(1), big.NewInt(3233), big.NewInt(61)}}, 53},
		{"only n itself", staticOracle{factors: []*big.Int{big.NewInt(3233)}}, 0},
		{"non divisor", staticOracle{factors: []*big.Int{big.NewInt(7)}}, 0},
		{"lookup error", staticOracle{err: errors.New("network down")}, 0},
		{"nil oracle", nil, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &OracleStrategy{Oracle: tc.oracle}
			pair := s.Attempt(context.Background(), n)
			if tc.wantP == 0 {
				assert.Nil(t, pair)
				return
			}
			require.NotNil(t, pair)
			assert.Equal(t, tc.wantP, pair.P.Int64())
			assert.Equal(t, "ExternalOracle", pair.Strategy)
		})
	}
}

func TestOrchestratorWithOracle(t *testing.T) {
	n := mustBig(t, rhoN)
	srv := newFactorDBServer(t, func(q string) (int, string) {
		if q != rhoN {
			return http.StatusOK, `{"status":"U","factors":[]}`
		}
		return http.StatusOK, fmt.Sprintf(`{"status":"FF","factors":[["%s",1],["%s",1]]}`, rhoP, rhoQ)
	})

	cfg := testConfig()
	cfg.EnableExternalOracle = true
	cfg.OracleURL = srv.URL

	o := NewOrchestrator(cfg).WithStrategies(&OracleStrategy{Oracle: NewFactorDBClient(cfg.OracleURL)})
	res, err := o.Run(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, rhoP, res.Pair.P.String())
	assert.Equal(t, "ExternalOracle", res.Pair.Strategy)

	// The default list only gains the oracle when it is enabled.
	assert.Len(t, NewOrchestrator(cfg).Strategies(), 6)
	cfg.EnableExternalOracle = false
	assert.Len(t, NewOrchestrator(cfg).Strategies(), 5)
}

func TestOrchestratorOracleFailureIsExhaustion(t *testing.T) {
	o := NewOrchestrator(testConfig()).WithStrategies(&OracleStrategy{Oracle: staticOracle{err: errors.New("503")}})

	_, err := o.Run(context.Background(), mustBig(t, rhoN))
	require.ErrorIs(t, err, ErrFactorizationExhausted)
}
