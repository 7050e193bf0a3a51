package balances

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zeebo/assert"
)

func TestDiscoveryPrimary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/alice.near/tokens", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"contract_id":"usdc.near","symbol":"USDC","decimals":6,"balance":"12500000"},
			{"contract_id":"usdt.near","symbol":"USDT","decimals":6,"balance":"5000000"}
		]`))
	}))
	defer primary.Close()

	c := NewDiscoveryClient(primary.URL, "", nil, time.Second)
	tokens, err := c.TokensForAccount(context.Background(), "alice.near")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tokens))
	assert.Equal(t, "usdc.near", tokens[0].ContractID)
	assert.Equal(t, "12500000", tokens[0].Balance)
}

func TestDiscoveryFallsBackToIndexer(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/alice.near/likelyTokens", r.URL.Path)
		_, _ = w.Write([]byte(`["usdc.near","empty.near"]`))
	}))
	defer secondary.Close()

	rpc := rpcFixture(t, "0", map[string]string{
		"usdc.near.ft_balance_of":  `"12500000"`,
		"usdc.near.ft_metadata":    `{"symbol":"USDC","decimals":6}`,
		"empty.near.ft_balance_of": `"0"`,
	})
	defer rpc.Close()

	c := NewDiscoveryClient(primary.URL, secondary.URL, NewRPCClient(rpc.URL, time.Second), time.Second)
	tokens, err := c.TokensForAccount(context.Background(), "alice.near")
	assert.NoError(t, err)

	// zero-balance contracts are dropped during the per-token follow-up
	assert.Equal(t, 1, len(tokens))
	assert.Equal(t, "usdc.near", tokens[0].ContractID)
	assert.Equal(t, "USDC", tokens[0].Symbol)
	assert.Equal(t, 6, tokens[0].Decimals)
	assert.Equal(t, "12500000", tokens[0].Balance)
}

func TestDiscoveryNoFallbackConfigured(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	c := NewDiscoveryClient(primary.URL, "", nil, time.Second)
	_, err := c.TokensForAccount(context.Background(), "alice.near")
	assert.Error(t, err)
}
