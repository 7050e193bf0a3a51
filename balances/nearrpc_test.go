package balances

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zeebo/assert"
)

// rpcFixture serves a minimal NEAR JSON-RPC query endpoint backed by a map
// of contract method results.
func rpcFixture(t *testing.T, nativeAmount string, ftResults map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string         `json:"method"`
			Params map[string]any `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "query", req.Method)

		switch req.Params["request_type"] {
		case "view_account":
			fmt.Fprintf(w, `{"result":{"amount":%q}}`, nativeAmount)
		case "call_function":
			// result JSON travels as an array of ASCII byte values
			key := req.Params["account_id"].(string) + "." + req.Params["method_name"].(string)
			payload, ok := ftResults[key]
			if !ok {
				fmt.Fprint(w, `{"error":{"message":"method not found"}}`)
				return
			}
			bytesOut := make([]int, len(payload))
			for i := range payload {
				bytesOut[i] = int(payload[i])
			}
			resp, err := json.Marshal(map[string]any{"result": map[string]any{"result": bytesOut}})
			assert.NoError(t, err)
			_, _ = w.Write(resp)
		default:
			t.Fatalf("unexpected request_type %v", req.Params["request_type"])
		}
	}))
}

func TestViewAccount(t *testing.T) {
	srv := rpcFixture(t, "2500000000000000000000000", nil)
	defer srv.Close()

	c := NewRPCClient(srv.URL, time.Second)
	amount, err := c.ViewAccount(context.Background(), "alice.near")
	assert.NoError(t, err)
	assert.Equal(t, "2500000000000000000000000", amount.String())
}

func TestFTBalanceDecodesByteArrayResult(t *testing.T) {
	srv := rpcFixture(t, "0", map[string]string{
		"usdc.near.ft_balance_of": `"12500000"`,
	})
	defer srv.Close()

	c := NewRPCClient(srv.URL, time.Second)
	balance, err := c.FTBalance(context.Background(), "usdc.near", "alice.near")
	assert.NoError(t, err)
	assert.Equal(t, "12500000", balance.String())
}

func TestFTMeta(t *testing.T) {
	srv := rpcFixture(t, "0", map[string]string{
		"usdc.near.ft_metadata": `{"symbol":"USDC","decimals":6}`,
	})
	defer srv.Close()

	c := NewRPCClient(srv.URL, time.Second)
	meta, err := c.FTMeta(context.Background(), "usdc.near")
	assert.NoError(t, err)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Equal(t, 6, meta.Decimals)
}

func TestCallFunctionArgsAreBase64(t *testing.T) {
	var seenArgs string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Params map[string]any `json:"params"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		seenArgs = req.Params["args_base64"].(string)
		payload := `"0"`
		bytesOut := make([]int, len(payload))
		for i := range payload {
			bytesOut[i] = int(payload[i])
		}
		resp, _ := json.Marshal(map[string]any{"result": map[string]any{"result": bytesOut}})
		_, _ = w.Write(resp)
	}))
	defer srv.Close()

	c := NewRPCClient(srv.URL, time.Second)
	_, err := c.FTBalance(context.Background(), "token.near", "alice.near")
	assert.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(seenArgs)
	assert.NoError(t, err)
	assert.Equal(t, `{"account_id":"alice.near"}`, string(decoded))
}

func TestRPCErrorSurfaces(t *testing.T) {
	srv := rpcFixture(t, "0", nil)
	defer srv.Close()

	c := NewRPCClient(srv.URL, time.Second)
	_, err := c.FTBalance(context.Background(), "missing.near", "alice.near")
	assert.Error(t, err)
}
