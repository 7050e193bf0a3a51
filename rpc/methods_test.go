package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/chains"
	"github.com/neptune-labs/intents-portal/router"
	"github.com/neptune-labs/intents-portal/solverapi"
	"github.com/zeebo/assert"
)

type staticTokens struct {
	entries []solverapi.TokenEntry
}

func (s *staticTokens) Tokens(ctx context.Context) ([]solverapi.TokenEntry, error) {
	return s.entries, nil
}

type stubSolver struct {
	resp *solverapi.QuoteResponse
	err  error
}

func (s *stubSolver) Quote(ctx context.Context, req solverapi.QuoteRequest) (*solverapi.QuoteResponse, error) {
	return s.resp, s.err
}

func testHandler(t *testing.T, solver router.QuoteClient) *PortalHandler {
	t.Helper()
	source := &staticTokens{entries: []solverapi.TokenEntry{
		{AssetID: "nep141:wrap.near", Symbol: "NEAR", Name: "NEAR", Decimals: 24, Blockchain: "near"},
		{AssetID: "nep141:usdc.near", Symbol: "USDC", Name: "USD Coin", Decimals: 6, ContractAddress: "usdc.near", Blockchain: "near"},
		{AssetID: "nep141:eth.omft.near", Symbol: "ETH", Name: "Ether", Decimals: 18, ContractAddress: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", Blockchain: "eth"},
	}}
	cat := catalog.New(source)
	engine := router.NewEngine(cat, solver)
	return NewPortalHandler(cat, engine, chains.NewRegistry(), nil)
}

func serve(h *PortalHandler, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Mount(r)

	var reqBody *bytes.Reader
	if body != "" {
		reqBody = bytes.NewReader([]byte(body))
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleTokens(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	rec := serve(h, http.MethodGet, "/tokens", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var tokens []catalog.TokenDescriptor
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	assert.Equal(t, 3, len(tokens))
}

func TestHandleTokensDisplay(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	rec := serve(h, http.MethodGet, "/tokens/display", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.Contains(resp["display"], "Tokens:"))
}

func TestHandleQuoteSuccess(t *testing.T) {
	h := testHandler(t, &stubSolver{resp: &solverapi.QuoteResponse{
		Quote: &solverapi.QuoteBody{
			DepositAddress: "deposit.near",
			AmountOut:      "12500000",
		},
	}})

	body := `{"tokenIn":"NEAR","tokenOut":"USDC","amount":"5","recipient":"alice.near"}`
	rec := serve(h, http.MethodPost, "/quote", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	var quote router.SwapQuote
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, "deposit.near", quote.DepositAddress)
	assert.Equal(t, "12.5", quote.AmountOut.String())
}

func TestHandleQuoteMissingRecipient(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"tokenIn":"NEAR","tokenOut":"USDC","amount":"5"}`
	rec := serve(h, http.MethodPost, "/quote", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuoteBadRecipientFormat(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	// ETH destination requires an EVM address, alice.near is not one
	body := `{"tokenIn":"NEAR","tokenOut":"ETH","amount":"5","recipient":"alice.near"}`
	rec := serve(h, http.MethodPost, "/quote", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.Contains(resp["error"], "0x"))
}

func TestHandleQuoteSolverRejection(t *testing.T) {
	h := testHandler(t, &stubSolver{resp: &solverapi.QuoteResponse{
		Message: "insufficient liquidity",
	}})
	body := `{"tokenIn":"NEAR","tokenOut":"USDC","amount":"5","recipient":"alice.near"}`
	rec := serve(h, http.MethodPost, "/quote", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleQuoteZeroAmount(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"tokenIn":"NEAR","tokenOut":"USDC","amount":"0","recipient":"alice.near"}`
	rec := serve(h, http.MethodPost, "/quote", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDepositTransactionNative(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"tokenIn":"NEAR","amount":"2","depositAddress":"deposit.near"}`
	rec := serve(h, http.MethodPost, "/deposit-transaction", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []struct {
			ReceiverID string `json:"receiverId"`
			Actions    []struct {
				Type string `json:"type"`
			} `json:"actions"`
		} `json:"transactions"`
		Check struct {
			Valid bool `json:"valid"`
		} `json:"check"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, len(resp.Transactions))
	assert.Equal(t, 3, len(resp.Transactions[0].Actions))
	assert.Equal(t, "intents.near", resp.Transactions[1].ReceiverID)
	assert.True(t, resp.Check.Valid)
}

func TestHandleDepositTransactionEVM(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"tokenIn":"ETH","amount":"1","depositAddress":"0x7fffb1c3a5b0ca1c3d2e4f56789abcdef0123456","evmChainId":1}`
	rec := serve(h, http.MethodPost, "/deposit-transaction", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		EVMTransaction struct {
			ChainID int64  `json:"chainId"`
			Data    string `json:"data"`
		} `json:"evmTransaction"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.EVMTransaction.ChainID)
	assert.True(t, strings.HasPrefix(resp.EVMTransaction.Data, "0xa9059cbb"))
}

func TestHandleDepositTransactionUnknownToken(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"tokenIn":"DOGE","amount":"1","depositAddress":"deposit.near"}`
	rec := serve(h, http.MethodPost, "/deposit-transaction", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDepositTransactionMissingAddress(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"tokenIn":"NEAR","amount":"1"}`
	rec := serve(h, http.MethodPost, "/deposit-transaction", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBalancesNoReconciler(t *testing.T) {
	h := testHandler(t, &stubSolver{})
	body := `{"addresses":{"near":"alice.near"}}`
	rec := serve(h, http.MethodPost, "/balances", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
