package balances

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"
)

// RPCClient queries the NEAR chain directly over JSON-RPC. It is the
// authoritative source for the native balance and for per-token contract
// views.
type RPCClient struct {
	httpClient *http.Client
	url        string
}

// DefaultRPCURL is the public mainnet JSON-RPC endpoint.
const DefaultRPCURL = "https://rpc.mainnet.near.org"

// NewRPCClient creates a NEAR JSON-RPC client. An empty url selects the
// public mainnet endpoint.
func NewRPCClient(url string, timeout time.Duration) *RPCClient {
	if url == "" {
		url = DefaultRPCURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RPCClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// FTMetadata is the subset of NEP-148 token metadata the reconciler needs.
type FTMetadata struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
		Data    any    `json:"data"`
	} `json:"error"`
}

// ViewAccount returns the account's native balance in yoctoNEAR.
func (c *RPCClient) ViewAccount(ctx context.Context, accountID string) (*big.Int, error) {
	result, err := c.query(ctx, map[string]any{
		"request_type": "view_account",
		"finality":     "final",
		"account_id":   accountID,
	})
	if err != nil {
		return nil, err
	}

	var view struct {
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(result, &view); err != nil {
		return nil, fmt.Errorf("failed to parse view_account result: %w", err)
	}
	amount, ok := parseAtomic(view.Amount)
	if !ok {
		return nil, fmt.Errorf("malformed account balance %q", view.Amount)
	}
	return amount, nil
}

// FTBalance calls ft_balance_of on a token contract for the given account.
func (c *RPCClient) FTBalance(ctx context.Context, contract, accountID string) (*big.Int, error) {
	var balance string
	if err := c.callFunction(ctx, contract, "ft_balance_of",
		map[string]any{"account_id": accountID}, &balance); err != nil {
		return nil, err
	}
	amount, ok := parseAtomic(balance)
	if !ok {
		return nil, fmt.Errorf("malformed token balance %q from %s", balance, contract)
	}
	return amount, nil
}

// FTMeta calls ft_metadata on a token contract.
func (c *RPCClient) FTMeta(ctx context.Context, contract string) (FTMetadata, error) {
	var meta FTMetadata
	if err := c.callFunction(ctx, contract, "ft_metadata", map[string]any{}, &meta); err != nil {
		return FTMetadata{}, err
	}
	return meta, nil
}

// callFunction runs a call_function query. Arguments travel base64-encoded;
// the result comes back as an array of ASCII byte values holding JSON.
func (c *RPCClient) callFunction(ctx context.Context, contract, method string, args any, out any) error {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode args for %s.%s: %w", contract, method, err)
	}

	result, err := c.query(ctx, map[string]any{
		"request_type": "call_function",
		"finality":     "final",
		"account_id":   contract,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(argsJSON),
	})
	if err != nil {
		return err
	}

	// the result is an array of ASCII byte values, not a base64 string, so
	// it cannot decode straight into []byte
	var call struct {
		Result []int `json:"result"`
	}
	if err := json.Unmarshal(result, &call); err != nil {
		return fmt.Errorf("failed to parse call_function result from %s.%s: %w", contract, method, err)
	}
	raw := make([]byte, len(call.Result))
	for i, b := range call.Result {
		raw[i] = byte(b)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s.%s return value: %w", contract, method, err)
	}
	return nil
}

func (c *RPCClient) query(ctx context.Context, params map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "portal",
		Method:  "query",
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc query failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rpc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to parse rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}
