package balances

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DiscoveredToken is one token holding reported by a discovery source,
// balance in atomic units.
type DiscoveredToken struct {
	ContractID string `json:"contract_id"`
	Symbol     string `json:"symbol"`
	Decimals   int    `json:"decimals"`
	Balance    string `json:"balance"`
}

// TokenFinder lists the token balances held by an account.
type TokenFinder interface {
	TokensForAccount(ctx context.Context, accountID string) ([]DiscoveredToken, error)
}

// DiscoveryClient finds token holdings for an account. The primary API
// returns balances and metadata in one call; when it is unavailable the
// client falls back to a secondary indexer that only knows likely token
// contracts, filling in balance and metadata per token over RPC. The
// fallback is applied per request, nothing is cached.
type DiscoveryClient struct {
	httpClient   *http.Client
	primaryURL   string
	secondaryURL string
	rpc          *RPCClient
}

// NewDiscoveryClient creates a discovery client. secondaryURL may be empty
// to disable the fallback.
func NewDiscoveryClient(primaryURL, secondaryURL string, rpc *RPCClient, timeout time.Duration) *DiscoveryClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscoveryClient{
		httpClient:   &http.Client{Timeout: timeout},
		primaryURL:   strings.TrimSuffix(primaryURL, "/"),
		secondaryURL: strings.TrimSuffix(secondaryURL, "/"),
		rpc:          rpc,
	}
}

// TokensForAccount returns the account's token holdings.
func (c *DiscoveryClient) TokensForAccount(ctx context.Context, accountID string) ([]DiscoveredToken, error) {
	tokens, primaryErr := c.fromPrimary(ctx, accountID)
	if primaryErr == nil {
		return tokens, nil
	}
	if c.secondaryURL == "" || c.rpc == nil {
		return nil, primaryErr
	}

	log.Warn().Err(primaryErr).Msg("Primary token discovery unavailable, falling back to indexer")
	tokens, secondaryErr := c.fromSecondary(ctx, accountID)
	if secondaryErr != nil {
		return nil, fmt.Errorf("discovery failed: primary: %v, secondary: %w", primaryErr, secondaryErr)
	}
	return tokens, nil
}

func (c *DiscoveryClient) fromPrimary(ctx context.Context, accountID string) ([]DiscoveredToken, error) {
	endpoint := fmt.Sprintf("%s/account/%s/tokens", c.primaryURL, url.PathEscape(accountID))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var tokens []DiscoveredToken
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse discovery response: %w", err)
	}
	return tokens, nil
}

// fromSecondary asks the indexer for likely token contracts, then resolves
// balance and metadata for each over RPC. Tokens whose follow-up queries
// fail are skipped rather than failing the whole listing.
func (c *DiscoveryClient) fromSecondary(ctx context.Context, accountID string) ([]DiscoveredToken, error) {
	endpoint := fmt.Sprintf("%s/account/%s/likelyTokens", c.secondaryURL, url.PathEscape(accountID))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var contracts []string
	if err := json.Unmarshal(body, &contracts); err != nil {
		return nil, fmt.Errorf("failed to parse indexer response: %w", err)
	}

	tokens := make([]DiscoveredToken, 0, len(contracts))
	for _, contract := range contracts {
		balance, err := c.rpc.FTBalance(ctx, contract, accountID)
		if err != nil {
			log.Warn().Err(err).Str("contract", contract).Msg("Skipping token, balance query failed")
			continue
		}
		if balance.Sign() == 0 {
			continue
		}
		meta, err := c.rpc.FTMeta(ctx, contract)
		if err != nil {
			log.Warn().Err(err).Str("contract", contract).Msg("Skipping token, metadata query failed")
			continue
		}
		tokens = append(tokens, DiscoveredToken{
			ContractID: contract,
			Symbol:     meta.Symbol,
			Decimals:   meta.Decimals,
			Balance:    balance.String(),
		})
	}
	return tokens, nil
}

func (c *DiscoveryClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery status %d", resp.StatusCode)
	}
	return body, nil
}
