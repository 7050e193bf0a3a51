package balances

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/neptune-labs/intents-portal/chains"
)

// Wrapped-native entry reported on the settlement layer; re-labeled back to
// its home chain with a distinguished display symbol.
const (
	settlementChainLabel = "intents"
	wrappedNativeSymbol  = "wNEAR"
	wrappedNativeDisplay = "wNEAR (NEAR)"
	wrappedNativeHome    = "near"
)

// ConnectorChainCode is a chain identifier as wallet connectors report it,
// either a JSON number (EVM chain id or sentinel) or a string label.
type ConnectorChainCode struct {
	chains.ChainCode
}

// UnmarshalJSON accepts both encodings and rejects anything else.
func (c *ConnectorChainCode) UnmarshalJSON(data []byte) error {
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		c.ChainCode = chains.NumericCode(id)
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		c.ChainCode = chains.NamedCode(name)
		return nil
	}
	return fmt.Errorf("chain code must be a number or a string, got %s", string(data))
}

// ConnectorEntry is one balance row from a wallet connector's portfolio
// view, exactly as it arrives on the wire.
type ConnectorEntry struct {
	ChainID  ConnectorChainCode `json:"chainId"`
	Symbol   string             `json:"symbol"`
	Decimals int                `json:"decimals"`
	Balance  string             `json:"balance"`
	Address  string             `json:"address,omitempty"`
}

// Connector surfaces the live portfolio of a connected multi-chain wallet.
type Connector interface {
	Portfolio(ctx context.Context, addressesByChain map[string]string) ([]ConnectorEntry, error)
}

// WalletBalanceEntry is the single internal shape every source is decoded
// into: canonical chain label, display symbol, and an atomic amount.
type WalletBalanceEntry struct {
	Chain    string
	Symbol   string
	Decimals int
	Amount   *big.Int
}

// DisplayKey renders the merge key for an entry, "[CHAIN] SYMBOL".
func (e WalletBalanceEntry) DisplayKey() string {
	return "[" + strings.ToUpper(e.Chain) + "] " + e.Symbol
}

// decodeConnectorEntry validates a raw connector row and resolves its chain
// code through the registry. Rows with an unparseable balance or a blank
// symbol are rejected at this boundary.
func decodeConnectorEntry(reg *chains.Registry, raw ConnectorEntry) (WalletBalanceEntry, error) {
	symbol := strings.TrimSpace(raw.Symbol)
	if symbol == "" {
		return WalletBalanceEntry{}, fmt.Errorf("connector entry missing symbol")
	}
	amount, ok := parseAtomic(raw.Balance)
	if !ok {
		return WalletBalanceEntry{}, fmt.Errorf("connector entry for %s has bad balance %q", symbol, raw.Balance)
	}
	if raw.Decimals < 0 {
		return WalletBalanceEntry{}, fmt.Errorf("connector entry for %s has negative decimals", symbol)
	}

	entry := WalletBalanceEntry{
		Chain:    reg.Resolve(raw.ChainID.ChainCode),
		Symbol:   symbol,
		Decimals: raw.Decimals,
		Amount:   amount,
	}
	if entry.Chain == settlementChainLabel && strings.EqualFold(symbol, wrappedNativeSymbol) {
		entry.Chain = wrappedNativeHome
		entry.Symbol = wrappedNativeDisplay
	}
	return entry, nil
}
