package balances

import (
	"context"
	"math/big"
	"sync"

	"github.com/neptune-labs/intents-portal/chains"
	"golang.org/x/sync/errgroup"
)

// Decimals of the NEAR native token in yocto units.
const nearNativeDecimals = 24

// AccountViewer reports the native balance of an account, atomic units.
type AccountViewer interface {
	ViewAccount(ctx context.Context, accountID string) (*big.Int, error)
}

// Reconciler aggregates balances from up to three sources into one
// per-chain, per-token map: a direct chain RPC for the primary wallet's
// native balance, a token-discovery API for its fungible tokens, and a
// multi-chain wallet connector's portfolio view. Sources are queried in
// parallel; a failing source contributes nothing and never blocks the rest.
type Reconciler struct {
	registry  *chains.Registry
	viewer    AccountViewer
	finder    TokenFinder
	connector Connector
}

// NewReconciler creates a reconciler. viewer, finder, and connector may each
// be nil to disable that source.
func NewReconciler(registry *chains.Registry, viewer AccountViewer, finder TokenFinder, connector Connector) *Reconciler {
	return &Reconciler{
		registry:  registry,
		viewer:    viewer,
		finder:    finder,
		connector: connector,
	}
}

// Reconcile queries all configured sources for the given wallet addresses
// and merges the results into a map of display key ("[CHAIN] SYMBOL") to
// formatted balance. Merging is last-write-wins per key, with the connector
// applied last so its typically fresher balances overwrite RPC-sourced ones.
func (r *Reconciler) Reconcile(ctx context.Context, addressesByChain map[string]string) (map[string]string, error) {
	var (
		mu        sync.Mutex
		native    []WalletBalanceEntry
		tokens    []WalletBalanceEntry
		connected []WalletBalanceEntry
	)

	nearAccount := addressesByChain["near"]

	g, gctx := errgroup.WithContext(ctx)

	if r.viewer != nil && nearAccount != "" {
		g.Go(func() error {
			amount, err := r.viewer.ViewAccount(gctx, nearAccount)
			if err != nil {
				log.Warn().Err(err).Str("account", nearAccount).Msg("Native balance query failed, omitting source")
				return nil
			}
			mu.Lock()
			native = append(native, WalletBalanceEntry{
				Chain:    "near",
				Symbol:   "NEAR",
				Decimals: nearNativeDecimals,
				Amount:   amount,
			})
			mu.Unlock()
			return nil
		})
	}

	if r.finder != nil && nearAccount != "" {
		g.Go(func() error {
			discovered, err := r.finder.TokensForAccount(gctx, nearAccount)
			if err != nil {
				log.Warn().Err(err).Str("account", nearAccount).Msg("Token discovery failed, omitting source")
				return nil
			}
			entries := make([]WalletBalanceEntry, 0, len(discovered))
			for _, tok := range discovered {
				amount, ok := parseAtomic(tok.Balance)
				if !ok {
					log.Warn().Str("contract", tok.ContractID).Str("balance", tok.Balance).Msg("Skipping token with bad balance")
					continue
				}
				entries = append(entries, WalletBalanceEntry{
					Chain:    "near",
					Symbol:   tok.Symbol,
					Decimals: tok.Decimals,
					Amount:   amount,
				})
			}
			mu.Lock()
			tokens = append(tokens, entries...)
			mu.Unlock()
			return nil
		})
	}

	if r.connector != nil {
		g.Go(func() error {
			rows, err := r.connector.Portfolio(gctx, addressesByChain)
			if err != nil {
				log.Warn().Err(err).Msg("Connector portfolio query failed, omitting source")
				return nil
			}
			entries := make([]WalletBalanceEntry, 0, len(rows))
			for _, row := range rows {
				entry, err := decodeConnectorEntry(r.registry, row)
				if err != nil {
					log.Warn().Err(err).Msg("Skipping connector entry")
					continue
				}
				entries = append(entries, entry)
			}
			mu.Lock()
			connected = append(connected, entries...)
			mu.Unlock()
			return nil
		})
	}

	// Source errors are swallowed above, the only way out is ctx.
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := make(map[string]string)
	for _, group := range [][]WalletBalanceEntry{native, tokens, connected} {
		for _, entry := range group {
			merged[entry.DisplayKey()] = FormatAtomic(entry.Amount, entry.Decimals)
		}
	}
	return merged, nil
}
