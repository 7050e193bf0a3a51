// Package catalog maintains the portal's view of which tokens can be
// swapped. The token list comes from the solver network's catalog endpoint
// and changes rarely, so it is held in one process-wide snapshot with a
// time-to-live; a failed refresh falls back to the previous snapshot rather
// than failing callers that can still work with slightly stale data.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/neptune-labs/intents-portal/solverapi"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "catalog").Logger()
}

// DefaultTTL is how long a snapshot is served without hitting the network.
const DefaultTTL = 6 * time.Hour

// ErrCatalogUnavailable is returned when no snapshot exists and the refresh
// failed. Callers needing live token data cannot proceed; callers that only
// classify routing may degrade to assuming same-chain.
var ErrCatalogUnavailable = errors.New("token catalog unavailable")

// Source fetches the raw token list. *solverapi.Client satisfies it.
type Source interface {
	Tokens(ctx context.Context) ([]solverapi.TokenEntry, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL overrides the snapshot time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// Catalog owns the token snapshot. One instance is constructed at startup
// and injected into every consumer; there is no package-level cache.
type Catalog struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	entries   []TokenDescriptor
	fetchedAt time.Time
}

// New creates a catalog backed by the given source.
func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{
		source: source,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens returns the current snapshot, refreshing it over the network when
// the TTL has lapsed. Concurrent callers inside a refresh window may each
// trigger a redundant fetch; the fetch is idempotent and the snapshot is
// replaced atomically, so the race is benign.
func (c *Catalog) Tokens(ctx context.Context) ([]TokenDescriptor, error) {
	c.mu.RLock()
	entries, fetchedAt := c.entries, c.fetchedAt
	c.mu.RUnlock()

	if len(entries) > 0 && c.now().Sub(fetchedAt) < c.ttl {
		return entries, nil
	}

	fresh, err := c.refresh(ctx)
	if err == nil {
		return fresh, nil
	}

	// stale fallback: an expired snapshot beats no answer
	if len(entries) > 0 {
		log.Warn().Err(err).Msg("Catalog refresh failed, serving stale snapshot")
		return entries, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

func (c *Catalog) refresh(ctx context.Context) ([]TokenDescriptor, error) {
	raw, err := c.source.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	entries := canonicalize(raw)
	if len(entries) == 0 {
		return nil, errors.New("catalog endpoint returned no usable tokens")
	}

	c.mu.Lock()
	c.entries = entries
	c.fetchedAt = c.now()
	c.mu.Unlock()

	log.Info().Int("tokens", len(entries)).Msg("Token catalog refreshed")
	return entries, nil
}

// FindBySymbol returns the descriptor for a symbol, case-insensitive exact
// match.
func (c *Catalog) FindBySymbol(ctx context.Context, symbol string) (TokenDescriptor, bool, error) {
	entries, err := c.Tokens(ctx)
	if err != nil {
		return TokenDescriptor{}, false, err
	}
	upper := strings.ToUpper(symbol)
	for _, t := range entries {
		if strings.ToUpper(t.Symbol) == upper {
			return t, true, nil
		}
	}
	return TokenDescriptor{}, false, nil
}

// canonicalize turns raw catalog entries into the snapshot: entries missing
// an asset id or symbol are dropped, WNEAR folds into NEAR, duplicate symbols
// (case-insensitive) keep the first occurrence, and the surviving set is
// ordered NEAR-family chains first, then by chain and symbol.
func canonicalize(raw []solverapi.TokenEntry) []TokenDescriptor {
	seen := make(map[string]bool, len(raw))
	entries := make([]TokenDescriptor, 0, len(raw))

	for _, item := range raw {
		if item.AssetID == "" || item.Symbol == "" {
			continue
		}

		symbol := item.Symbol
		if up := strings.ToUpper(symbol); up == "WNEAR" || up == "NEAR" {
			symbol = "NEAR"
		}

		key := strings.ToUpper(symbol)
		if seen[key] {
			continue
		}
		seen[key] = true

		name := item.Name
		if name == "" {
			name = symbol
		}
		decimals := item.Decimals
		if decimals == 0 {
			decimals = 18
		}
		chain := strings.ToLower(item.Blockchain)
		if chain == "" {
			chain = "near"
		}

		entries = append(entries, TokenDescriptor{
			Symbol:          symbol,
			Name:            name,
			Decimals:        decimals,
			AssetID:         item.AssetID,
			Chain:           chain,
			ContractAddress: item.ContractAddress,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := chainPriority(entries[i].Chain), chainPriority(entries[j].Chain)
		if pi != pj {
			return pi < pj
		}
		if entries[i].Chain != entries[j].Chain {
			return entries[i].Chain < entries[j].Chain
		}
		return strings.ToUpper(entries[i].Symbol) < strings.ToUpper(entries[j].Symbol)
	})
	return entries
}

// NEAR and Aurora entries sort first; that keeps the home chain on top of
// every listing.
func chainPriority(chain string) int {
	if chain == "near" || chain == "aurora" {
		return 0
	}
	return 1
}
