// Package router decides how a swap request is routed and obtains a priced
// quote for it from the solver network. Routing here is a classification
// problem only (same-chain vs cross-chain); the actual path through pools
// and bridges is the solver's job.
package router

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/solverapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "router").Logger()
}

var (
	// ErrUnsupportedPair means one of the tokens has no routing asset id.
	ErrUnsupportedPair = errors.New("token pair not supported for swapping")
	// ErrRecipientRequired means no recipient address was supplied.
	ErrRecipientRequired = errors.New("recipient address required to fetch a quote")
	// ErrNoDepositAddress means the solver accepted the quote but returned
	// no deposit address, leaving nowhere to send funds.
	ErrNoDepositAddress = errors.New("no deposit address in quote")
	// ErrQuoteUnavailable means every attempt failed at the transport level.
	ErrQuoteUnavailable = errors.New("unable to fetch quote after multiple attempts")
)

// SolverError is a terminal rejection carried in the solver's response body.
// It is surfaced verbatim and never retried.
type SolverError struct {
	Message string
}

func (e *SolverError) Error() string {
	return e.Message
}

// Default retry policy: 8 attempts with exponential backoff capped at 10s.
const (
	defaultAttempts  = 8
	defaultBaseDelay = 1 * time.Second
	defaultMaxDelay  = 10 * time.Second
)

// Fallback decimals when the catalog lacks an entry: NEAR-style 24 for the
// input side, EVM-style 18 for the output side.
const (
	defaultDecimalsIn  = 24
	defaultDecimalsOut = 18
)

const quoteDeadline = 5 * time.Minute

// slippageTolerance is the fixed tolerance sent with every quote request,
// in basis points.
const slippageTolerance = 10

// chainFold maps rollup/bridge networks onto their parent network before the
// cross-chain comparison. A named exception list, not a general rule.
var chainFold = map[string]string{
	"aurora": "near",
}

// QuoteClient issues a single quote request. *solverapi.Client satisfies it.
type QuoteClient interface {
	Quote(ctx context.Context, req solverapi.QuoteRequest) (*solverapi.QuoteResponse, error)
}

// Engine classifies swaps and obtains quotes.
type Engine struct {
	catalog *catalog.Catalog
	solver  QuoteClient

	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRetryPolicy overrides the attempt budget and backoff bounds.
func WithRetryPolicy(attempts int, base, max time.Duration) EngineOption {
	return func(e *Engine) {
		e.attempts = attempts
		e.baseDelay = base
		e.maxDelay = max
	}
}

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithSleeper substitutes the backoff sleeper, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) EngineOption {
	return func(e *Engine) { e.sleep = sleep }
}

// NewEngine creates a quote engine over the given catalog and solver client.
func NewEngine(cat *catalog.Catalog, solver QuoteClient, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:   cat,
		solver:    solver,
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		maxDelay:  defaultMaxDelay,
		now:       time.Now,
		sleep:     sleepCtx,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsCrossChain reports whether the two tokens live on different chains.
// A catalog miss (either token unknown, or the catalog unreachable) counts
// as same-chain: when chain metadata is unavailable the engine deliberately
// degrades to the simpler same-chain path rather than failing the swap.
func (e *Engine) IsCrossChain(ctx context.Context, tokenIn, tokenOut string) bool {
	in, okIn, err := e.catalog.FindBySymbol(ctx, tokenIn)
	if err != nil {
		log.Warn().Err(err).Msg("Catalog unavailable for cross-chain check, assuming same-chain")
		return false
	}
	out, okOut, _ := e.catalog.FindBySymbol(ctx, tokenOut)
	if !okIn || !okOut {
		log.Warn().
			Str("token_in", tokenIn).
			Str("token_out", tokenOut).
			Msg("Token metadata missing for cross-chain check, assuming same-chain")
		return false
	}

	return foldChain(in.Chain) != foldChain(out.Chain)
}

func foldChain(chain string) string {
	if parent, ok := chainFold[chain]; ok {
		return parent
	}
	return chain
}

// Quote obtains a priced, time-bounded quote for the given request. Transport
// failures are retried with exponential backoff up to the attempt budget;
// a solver-side rejection is terminal and surfaced immediately.
func (e *Engine) Quote(ctx context.Context, params QuoteParams) (*SwapQuote, error) {
	if params.Recipient == "" {
		return nil, ErrRecipientRequired
	}

	tokenIn, okIn, err := e.catalog.FindBySymbol(ctx, params.TokenIn)
	if err != nil {
		return nil, err
	}
	tokenOut, okOut, err := e.catalog.FindBySymbol(ctx, params.TokenOut)
	if err != nil {
		return nil, err
	}
	if !okIn || tokenIn.AssetID == "" {
		return nil, fmt.Errorf("%w: %s not found in supported list", ErrUnsupportedPair, params.TokenIn)
	}
	if !okOut || tokenOut.AssetID == "" {
		return nil, fmt.Errorf("%w: %s not found in supported list", ErrUnsupportedPair, params.TokenOut)
	}

	decimalsIn := tokenIn.Decimals
	if decimalsIn == 0 {
		decimalsIn = defaultDecimalsIn
	}
	decimalsOut := tokenOut.Decimals
	if decimalsOut == 0 {
		decimalsOut = defaultDecimalsOut
	}

	refundTo := params.RefundTo
	if refundTo == "" {
		refundTo = params.Recipient
	}

	req := solverapi.QuoteRequest{
		SwapType:           "EXACT_INPUT",
		OriginAsset:        tokenIn.AssetID,
		DestinationAsset:   tokenOut.AssetID,
		Amount:             ToAtomic(params.Amount, decimalsIn),
		DepositType:        "INTENTS",
		RefundType:         "INTENTS",
		Recipient:          params.Recipient,
		RecipientType:      "DESTINATION_CHAIN",
		RefundTo:           refundTo,
		SlippageTolerance:  slippageTolerance,
		Dry:                false,
		Deadline:           e.now().UTC().Add(quoteDeadline).Format(time.RFC3339),
		QuoteWaitingTimeMs: 0,
	}

	resp, err := e.fetchWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Message != "" {
		return nil, &SolverError{Message: resp.Message}
	}

	body := resp.Body()
	if body.DepositAddress == "" {
		return nil, ErrNoDepositAddress
	}

	amountOut, err := FromAtomic(body.AmountOut, decimalsOut)
	if err != nil {
		return nil, fmt.Errorf("invalid amountOut in quote: %w", err)
	}

	rate := decimal.Zero
	if params.Amount.IsPositive() {
		rate = amountOut.Div(params.Amount)
	}

	chain := params.ChainHint
	if chain == "" {
		chain = tokenIn.Chain
	}

	log.Info().
		Str("token_in", tokenIn.Symbol).
		Str("token_out", tokenOut.Symbol).
		Str("amount_out", amountOut.String()).
		Str("deposit_address", body.DepositAddress).
		Msg("Quote received")

	return &SwapQuote{
		TokenIn:        tokenIn.Symbol,
		TokenOut:       tokenOut.Symbol,
		AmountIn:       params.Amount,
		AmountOut:      amountOut,
		Rate:           rate,
		Chain:          chain,
		DepositAddress: body.DepositAddress,
		AssetIn:        tokenIn.AssetID,
		AssetOut:       tokenOut.AssetID,
	}, nil
}

func (e *Engine) fetchWithRetry(ctx context.Context, req solverapi.QuoteRequest) (*solverapi.QuoteResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if attempt > 1 {
			if err := e.sleep(ctx, e.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		resp, err := e.solver.Quote(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("budget", e.attempts).
			Msg("Quote attempt failed")
	}
	return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, lastErr)
}

// backoff returns min(base * 2^(n-1), max) for the n-th completed attempt.
func (e *Engine) backoff(n int) time.Duration {
	d := e.baseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if d >= e.maxDelay {
			return e.maxDelay
		}
	}
	if d > e.maxDelay {
		return e.maxDelay
	}
	return d
}
