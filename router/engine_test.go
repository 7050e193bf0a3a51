package router_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/router"
	"github.com/neptune-labs/intents-portal/solverapi"
	"github.com/shopspring/decimal"
	"github.com/zeebo/assert"
)

type staticSource struct {
	entries []solverapi.TokenEntry
	err     error
}

func (s *staticSource) Tokens(ctx context.Context) ([]solverapi.TokenEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type fakeSolver struct {
	failures int
	resp     *solverapi.QuoteResponse
	calls    int
	lastReq  solverapi.QuoteRequest
}

func (f *fakeSolver) Quote(ctx context.Context, req solverapi.QuoteRequest) (*solverapi.QuoteResponse, error) {
	f.calls++
	f.lastReq = req
	if f.calls <= f.failures {
		return nil, &solverapi.StatusError{Code: 503, Body: "overloaded"}
	}
	return f.resp, nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return catalog.New(&staticSource{entries: []solverapi.TokenEntry{
		{AssetID: "nep141:wrap.near", Symbol: "NEAR", Decimals: 24, Blockchain: "near", ContractAddress: "wrap.near"},
		{AssetID: "nep141:usdc.near", Symbol: "USDC", Decimals: 6, Blockchain: "near", ContractAddress: "usdc.near"},
		{AssetID: "nep141:eth.omft.near", Symbol: "ETH", Decimals: 18, Blockchain: "eth"},
		{AssetID: "nep141:aurora.bridge.near", Symbol: "AUR", Decimals: 18, Blockchain: "aurora"},
	}})
}

// recordingSleeper captures backoff delays instead of sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newEngine(t *testing.T, solver router.QuoteClient, opts ...router.EngineOption) *router.Engine {
	t.Helper()
	return router.NewEngine(testCatalog(t), solver, opts...)
}

func TestIsCrossChain(t *testing.T) {
	e := newEngine(t, &fakeSolver{})
	ctx := context.Background()

	assert.True(t, e.IsCrossChain(ctx, "NEAR", "ETH"))
	assert.False(t, e.IsCrossChain(ctx, "NEAR", "USDC"))
	// aurora folds into near before the comparison
	assert.False(t, e.IsCrossChain(ctx, "AUR", "NEAR"))
	// a lookup miss defaults to same-chain
	assert.False(t, e.IsCrossChain(ctx, "NEAR", "DOGE"))
}

func TestIsCrossChain_CatalogUnavailableDefaultsSameChain(t *testing.T) {
	cat := catalog.New(&staticSource{err: errors.New("down")})
	e := router.NewEngine(cat, &fakeSolver{})

	assert.False(t, e.IsCrossChain(context.Background(), "NEAR", "ETH"))
}

func TestQuote_Success(t *testing.T) {
	solver := &fakeSolver{resp: &solverapi.QuoteResponse{
		Quote: &solverapi.QuoteBody{
			DepositAddress: "deposit.intents.near",
			AmountOut:      "12500000", // 12.5 USDC at 6 decimals
		},
	}}
	e := newEngine(t, solver, router.WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}))

	quote, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(5),
		Recipient: "alice.near",
	})
	assert.NoError(t, err)
	assert.Equal(t, "NEAR", quote.TokenIn)
	assert.Equal(t, "USDC", quote.TokenOut)
	assert.Equal(t, "deposit.intents.near", quote.DepositAddress)
	assert.Equal(t, "12.5", quote.AmountOut.String())
	assert.Equal(t, "2.5", quote.Rate.String())
	assert.Equal(t, "near", quote.Chain)
	assert.Equal(t, "nep141:wrap.near", quote.AssetIn)

	// request carries the fixed intents deposit flow and atomic amount
	assert.Equal(t, "EXACT_INPUT", solver.lastReq.SwapType)
	assert.Equal(t, "INTENTS", solver.lastReq.DepositType)
	assert.Equal(t, "5000000000000000000000000", solver.lastReq.Amount)
	assert.Equal(t, "alice.near", solver.lastReq.RefundTo)
	assert.Equal(t, "2026-03-01T12:05:00Z", solver.lastReq.Deadline)
}

func TestQuote_FlatResponseShape(t *testing.T) {
	solver := &fakeSolver{resp: &solverapi.QuoteResponse{
		DepositAddress: "deposit.intents.near",
		AmountOut:      "1000000",
	}}
	e := newEngine(t, solver)

	quote, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(1),
		Recipient: "alice.near",
	})
	assert.NoError(t, err)
	assert.Equal(t, "1", quote.AmountOut.String())
}

func TestQuote_RecipientRequired(t *testing.T) {
	e := newEngine(t, &fakeSolver{})

	_, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:  "NEAR",
		TokenOut: "USDC",
		Amount:   decimal.NewFromInt(1),
	})
	assert.True(t, errors.Is(err, router.ErrRecipientRequired))
}

func TestQuote_UnsupportedPair(t *testing.T) {
	e := newEngine(t, &fakeSolver{})

	_, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "DOGE",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(1),
		Recipient: "alice.near",
	})
	assert.True(t, errors.Is(err, router.ErrUnsupportedPair))
}

func TestQuote_RetriesWithCappedBackoff(t *testing.T) {
	solver := &fakeSolver{
		failures: 7,
		resp: &solverapi.QuoteResponse{
			Quote: &solverapi.QuoteBody{DepositAddress: "d.near", AmountOut: "1000000"},
		},
	}
	sleeper := &recordingSleeper{}
	e := newEngine(t, solver, router.WithSleeper(sleeper.sleep))

	quote, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(1),
		Recipient: "alice.near",
	})
	assert.NoError(t, err)
	assert.Equal(t, "d.near", quote.DepositAddress)
	assert.Equal(t, 8, solver.calls)

	want := []time.Duration{
		1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
		10 * time.Second, 10 * time.Second, 10 * time.Second,
	}
	assert.Equal(t, len(want), len(sleeper.delays))
	for i := range want {
		assert.Equal(t, want[i], sleeper.delays[i])
	}
}

func TestQuote_ExhaustedAttempts(t *testing.T) {
	solver := &fakeSolver{failures: 100}
	sleeper := &recordingSleeper{}
	e := newEngine(t, solver, router.WithSleeper(sleeper.sleep))

	_, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(1),
		Recipient: "alice.near",
	})
	assert.True(t, errors.Is(err, router.ErrQuoteUnavailable))
	assert.Equal(t, 8, solver.calls)
}

func TestQuote_SolverRejectionIsTerminal(t *testing.T) {
	solver := &fakeSolver{resp: &solverapi.QuoteResponse{Message: "amount too low"}}
	sleeper := &recordingSleeper{}
	e := newEngine(t, solver, router.WithSleeper(sleeper.sleep))

	_, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(1),
		Recipient: "alice.near",
	})

	var solverErr *router.SolverError
	assert.True(t, errors.As(err, &solverErr))
	assert.Equal(t, "amount too low", solverErr.Message)
	assert.Equal(t, 1, solver.calls)
	assert.Equal(t, 0, len(sleeper.delays))
}

func TestQuote_NoDepositAddress(t *testing.T) {
	solver := &fakeSolver{resp: &solverapi.QuoteResponse{
		Quote: &solverapi.QuoteBody{AmountOut: "1000000"},
	}}
	e := newEngine(t, solver)

	_, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.NewFromInt(1),
		Recipient: "alice.near",
	})
	assert.True(t, errors.Is(err, router.ErrNoDepositAddress))
}

func TestAtomicRoundTrip(t *testing.T) {
	atomic := router.ToAtomic(decimal.NewFromInt(5), 24)
	assert.Equal(t, "5000000000000000000000000", atomic)

	back, err := router.FromAtomic(atomic, 24)
	assert.NoError(t, err)
	assert.True(t, back.Equal(decimal.NewFromInt(5)))
}

func TestZeroAmountRateIsZero(t *testing.T) {
	solver := &fakeSolver{resp: &solverapi.QuoteResponse{
		Quote: &solverapi.QuoteBody{DepositAddress: "d.near", AmountOut: "0"},
	}}
	e := newEngine(t, solver)

	quote, err := e.Quote(context.Background(), router.QuoteParams{
		TokenIn:   "NEAR",
		TokenOut:  "USDC",
		Amount:    decimal.Zero,
		Recipient: "alice.near",
	})
	assert.NoError(t, err)
	assert.True(t, quote.Rate.IsZero())
}
