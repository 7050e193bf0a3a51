package router

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// QuoteParams describes a swap request to be priced.
type QuoteParams struct {
	// TokenIn and TokenOut are token symbols, matched case-insensitively
	// against the catalog.
	TokenIn  string
	TokenOut string
	// Amount is the human-readable input amount.
	Amount decimal.Decimal
	// Recipient receives the output asset. Required.
	Recipient string
	// RefundTo receives refunds if the swap fails; defaults to Recipient.
	RefundTo string
	// ChainHint labels the source chain for display; defaults to the input
	// token's chain.
	ChainHint string
}

// SwapQuote is a single point-in-time offer from the solver network. The
// expiry is enforced remotely (via the request deadline), not tracked here.
type SwapQuote struct {
	TokenIn        string          `json:"tokenIn"`
	TokenOut       string          `json:"tokenOut"`
	AmountIn       decimal.Decimal `json:"amountIn"`
	AmountOut      decimal.Decimal `json:"amountOut"`
	Rate           decimal.Decimal `json:"rate"`
	Chain          string          `json:"chain"`
	DepositAddress string          `json:"depositAddress"`
	AssetIn        string          `json:"assetIn"`
	AssetOut       string          `json:"assetOut"`
}

// ToAtomic converts a human amount to the token's atomic integer
// representation, rounding at the last atomic digit.
func ToAtomic(amount decimal.Decimal, decimals int) string {
	return amount.Shift(int32(decimals)).Round(0).BigInt().String()
}

// MustAtomicInt parses an atomic amount produced by ToAtomic. Only valid for
// strings the portal built itself; anything else is a programming error.
func MustAtomicInt(atomic string) *big.Int {
	v, ok := new(big.Int).SetString(atomic, 10)
	if !ok {
		panic(fmt.Sprintf("router: malformed atomic amount %q", atomic))
	}
	return v
}

// FromAtomic converts an atomic integer string back to a human amount.
func FromAtomic(atomic string, decimals int) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(atomic)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid atomic amount %q: %w", atomic, err)
	}
	return d.Shift(int32(-decimals)), nil
}
