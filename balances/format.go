package balances

import (
	"math/big"
	"strings"
)

// maxFractionDigits bounds how many fractional digits a displayed balance
// keeps. Extra digits are truncated, not rounded.
const maxFractionDigits = 8

// FormatAtomic renders an atomic amount as a decimal string. All arithmetic
// is integer (big.Int division and modulo), never floating point, so no
// precision is lost regardless of magnitude. Trailing zeros are stripped;
// an all-zero fraction collapses to the integral part alone, and the result
// is never empty ("0" at minimum). Scientific notation is never produced.
func FormatAtomic(amount *big.Int, decimals int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	if decimals <= 0 {
		return amount.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	integral, fraction := new(big.Int).QuoRem(amount, divisor, new(big.Int))

	negative := amount.Sign() < 0
	integral.Abs(integral)
	fraction.Abs(fraction)

	out := integral.String()
	if negative {
		out = "-" + out
	}

	if fraction.Sign() == 0 {
		return out
	}

	// left-pad the fraction to the full decimal width, then truncate
	frac := fraction.String()
	if len(frac) < decimals {
		frac = strings.Repeat("0", decimals-len(frac)) + frac
	}
	if len(frac) > maxFractionDigits {
		frac = frac[:maxFractionDigits]
	}
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return out
	}
	return out + "." + frac
}

// parseAtomic parses a provider-supplied atomic amount string.
func parseAtomic(s string) (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimSpace(s), 10)
}
