package balances

import (
	"math/big"
	"testing"

	"github.com/zeebo/assert"
)

func TestFormatAtomic(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		decimals int
		want     string
	}{
		{"mixed fraction", "12345", 4, "1.2345"},
		{"all-zero fraction collapses", "100000", 5, "1"},
		{"zero", "0", 24, "0"},
		{"sub-unit", "5", 4, "0.0005"},
		{"trailing zeros stripped", "1500000", 6, "1.5"},
		{"no decimals", "42", 0, "42"},
		{"fraction truncated not rounded", "1999999999999999999", 18, "1.99999999"},
		{"negative", "-12345", 4, "-1.2345"},
		{"yocto native", "2500000000000000000000000", 24, "2.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, ok := new(big.Int).SetString(tc.amount, 10)
			assert.True(t, ok)
			assert.Equal(t, tc.want, FormatAtomic(amount, tc.decimals))
		})
	}
}

func TestFormatAtomicNil(t *testing.T) {
	assert.Equal(t, "0", FormatAtomic(nil, 18))
}
