// Package validators checks recipient wallet addresses against the format
// rules of their destination chain before a swap is quoted. Validation is
// purely structural; it never proves an address exists on chain.
package validators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
)

var (
	nearImplicitRe = regexp.MustCompile(`^[a-f0-9]{64}$`)
	nearNamedRe    = regexp.MustCompile(`^[a-z0-9_-]{2,}(\.[a-z0-9_-]{2,})*\.?(near|testnet)$`)
	nearSubRe      = regexp.MustCompile(`^[a-z0-9_-]{2,}(\.[a-z0-9_-]{2,})+$`)
	evmRe          = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	solanaRe       = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	tronRe         = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	tonRawRe       = regexp.MustCompile(`^-?[0-9]+:[a-fA-F0-9]{64}$`)
	tonFriendlyRe  = regexp.MustCompile(`^(EQ|UQ)[A-Za-z0-9_-]{46,48}$`)
)

// IsNEARAddress reports whether the address is a valid NEAR account id,
// either a named account (alice.near, sub.alice.near) or an implicit
// account (64 hex characters).
func IsNEARAddress(address string) bool {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return false
	}
	return nearImplicitRe.MatchString(address) ||
		nearNamedRe.MatchString(address) ||
		nearSubRe.MatchString(address)
}

// IsEVMAddress reports whether the address is 0x followed by 40 hex
// characters. No EIP-55 checksum verification.
func IsEVMAddress(address string) bool {
	return evmRe.MatchString(strings.TrimSpace(address))
}

// IsSolanaAddress reports whether the address is base58 of plausible
// Solana key length.
func IsSolanaAddress(address string) bool {
	return solanaRe.MatchString(strings.TrimSpace(address))
}

// IsTronAddress reports whether the address is a T-prefixed 34-character
// base58 string.
func IsTronAddress(address string) bool {
	return tronRe.MatchString(strings.TrimSpace(address))
}

// IsTONAddress reports whether the address is a TON raw (workchain:hash)
// or user-friendly (EQ/UQ base64url) address.
func IsTONAddress(address string) bool {
	address = strings.TrimSpace(address)
	return tonRawRe.MatchString(address) || tonFriendlyRe.MatchString(address)
}

// ValidateBech32Address validates a bech32 address (checksum included) and
// returns its human-readable prefix.
func ValidateBech32Address(address string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("address is empty")
	}
	if len(address) < 10 {
		return "", fmt.Errorf("address too short (minimum 10 characters)")
	}

	sepIdx := strings.LastIndex(address, "1")
	if sepIdx < 1 {
		return "", fmt.Errorf("missing bech32 separator '1'")
	}
	prefix := address[:sepIdx]

	decodedPrefix, data, err := bech32.Decode(address)
	if err != nil {
		return "", fmt.Errorf("invalid bech32 address (checksum failed): %w", err)
	}
	if decodedPrefix != prefix {
		return "", fmt.Errorf("bech32 prefix mismatch")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty address data")
	}
	return prefix, nil
}

// chainValidators maps canonical chain labels (and common aliases) to
// their format check. Aurora settles through NEAR accounts.
var chainValidators = map[string]func(string) bool{
	"near":      IsNEARAddress,
	"aurora":    IsNEARAddress,
	"intents":   IsNEARAddress,
	"eth":       IsEVMAddress,
	"ethereum":  IsEVMAddress,
	"arb":       IsEVMAddress,
	"arbitrum":  IsEVMAddress,
	"base":      IsEVMAddress,
	"op":        IsEVMAddress,
	"optimism":  IsEVMAddress,
	"bnb":       IsEVMAddress,
	"bsc":       IsEVMAddress,
	"gnosis":    IsEVMAddress,
	"polygon":   IsEVMAddress,
	"avalanche": IsEVMAddress,
	"sol":       IsSolanaAddress,
	"solana":    IsSolanaAddress,
	"tron":      IsTronAddress,
	"trx":       IsTronAddress,
	"ton":       IsTONAddress,
	"cosmos": func(address string) bool {
		_, err := ValidateBech32Address(address)
		return err == nil
	},
}

// ValidateForChain reports whether the address matches the format rules of
// the named chain. Chains without a registered rule accept any string
// longer than five characters, since the format is unknown rather than
// wrong.
func ValidateForChain(address, chain string) bool {
	validate, ok := chainValidators[strings.ToLower(strings.TrimSpace(chain))]
	if ok {
		return validate(address)
	}
	return len(strings.TrimSpace(address)) > 5
}

// ExpectedFormat describes the address format of a chain, for error
// messages when validation fails.
func ExpectedFormat(chain string) string {
	switch strings.ToLower(strings.TrimSpace(chain)) {
	case "near", "aurora", "intents":
		return "NEAR address (e.g., alice.near or 64-char hex)"
	case "eth", "ethereum", "arb", "arbitrum", "base", "op", "optimism",
		"bnb", "bsc", "gnosis", "polygon", "avalanche":
		return "EVM address starting with 0x (42 characters)"
	case "sol", "solana":
		return "Solana address (32-44 base58 characters)"
	case "tron", "trx":
		return "Tron address starting with T (34 characters)"
	case "ton":
		return "TON address (EQ/UQ prefix or raw format)"
	case "cosmos":
		return "bech32 address with checksum"
	default:
		return chain + " wallet address"
	}
}

// DetectChain guesses the chain family from the address format alone.
// Returns the family label and true, or false when no family matches.
// Solana is tried last: its base58 shape is the loosest and would shadow
// named NEAR accounts without dots.
func DetectChain(address string) (string, bool) {
	switch {
	case IsNEARAddress(address):
		return "near", true
	case IsEVMAddress(address):
		return "evm", true
	case IsTronAddress(address):
		return "tron", true
	case IsTONAddress(address):
		return "ton", true
	case IsSolanaAddress(address):
		return "solana", true
	}
	return "", false
}
