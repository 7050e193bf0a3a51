package catalog

// TokenDescriptor is one swappable token in the catalog snapshot.
// Descriptors are replaced wholesale on refresh and never mutated.
type TokenDescriptor struct {
	// Symbol is the canonical upper-cased ticker; WNEAR is folded to NEAR.
	Symbol string `json:"symbol"`
	// Name is the display name, falling back to the symbol.
	Name string `json:"name"`
	// Decimals converts between human and atomic amounts.
	Decimals int `json:"decimals"`
	// AssetID is the solver network's opaque routing key for this token.
	AssetID string `json:"assetId"`
	// Chain is the canonical label of the hosting chain.
	Chain string `json:"blockchain"`
	// ContractAddress is empty for native assets.
	ContractAddress string `json:"contractAddress,omitempty"`
}

// Native reports whether the token is the hosting chain's own coin.
func (t TokenDescriptor) Native() bool {
	return t.ContractAddress == ""
}
