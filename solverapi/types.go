package solverapi

// TokenEntry is one raw entry from the /v0/tokens endpoint. Entries missing
// AssetID or Symbol are unusable and dropped by the catalog.
type TokenEntry struct {
	AssetID         string `json:"assetId"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name,omitempty"`
	Decimals        int    `json:"decimals,omitempty"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Blockchain      string `json:"blockchain,omitempty"`
}

// QuoteRequest is the /v0/quote request body. Field values other than the
// asset pair, amount and addresses are fixed by the deposit flow the portal
// uses (funds enter through the intents settlement layer).
type QuoteRequest struct {
	SwapType           string `json:"swapType"`
	OriginAsset        string `json:"originAsset"`
	DestinationAsset   string `json:"destinationAsset"`
	Amount             string `json:"amount"`
	DepositType        string `json:"depositType"`
	RefundType         string `json:"refundType"`
	Recipient          string `json:"recipient"`
	RecipientType      string `json:"recipientType"`
	RefundTo           string `json:"refundTo"`
	SlippageTolerance  int    `json:"slippageTolerance"`
	Dry                bool   `json:"dry"`
	Deadline           string `json:"deadline"`
	QuoteWaitingTimeMs int    `json:"quoteWaitingTimeMs"`
}

// QuoteResponse is the /v0/quote response. The solver either rejects with
// Message, or returns the quote fields — some deployments nest them under
// "quote", others return them flat.
type QuoteResponse struct {
	Message string     `json:"message,omitempty"`
	Quote   *QuoteBody `json:"quote,omitempty"`

	// flat variant
	DepositAddress string `json:"depositAddress,omitempty"`
	AmountOut      string `json:"amountOut,omitempty"`
}

// QuoteBody carries the priced quote fields.
type QuoteBody struct {
	DepositAddress string `json:"depositAddress"`
	AmountOut      string `json:"amountOut"`
}

// Body returns the quote fields regardless of which response shape the
// solver used.
func (r *QuoteResponse) Body() QuoteBody {
	if r.Quote != nil {
		return *r.Quote
	}
	return QuoteBody{DepositAddress: r.DepositAddress, AmountOut: r.AmountOut}
}
