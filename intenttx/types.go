// Package intenttx assembles the unsigned transactions that move a user's
// funds into the intents settlement layer and route them to the solver's
// deposit address. Builders are pure: they encode call data from already
// validated inputs and never touch the network or sign anything.
package intenttx

// Action is a single contract call in a NEAR transaction.
type Action struct {
	Type   string             `json:"type"`
	Params FunctionCallParams `json:"params"`
}

// FunctionCallParams carries the call data for a FunctionCall action. Args
// stay a JSON object here; base64 encoding happens at the signing boundary.
type FunctionCallParams struct {
	MethodName string         `json:"methodName"`
	Args       map[string]any `json:"args"`
	Gas        string         `json:"gas"`
	Deposit    string         `json:"deposit"`
}

// Transaction is an ordered action sequence against one receiver contract.
type Transaction struct {
	ReceiverID string   `json:"receiverId"`
	Actions    []Action `json:"actions"`
}

// EVMTransaction is the unsigned payload for an EVM-sourced deposit. For an
// ERC-20 deposit To is the token contract and Data the encoded transfer
// call; for a native deposit To is the deposit address and Data empty.
type EVMTransaction struct {
	ChainID int64  `json:"chainId"`
	To      string `json:"to"`
	Value   string `json:"value"`
	Data    string `json:"data,omitempty"`
	From    string `json:"from,omitempty"`
}

func newFunctionCall(method string, args map[string]any, gas, deposit string) Action {
	if args == nil {
		args = map[string]any{}
	}
	return Action{
		Type: "FunctionCall",
		Params: FunctionCallParams{
			MethodName: method,
			Args:       args,
			Gas:        gas,
			Deposit:    deposit,
		},
	}
}
