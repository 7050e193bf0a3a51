package intenttx

import (
	"fmt"
	"strings"

	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/router"
	"github.com/shopspring/decimal"
)

// Protocol constants. Gas is in atomic gas units, deposits in yoctoNEAR;
// all fixed by the contracts involved, never computed.
const (
	SettlementContract = "intents.near"
	WrapContract       = "wrap.near"
	wrapAssetID        = "nep141:" + WrapContract

	storageDepositGas     = "30000000000000" // 30 TGas
	storageDepositAmount  = "1250000000000000000000"
	wrapGas               = "10000000000000"  // 10 TGas
	transferCallGas       = "50000000000000"  // 50 TGas
	settlementTransferGas = "100000000000000" // 100 TGas
	oneYocto              = "1"
)

// BuildDepositBatch constructs the ordered transaction batch that deposits
// tokenIn into the settlement layer and routes it to the solver's deposit
// address. The caller must have resolved tokenIn through the catalog and
// validated the pair via the quote engine; a descriptor without routing
// metadata is a programming error and panics.
//
// For the chain's native asset the first transaction runs three actions
// against the wrapped-asset contract, strictly in order: storage
// registration for the settlement contract, then the wrap deposit, then the
// transfer-with-callback. Each step depends on state created by the one
// before it. Fungible tokens need only the transfer-with-callback on their
// own contract. The second transaction is the same in both cases: an
// mt_transfer on the settlement contract routing the deposited amount to
// the solver.
func BuildDepositBatch(
	tokenIn catalog.TokenDescriptor,
	amount decimal.Decimal,
	depositAddress string,
) []Transaction {
	if depositAddress == "" {
		panic("intenttx: empty deposit address")
	}

	amountAtomic := router.ToAtomic(amount, tokenIn.Decimals)

	var deposit Transaction
	tokenID := tokenIn.AssetID
	if strings.ToUpper(tokenIn.Symbol) == "NEAR" {
		deposit = Transaction{
			ReceiverID: WrapContract,
			Actions: []Action{
				newFunctionCall("storage_deposit", map[string]any{
					"account_id":        SettlementContract,
					"registration_only": true,
				}, storageDepositGas, storageDepositAmount),
				newFunctionCall("near_deposit", nil, wrapGas, amountAtomic),
				newFunctionCall("ft_transfer_call", map[string]any{
					"receiver_id": SettlementContract,
					"amount":      amountAtomic,
					"msg":         "",
				}, transferCallGas, oneYocto),
			},
		}
		tokenID = wrapAssetID
	} else {
		deposit = Transaction{
			ReceiverID: tokenContract(tokenIn),
			Actions: []Action{
				newFunctionCall("ft_transfer_call", map[string]any{
					"receiver_id": SettlementContract,
					"amount":      amountAtomic,
					"msg":         "",
				}, transferCallGas, oneYocto),
			},
		}
	}

	routing := Transaction{
		ReceiverID: SettlementContract,
		Actions: []Action{
			newFunctionCall("mt_transfer", map[string]any{
				"token_id":    tokenID,
				"receiver_id": depositAddress,
				"amount":      amountAtomic,
				"msg":         "",
			}, settlementTransferGas, oneYocto),
		},
	}

	return []Transaction{deposit, routing}
}

// tokenContract resolves the on-chain contract for a fungible token,
// falling back to the contract embedded in the routing asset id.
func tokenContract(token catalog.TokenDescriptor) string {
	if token.ContractAddress != "" {
		return token.ContractAddress
	}
	if rest, ok := strings.CutPrefix(token.AssetID, "nep141:"); ok && rest != "" {
		return rest
	}
	panic(fmt.Sprintf("intenttx: token %s has no contract and no nep141 asset id", token.Symbol))
}
