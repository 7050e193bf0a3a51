package intenttx

import (
	"fmt"
	"strings"

	"github.com/neptune-labs/intents-portal/catalog"
	"github.com/neptune-labs/intents-portal/router"
	"github.com/shopspring/decimal"
)

// erc20TransferSelector is the 4-byte selector of transfer(address,uint256).
const erc20TransferSelector = "a9059cbb"

// BuildEVMDeposit constructs the unsigned EVM payload that sends tokenIn to
// the solver's deposit address on an EVM source chain. Tokens with a
// contract address are sent as an ERC-20 transfer call against the token
// contract; native assets as a plain value transfer to the deposit address.
// A from address that is not 0x-hex (a NEAR account id, say) is dropped so
// the wallet provider fills it from the connected account.
func BuildEVMDeposit(
	tokenIn catalog.TokenDescriptor,
	chainID int64,
	amount decimal.Decimal,
	depositAddress string,
	from string,
) EVMTransaction {
	if chainID <= 0 {
		panic(fmt.Sprintf("intenttx: invalid EVM chain id %d", chainID))
	}
	if depositAddress == "" {
		panic("intenttx: empty deposit address")
	}

	decimals := tokenIn.Decimals
	if decimals == 0 {
		decimals = 18
	}
	amountAtomic := router.ToAtomic(amount, decimals)

	if !strings.HasPrefix(from, "0x") {
		from = ""
	}

	if tokenIn.ContractAddress != "" {
		return EVMTransaction{
			ChainID: chainID,
			To:      tokenIn.ContractAddress,
			Value:   "0",
			Data:    encodeERC20Transfer(depositAddress, amountAtomic),
			From:    from,
		}
	}

	return EVMTransaction{
		ChainID: chainID,
		To:      depositAddress,
		Value:   amountAtomic,
		From:    from,
	}
}

// encodeERC20Transfer encodes transfer(address,uint256) call data: the
// selector followed by the recipient and amount, each left-padded to 32
// bytes.
func encodeERC20Transfer(to string, amountAtomic string) string {
	addr := strings.ToLower(strings.TrimPrefix(to, "0x"))
	amountHex := fmt.Sprintf("%x", router.MustAtomicInt(amountAtomic))
	return "0x" + erc20TransferSelector + pad32(addr) + pad32(amountHex)
}

func pad32(hexDigits string) string {
	const width = 64
	if len(hexDigits) >= width {
		return hexDigits[len(hexDigits)-width:]
	}
	return strings.Repeat("0", width-len(hexDigits)) + hexDigits
}
