package intenttx

import (
	"fmt"
	"regexp"
	"strings"
)

// Pre-sign safety checks. Built payloads are re-inspected structurally
// before they are handed to the wallet for signing; a payload that fails
// here must never reach the user.

var (
	nearAccountRe = regexp.MustCompile(`^[a-z0-9._-]+$`)
	evmAddressRe  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// CheckResult carries the outcome of a safety validation.
type CheckResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *CheckResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *CheckResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ValidateDepositBatch checks a NEAR transaction batch before signing.
func ValidateDepositBatch(batch []Transaction, depositAddress string) CheckResult {
	var result CheckResult

	if len(batch) == 0 {
		result.errorf("empty transaction batch, nothing to sign")
		result.Valid = false
		return result
	}

	for i, tx := range batch {
		prefix := fmt.Sprintf("tx[%d]", i)

		if tx.ReceiverID == "" {
			result.errorf("%s: missing receiver", prefix)
		} else if !nearAccountRe.MatchString(tx.ReceiverID) {
			result.errorf("%s: invalid receiver account %q", prefix, tx.ReceiverID)
		}

		if len(tx.Actions) == 0 {
			result.errorf("%s: no actions", prefix)
		}

		for j, action := range tx.Actions {
			actionPrefix := fmt.Sprintf("%s.action[%d]", prefix, j)

			if action.Type != "FunctionCall" {
				result.warnf("%s: unusual action type %q", actionPrefix, action.Type)
				continue
			}
			if action.Params.MethodName == "" {
				result.errorf("%s: FunctionCall with no method name", actionPrefix)
			}
			if action.Params.Gas == "" || action.Params.Gas == "0" {
				result.warnf("%s: zero gas attached to %s", actionPrefix, action.Params.MethodName)
			}

			// the routing leg must target the quote's deposit address
			if action.Params.MethodName == "mt_transfer" && depositAddress != "" {
				receiver, _ := action.Params.Args["receiver_id"].(string)
				if receiver != depositAddress {
					result.errorf("%s: mt_transfer receiver %q does not match deposit address %q",
						actionPrefix, receiver, depositAddress)
				}
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidateEVMDeposit checks an EVM deposit payload before signing.
func ValidateEVMDeposit(tx EVMTransaction, depositAddress string) CheckResult {
	var result CheckResult

	if tx.ChainID <= 0 {
		result.errorf("invalid chainId: %d", tx.ChainID)
	}
	if !evmAddressRe.MatchString(tx.To) {
		result.errorf("invalid 'to' address %q", tx.To)
	}
	if tx.From != "" && !evmAddressRe.MatchString(tx.From) {
		result.errorf("invalid 'from' address %q", tx.From)
	}

	if strings.HasPrefix(tx.Data, "0x"+erc20TransferSelector) {
		// ERC-20 transfer: the encoded recipient must be the deposit address
		// and 'to' must be the token contract, not the deposit address
		if len(tx.Data) >= 74 {
			// call data layout: 0x + 8 selector chars + 64-char padded
			// address; the address proper is the last 40 of those
			encoded := "0x" + tx.Data[34:74]
			if depositAddress != "" && !strings.EqualFold(encoded, depositAddress) {
				result.errorf("ERC-20 recipient %s does not match deposit address %s", encoded, depositAddress)
			}
			if strings.EqualFold(tx.To, depositAddress) {
				result.warnf("ERC-20 'to' equals the deposit address; expected the token contract")
			}
		} else {
			result.errorf("truncated ERC-20 transfer call data")
		}
	} else if tx.Data == "" || tx.Data == "0x" {
		// native transfer: funds go straight to the deposit address
		if depositAddress != "" && !strings.EqualFold(tx.To, depositAddress) {
			result.errorf("native transfer 'to' %s does not match deposit address %s", tx.To, depositAddress)
		}
		if tx.Value == "" || tx.Value == "0" {
			result.errorf("native transfer with zero value, no funds would move")
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}
