package reward

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	TokenSymbol = "MEDALS"

	// side-chain token contract the instructions are addressed to
	TransferContractName   = "tokens"
	TransferContractAction = "transfer"
)

// TransferPayload is the side-chain token contract payload. Quantity is a
// fixed-point string with exactly 3 decimal places, the token's precision on
// the ledger; anything else is rejected by the contract.
type TransferPayload struct {
	Symbol   string `json:"symbol"`
	To       string `json:"to"`
	Quantity string `json:"quantity"`
	Memo     string `json:"memo"`
}

// TransferInstruction describes one token movement for the external
// broadcaster. Building it is pure; nothing here touches a ledger.
type TransferInstruction struct {
	ContractName    string          `json:"contractName"`
	ContractAction  string          `json:"contractAction"`
	ContractPayload TransferPayload `json:"contractPayload"`
}

// BalanceCheck is the result of the pre-flight solvency check.
type BalanceCheck struct {
	Valid     bool
	Shortfall decimal.Decimal
	Message   string
}

// FormatTokenQuantity renders an amount in the ledger wire format: exactly
// 3 decimal digits, never scientific notation.
func FormatTokenQuantity(amount decimal.Decimal) string {
	return amount.StringFixed(AmountPrecision)
}

// BuildRewardTransferOperations translates a staking distribution into
// transfer instructions. Entries with a zero or negative amount produce no
// instruction.
func BuildRewardTransferOperations(distributions []RewardDistribution, memo string) []TransferInstruction {
	var ops []TransferInstruction
	for _, d := range distributions {
		op, ok := BuildTransfer(d.Account, d.Amount, memo)
		if ok {
			ops = append(ops, op)
		}
	}
	return ops
}

// BuildCuratorRewardTransfer builds the author-payout instruction for one
// curator reward. ok is false when the amount is not positive.
func BuildCuratorRewardTransfer(author string, amount decimal.Decimal, curator string, permlink string) (TransferInstruction, bool) {
	memo := fmt.Sprintf("curator reward: vote by %s on @%s/%s", curator, author, permlink)
	return BuildTransfer(author, amount, memo)
}

// BuildTransfer builds one transfer instruction; ok is false when the amount
// is not positive, so zero rewards never reach the ledger.
func BuildTransfer(to string, amount decimal.Decimal, memo string) (TransferInstruction, bool) {
	if !amount.IsPositive() {
		return TransferInstruction{}, false
	}
	return TransferInstruction{
		ContractName:   TransferContractName,
		ContractAction: TransferContractAction,
		ContractPayload: TransferPayload{
			Symbol:   TokenSymbol,
			To:       to,
			Quantity: FormatTokenQuantity(amount),
			Memo:     memo,
		},
	}, true
}

// ValidateRewardsBalance checks whether the paying account can fund a payout
// round. It never consults a live balance, the caller supplies it; an
// insufficient balance is a structured outcome, not an error.
func ValidateRewardsBalance(available decimal.Decimal, required decimal.Decimal) BalanceCheck {
	if available.GreaterThanOrEqual(required) {
		return BalanceCheck{
			Valid:     true,
			Shortfall: decimal.Zero,
			Message: fmt.Sprintf("rewards account balance %s %s covers required %s %s",
				FormatTokenQuantity(available), TokenSymbol, FormatTokenQuantity(required), TokenSymbol),
		}
	}
	shortfall := required.Sub(available)
	return BalanceCheck{
		Valid:     false,
		Shortfall: shortfall,
		Message: fmt.Sprintf("rewards account balance %s %s is short %s %s of required %s %s",
			FormatTokenQuantity(available), TokenSymbol, FormatTokenQuantity(shortfall), TokenSymbol,
			FormatTokenQuantity(required), TokenSymbol),
	}
}
