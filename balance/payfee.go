package balance

import (
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/txstate"
)

// PayFeeOp is the pay_fee operation's input: an explicit top-up of the
// transaction's fee budget for AssetID, independent of any balance
// movement.
type PayFeeOp struct {
	AssetID core.AssetID
	Amount  core.ShareAmount
}

// PayFee raises the transaction's allowed fee for AssetID by Amount. It
// never touches chain state directly; the evaluator's Settle call is
// what turns the accumulated max fee into an actual charge.
func PayFee(eval *txstate.State, op PayFeeOp) error {
	if op.Amount < 0 {
		return core.NewError(core.KindNegativeDeposit, "amount", op.Amount)
	}
	eval.MaxFee[op.AssetID] += op.Amount
	return nil
}
