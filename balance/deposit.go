// Package balance evaluates the deposit, withdraw, burn, release-escrow,
// update-vote, pay-fee, and define-delegate-slate operations against a
// pending chain-state view. All failures abort the enclosing transaction;
// no partial writes are visible because writes flow through the caller's
// overlay, dropped on error.
package balance

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/txstate"
)

// DepositOp is the deposit operation's input.
type DepositOp struct {
	Condition core.WithdrawCondition
	Amount    core.ShareAmount
}

// Deposit credits Amount to the balance keyed by Condition's content
// hash, creating the record on first deposit. The condition tag must be
// one of signature, vesting, multisig, or escrow.
func Deposit(view *chainstate.View, eval *txstate.State, op DepositOp) error {
	if op.Amount <= 0 {
		return core.NewError(core.KindNegativeDeposit, "amount", op.Amount)
	}

	switch op.Condition.Type {
	case core.ConditionSignature, core.ConditionVesting, core.ConditionMultisig, core.ConditionEscrow:
	default:
		return core.NewError(core.KindInvalidWithdrawCond, "condition", op.Condition)
	}

	depositBalanceID := op.Condition.BalanceID()

	rec, found, err := view.GetBalance(depositBalanceID)
	if err != nil {
		return err
	}
	if !found {
		rec = core.NewBalanceRecord(op.Condition)
		if op.Condition.Type == core.ConditionEscrow {
			rec.MetaData = &core.BalanceMetaData{CreatingTransactionID: eval.TxID}
		}
	}

	if rec.Balance == 0 {
		rec.DepositDate = view.Now()
	} else {
		rec.DepositDate = weightedAverageDate(rec.DepositDate, rec.Balance, view.Now(), op.Amount)
	}

	rec.Balance += op.Amount
	eval.SubBalance(op.Condition.AssetID, op.Amount)

	if op.Condition.AssetID == core.BaseAsset && op.Condition.SlateID != "" {
		if err := eval.AdjustVote(view, op.Condition.SlateID, op.Amount); err != nil {
			return err
		}
	}

	rec.LastUpdate = view.Now()

	assetRec, found, err := view.GetAsset(op.Condition.AssetID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownAssetRecord, "asset_id", op.Condition.AssetID)
	}

	if assetRec.IsMarketIssued() && op.Condition.SlateID != "" {
		return core.NewError(core.KindMarketIssuedRestricted, "reason", "market_issued_asset_cannot_carry_slate")
	}

	if assetRec.IsRestricted() {
		for _, owner := range rec.Owners() {
			ok, err := view.GetAuthorization(assetRec.ID, owner)
			if err != nil {
				return err
			}
			if !ok {
				return core.NewError(core.KindUnauthorisedOwner, "owner", owner, "asset_id", assetRec.ID)
			}
		}
	}

	return view.SetBalance(rec)
}

// weightedAverageDate returns the share-weighted average of (oldDate,
// oldBalance) and (newDate, newAmount): (oldDate*oldBalance +
// newDate*newAmount) / (oldBalance+newAmount). Promoted to 128-bit-safe
// arithmetic in the shared helper in math.go.
func weightedAverageDate(oldDate int64, oldBalance core.ShareAmount, newDate int64, newAmount core.ShareAmount) int64 {
	return weightedAverage(oldDate, oldBalance, newDate, newAmount)
}
