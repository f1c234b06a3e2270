package balance

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/txstate"
)

// UpdateBalanceVoteOp is the update_balance_vote operation's input.
// RestrictedOwner, if non-empty, replaces the destination record's
// restricted owner; an empty value leaves it unset.
type UpdateBalanceVoteOp struct {
	BalanceID       core.BalanceID
	NewSlateID      core.SlateID
	RestrictedOwner core.Address
}

// UpdateBalanceVote moves a base-coin signature balance's full amount
// (minus a fixed fee of params.Precision/2) into a record carrying the
// same owner but a new slate, re-deriving the destination's deposit date
// as a share-weighted average. Only ever applies to base-coin signature
// balances.
//
// If the source record has a restricted owner and RestrictedOwner names
// that same address, the move additionally requires now-last_update >=
// params.VoteUpdatePeriod and accepts the restricted owner's signature
// alone. Any other case (no restricted owner on the source record, or a
// change of restricted owner) requires every owner implied by the
// condition to sign, with no cooldown.
func UpdateBalanceVote(view *chainstate.View, eval *txstate.State, params core.Params, op UpdateBalanceVoteOp) error {
	rec, found, err := view.GetBalance(op.BalanceID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownBalanceRecord, "balance_id", op.BalanceID)
	}
	if rec.Condition.AssetID != core.BaseAsset {
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "update_vote_requires_base_coin")
	}
	owner, ok := rec.Condition.Owner()
	if !ok {
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "update_vote_requires_signature_condition")
	}

	fee := core.ShareAmount(params.Precision / 2)
	if rec.Balance <= fee {
		return core.NewError(core.KindInsufficientFunds, "balance_id", op.BalanceID, "balance", rec.Balance, "fee", fee)
	}

	sameRestrictedOwner := (rec.RestrictedOwner == nil && op.RestrictedOwner == "") ||
		(rec.RestrictedOwner != nil && *rec.RestrictedOwner == op.RestrictedOwner)

	if sameRestrictedOwner && rec.RestrictedOwner != nil {
		if view.Now()-rec.LastUpdate < params.VoteUpdatePeriod {
			return core.NewError(core.KindMissingSignature, "reason", "vote_update_cooldown",
				"now", view.Now(), "last_update", rec.LastUpdate, "vote_update_period", params.VoteUpdatePeriod)
		}
		if !eval.CheckSignature(*rec.RestrictedOwner) {
			return core.NewError(core.KindMissingSignature, "owner", *rec.RestrictedOwner)
		}
	} else {
		for _, signer := range rec.Owners() {
			if !eval.CheckSignature(signer) {
				return core.NewError(core.KindMissingSignature, "owner", signer)
			}
		}
	}

	amount := rec.Balance - fee

	eval.AddBalance(rec.Condition.AssetID, fee)

	if rec.Condition.SlateID != "" {
		if err := eval.AdjustVote(view, rec.Condition.SlateID, -rec.Balance); err != nil {
			return err
		}
	}

	rec.Balance = 0
	rec.LastUpdate = view.Now()
	if err := view.SetBalance(rec); err != nil {
		return err
	}

	destCond := core.NewSignatureCondition(owner, core.BaseAsset, op.NewSlateID)
	destID := destCond.BalanceID()

	dest, found, err := view.GetBalance(destID)
	if err != nil {
		return err
	}
	if !found {
		dest = core.NewBalanceRecord(destCond)
	}

	if dest.Balance == 0 {
		dest.DepositDate = view.Now()
	} else {
		dest.DepositDate = weightedAverageDate(dest.DepositDate, dest.Balance, view.Now(), amount)
	}
	dest.Balance += amount
	dest.LastUpdate = view.Now()
	if op.RestrictedOwner != "" {
		restricted := op.RestrictedOwner
		dest.RestrictedOwner = &restricted
	} else {
		dest.RestrictedOwner = nil
	}

	if op.NewSlateID != "" {
		if err := eval.AdjustVote(view, op.NewSlateID, amount); err != nil {
			return err
		}
	}

	return view.SetBalance(dest)
}
