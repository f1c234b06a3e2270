package balance

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/crypto"
	"github.com/tolelom/ledgercore/txstate"
	"github.com/tolelom/ledgercore/yield"
)

// WithdrawOp is the withdraw operation's input. ClaimPreimage is only
// consulted for a password condition before its timeout.
type WithdrawOp struct {
	BalanceID     core.BalanceID
	Amount        core.ShareAmount
	ClaimPreimage []byte
}

// Withdraw subtracts Amount from the balance record keyed by BalanceID,
// after checking spendability, the freeze/restriction state of its asset,
// and the signature requirement implied by its condition tag.
func Withdraw(view *chainstate.View, eval *txstate.State, params core.Params, op WithdrawOp) error {
	if op.Amount <= 0 {
		return core.NewError(core.KindNegativeWithdraw, "amount", op.Amount)
	}

	rec, found, err := view.GetBalance(op.BalanceID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownBalanceRecord, "balance_id", op.BalanceID)
	}

	if rec.Condition.Type == core.ConditionEscrow {
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "escrow_requires_release_escrow")
	}

	if op.Amount > rec.GetSpendableBalance(view.Now()) {
		return core.NewError(core.KindInsufficientFunds, "balance_id", op.BalanceID, "amount", op.Amount)
	}

	assetRec, found, err := view.GetAsset(rec.Condition.AssetID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownAssetRecord, "asset_id", rec.Condition.AssetID)
	}

	issuerOverride := assetRec.IsRetractable() && eval.VerifyAuthority(assetRec.Authority)

	if !issuerOverride {
		if assetRec.IsBalanceFrozen() {
			return core.NewError(core.KindFrozenAsset, "asset_id", assetRec.ID)
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

		if err := checkWithdrawSignature(view, eval, rec.Condition, op.ClaimPreimage); err != nil {
			return err
		}
	}

	if rec.Condition.AssetID == core.BaseAsset && rec.Condition.SlateID != "" {
		if err := eval.AdjustVote(view, rec.Condition.SlateID, -op.Amount); err != nil {
			return err
		}
	}

	if assetRec.IsMarketIssued() {
		y := yield.Calculate(view.Now(), rec.Balance, assetRec.CollectedFees, assetRec.CurrentShareSupply, rec.DepositDate, params)
		if y > 0 {
			assetRec.CollectedFees -= y
			rec.Balance += y
			rec.DepositDate = view.Now()
			eval.Yield[rec.Condition.AssetID] += y
			if err := view.SetAsset(assetRec); err != nil {
				return err
			}
		}
	}

	rec.Balance -= op.Amount
	eval.AddBalance(rec.Condition.AssetID, op.Amount)
	rec.LastUpdate = view.Now()

	return view.SetBalance(rec)
}

// checkWithdrawSignature dispatches on the condition's tag, mirroring the
// original's switch over withdraw_condition_types. Escrow conditions are
// rejected outright: they are only legal through ReleaseEscrow.
func checkWithdrawSignature(view *chainstate.View, eval *txstate.State, cond core.WithdrawCondition, claimPreimage []byte) error {
	switch cond.Type {
	case core.ConditionSignature:
		owner := cond.Signature.Owner
		if !eval.CheckSignature(owner) {
			return core.NewError(core.KindMissingSignature, "owner", owner)
		}
		return nil

	case core.ConditionVesting:
		owner := cond.Vesting.Owner
		if !eval.CheckSignature(owner) {
			return core.NewError(core.KindMissingSignature, "owner", owner)
		}
		return nil

	case core.ConditionMultisig:
		var valid uint32
		for _, owner := range cond.Multisig.Owners {
			if eval.CheckSignature(owner) {
				valid++
			}
		}
		if valid < cond.Multisig.Required {
			return core.NewError(core.KindMissingSignature, "valid_signatures", valid, "required", cond.Multisig.Required)
		}
		return nil

	case core.ConditionPassword:
		p := cond.Password
		if view.Now() >= p.Timeout {
			if !eval.CheckSignature(p.Payor) {
				return core.NewError(core.KindMissingSignature, "owner", p.Payor)
			}
			return nil
		}
		if !eval.CheckSignature(p.Payee) {
			return core.NewError(core.KindMissingSignature, "owner", p.Payee)
		}
		if len(claimPreimage) == 0 {
			return core.NewError(core.KindInvalidClaimPassword, "reason", "no_preimage")
		}
		if crypto.Ripemd160Hex(claimPreimage) != p.PasswordHash {
			return core.NewError(core.KindInvalidClaimPassword, "reason", "hash_mismatch")
		}
		return nil

	case core.ConditionEscrow:
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "escrow_requires_release_escrow")

	default:
		return core.NewError(core.KindInvalidWithdrawCond, "condition", cond)
	}
}
