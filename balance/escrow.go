package balance

import (
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/txstate"
)

// ReleaseEscrowOp is the release_escrow operation's input. ReleasedBy
// identifies which party is releasing; core.ZeroAddress means a mutual
// release requiring both sender and receiver signatures.
type ReleaseEscrowOp struct {
	EscrowBalanceID  core.BalanceID
	AmountToSender   core.ShareAmount
	AmountToReceiver core.ShareAmount
	ReleasedBy       core.Address
}

// ReleaseEscrow pays AmountToSender and AmountToReceiver out of the
// escrow balance at EscrowBalanceID, dispatching on ReleasedBy per the
// four-case table: sender-only (AmountToSender must be 0), receiver-only
// (AmountToReceiver must be 0), arbiter (either amount), or mutual (both
// sender and receiver sign, either amount).
func ReleaseEscrow(view *chainstate.View, eval *txstate.State, op ReleaseEscrowOp) error {
	if op.AmountToReceiver < 0 {
		return core.NewError(core.KindNegativeWithdraw, "amount_to_receiver", op.AmountToReceiver)
	}
	if op.AmountToSender < 0 {
		return core.NewError(core.KindNegativeWithdraw, "amount_to_sender", op.AmountToSender)
	}

	escrowRec, found, err := view.GetBalance(op.EscrowBalanceID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownBalanceRecord, "balance_id", op.EscrowBalanceID)
	}
	if escrowRec.Condition.Type != core.ConditionEscrow || escrowRec.Condition.Escrow == nil {
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "not_an_escrow_balance")
	}

	if !eval.CheckSignature(op.ReleasedBy) && op.ReleasedBy != core.ZeroAddress {
		return core.NewError(core.KindMissingSignature, "owner", op.ReleasedBy)
	}

	cond := *escrowRec.Condition.Escrow

	totalReleased := op.AmountToSender + op.AmountToReceiver
	if totalReleased < op.AmountToSender || totalReleased < op.AmountToReceiver {
		return core.NewError(core.KindOverflow, "reason", "release_addition_overflow")
	}
	if totalReleased > escrowRec.Balance {
		return core.NewError(core.KindInsufficientFunds, "balance_id", op.EscrowBalanceID, "total_released", totalReleased)
	}

	escrowRec.Balance -= totalReleased

	assetRec, found, err := view.GetAsset(escrowRec.Condition.AssetID)
	if err != nil {
		return err
	}
	if !found {
		return core.NewError(core.KindUnknownAssetRecord, "asset_id", escrowRec.Condition.AssetID)
	}
	if assetRec.IsRestricted() {
		ok, err := view.GetAuthorization(escrowRec.Condition.AssetID, cond.Receiver)
		if err != nil {
			return err
		}
		if !ok {
			return core.NewError(core.KindUnauthorisedOwner, "owner", cond.Receiver, "asset_id", escrowRec.Condition.AssetID)
		}
	}
	// Retractable-asset authority override bypasses the freeze check only;
	// unlike in Withdraw, it has no bearing on the signature requirements
	// below.
	issuerOverride := assetRec.IsRetractable() && eval.VerifyAuthority(assetRec.Authority)
	if !issuerOverride && assetRec.IsBalanceFrozen() {
		return core.NewError(core.KindFrozenAsset, "asset_id", assetRec.ID)
	}

	switch {
	case cond.Sender == op.ReleasedBy:
		if op.AmountToSender != 0 {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "sender_release_must_not_pay_sender")
		}
		if !eval.CheckSignature(cond.Sender) {
			return core.NewError(core.KindMissingSignature, "owner", cond.Sender)
		}
		if err := creditRecipient(view, escrowRec, cond.Receiver, op.AmountToReceiver); err != nil {
			return err
		}

	case cond.Receiver == op.ReleasedBy:
		if op.AmountToReceiver != 0 {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "receiver_release_must_not_pay_receiver")
		}
		if !eval.CheckSignature(cond.Receiver) {
			return core.NewError(core.KindMissingSignature, "owner", cond.Receiver)
		}
		if err := creditRecipient(view, escrowRec, cond.Sender, op.AmountToSender); err != nil {
			return err
		}

	case cond.Escrow == op.ReleasedBy:
		if !eval.CheckSignature(cond.Escrow) {
			return core.NewError(core.KindMissingSignature, "owner", cond.Escrow)
		}
		if err := creditRecipient(view, escrowRec, cond.Receiver, op.AmountToReceiver); err != nil {
			return err
		}
		if err := creditRecipient(view, escrowRec, cond.Sender, op.AmountToSender); err != nil {
			return err
		}

	case op.ReleasedBy == core.ZeroAddress:
		if !eval.CheckSignature(cond.Sender) {
			return core.NewError(core.KindMissingSignature, "owner", cond.Sender)
		}
		if !eval.CheckSignature(cond.Receiver) {
			return core.NewError(core.KindMissingSignature, "owner", cond.Receiver)
		}
		if err := creditRecipient(view, escrowRec, cond.Receiver, op.AmountToReceiver); err != nil {
			return err
		}
		if err := creditRecipient(view, escrowRec, cond.Sender, op.AmountToSender); err != nil {
			return err
		}

	default:
		return core.NewError(core.KindUnauthorisedOwner, "reason", "not_a_party_to_the_escrow", "released_by", op.ReleasedBy)
	}

	return view.SetBalance(escrowRec)
}

// creditRecipient looks up (or creates) the plain signature balance for
// recipient, preserving the escrow's slate id, and credits it by amount.
func creditRecipient(view *chainstate.View, escrowRec *core.BalanceRecord, recipient core.Address, amount core.ShareAmount) error {
	cond := core.NewSignatureCondition(recipient, escrowRec.Condition.AssetID, escrowRec.Condition.SlateID)
	target := cond.BalanceID()

	rec, found, err := view.GetBalance(target)
	if err != nil {
		return err
	}
	if !found {
		rec = core.NewBalanceRecord(cond)
	}
	rec.Balance += amount
	return view.SetBalance(rec)
}
