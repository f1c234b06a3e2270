package txeval

import (
	"github.com/tolelom/ledgercore/balance"
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/events"
	"github.com/tolelom/ledgercore/txstate"
)

// EvaluateTransaction walks tx's operations in declared order through
// the balance package against a fresh overlay layered on top of view,
// then settles the accumulated funds in/out/fee/yield. On any failure
// the overlay is simply never committed, so the caller sees no partial
// writes; on success the overlay is committed into view's own store and
// the realised per-asset fee is returned.
func EvaluateTransaction(view *chainstate.View, params core.Params, tx Transaction) (*Result, error) {
	scoped, overlay := view.Overlay()
	eval := txstate.New(tx.ID, tx.Signers)

	for _, op := range tx.Operations {
		if err := dispatch(scoped, eval, params, op); err != nil {
			overlay.Discard()
			return nil, err
		}
	}

	fees, err := eval.Settle()
	if err != nil {
		overlay.Discard()
		return nil, err
	}

	if err := overlay.Commit(); err != nil {
		return nil, err
	}

	if tx.Emitter != nil {
		emitCommitted(tx.Emitter, tx, view.Now(), fees)
	}
	return &Result{Fees: fees}, nil
}

func emitCommitted(emitter *events.Emitter, tx Transaction, now int64, fees map[core.AssetID]core.ShareAmount) {
	for _, op := range tx.Operations {
		typ, ok := eventKind[op.Kind]
		if !ok {
			continue
		}
		emitter.Emit(events.Event{
			Type:      typ,
			TxID:      string(tx.ID),
			Timestamp: now,
			Data:      map[string]any{"fees": fees},
		})
	}
}

func dispatch(view *chainstate.View, eval *txstate.State, params core.Params, op Operation) error {
	switch op.Kind {
	case OpDeposit:
		if op.Deposit == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_deposit_operation")
		}
		return balance.Deposit(view, eval, *op.Deposit)

	case OpWithdraw:
		if op.Withdraw == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_withdraw_operation")
		}
		return balance.Withdraw(view, eval, params, *op.Withdraw)

	case OpBurn:
		if op.Burn == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_burn_operation")
		}
		return balance.Burn(view, eval, params, *op.Burn)

	case OpReleaseEscrow:
		if op.ReleaseEscrow == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_release_escrow_operation")
		}
		return balance.ReleaseEscrow(view, eval, *op.ReleaseEscrow)

	case OpUpdateBalanceVote:
		if op.UpdateBalanceVote == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_update_balance_vote_operation")
		}
		return balance.UpdateBalanceVote(view, eval, params, *op.UpdateBalanceVote)

	case OpDefineDelegateSlate:
		if op.DefineDelegateSlate == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_define_delegate_slate_operation")
		}
		return balance.DefineDelegateSlate(view, params, *op.DefineDelegateSlate)

	case OpPayFee:
		if op.PayFee == nil {
			return core.NewError(core.KindInvalidWithdrawCond, "reason", "missing_pay_fee_operation")
		}
		return balance.PayFee(eval, *op.PayFee)

	case OpOther:
		return nil

	default:
		return core.NewError(core.KindInvalidWithdrawCond, "reason", "unknown_operation_kind", "kind", op.Kind)
	}
}
