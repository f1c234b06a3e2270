package balance

import (
	"testing"

	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/internal/testutil"
	"github.com/tolelom/ledgercore/txstate"
)

func TestReleaseEscrowArbiterSplitsBetweenParties(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	cond := core.WithdrawCondition{
		Type:    core.ConditionEscrow,
		Escrow:  &core.EscrowCondition{Sender: "sender", Receiver: "receiver", Escrow: "arbiter"},
		AssetID: core.BaseAsset,
	}
	rec := core.NewBalanceRecord(cond)
	rec.Balance = 500
	if err := view.SetBalance(rec); err != nil {
		t.Fatalf("seed escrow balance: %v", err)
	}

	eval := txstate.New("tx1", []core.Address{"arbiter"})
	err := ReleaseEscrow(view, eval, ReleaseEscrowOp{
		EscrowBalanceID:  cond.BalanceID(),
		AmountToSender:   300,
		AmountToReceiver: 200,
		ReleasedBy:       "arbiter",
	})
	if err != nil {
		t.Fatalf("ReleaseEscrow: %v", err)
	}

	escrowRec, found, err := view.GetBalance(cond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance(escrow): found=%v err=%v", found, err)
	}
	if escrowRec.Balance != 0 {
		t.Fatalf("escrow balance = %d, want 0", escrowRec.Balance)
	}

	senderCond := core.NewSignatureCondition("sender", core.BaseAsset, "")
	senderRec, found, err := view.GetBalance(senderCond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance(sender): found=%v err=%v", found, err)
	}
	if senderRec.Balance != 300 {
		t.Fatalf("sender balance = %d, want 300", senderRec.Balance)
	}

	receiverCond := core.NewSignatureCondition("receiver", core.BaseAsset, "")
	receiverRec, found, err := view.GetBalance(receiverCond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance(receiver): found=%v err=%v", found, err)
	}
	if receiverRec.Balance != 200 {
		t.Fatalf("receiver balance = %d, want 200", receiverRec.Balance)
	}
}

func TestReleaseEscrowSenderCannotPaySelf(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	cond := core.WithdrawCondition{
		Type:    core.ConditionEscrow,
		Escrow:  &core.EscrowCondition{Sender: "sender", Receiver: "receiver", Escrow: "arbiter"},
		AssetID: core.BaseAsset,
	}
	rec := core.NewBalanceRecord(cond)
	rec.Balance = 500
	if err := view.SetBalance(rec); err != nil {
		t.Fatalf("seed escrow balance: %v", err)
	}

	eval := txstate.New("tx1", []core.Address{"sender"})
	err := ReleaseEscrow(view, eval, ReleaseEscrowOp{
		EscrowBalanceID:  cond.BalanceID(),
		AmountToSender:   50,
		AmountToReceiver: 0,
		ReleasedBy:       "sender",
	})
	if err == nil {
		t.Fatal("ReleaseEscrow: want error when sender-release pays the sender, got nil")
	}
}
