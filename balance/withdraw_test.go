package balance

import (
	"errors"
	"testing"

	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/crypto"
	"github.com/tolelom/ledgercore/internal/testutil"
	"github.com/tolelom/ledgercore/txstate"
)

func TestWithdrawPasswordPastTimeoutRequiresPayor(t *testing.T) {
	view := testutil.NewView(200)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	preimage := []byte("secret")
	cond := core.WithdrawCondition{
		Type: core.ConditionPassword,
		Password: &core.PasswordCondition{
			Payor:        "payor",
			Payee:        "payee",
			Timeout:      100,
			PasswordHash: crypto.Ripemd160Hex(preimage),
		},
		AssetID: core.BaseAsset,
	}
	rec := core.NewBalanceRecord(cond)
	rec.Balance = 1000
	if err := view.SetBalance(rec); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	eval := txstate.New("tx1", []core.Address{"payee"})
	err := Withdraw(view, eval, core.DefaultParams(), WithdrawOp{
		BalanceID:     cond.BalanceID(),
		Amount:        100,
		ClaimPreimage: preimage,
	})
	if !errors.Is(err, core.NewError(core.KindMissingSignature)) {
		t.Fatalf("err = %v, want KindMissingSignature (payor required past timeout)", err)
	}
}

func TestWithdrawPasswordBeforeTimeoutAcceptsPayeeWithPreimage(t *testing.T) {
	view := testutil.NewView(50)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	preimage := []byte("secret")
	cond := core.WithdrawCondition{
		Type: core.ConditionPassword,
		Password: &core.PasswordCondition{
			Payor:        "payor",
			Payee:        "payee",
			Timeout:      100,
			PasswordHash: crypto.Ripemd160Hex(preimage),
		},
		AssetID: core.BaseAsset,
	}
	rec := core.NewBalanceRecord(cond)
	rec.Balance = 1000
	if err := view.SetBalance(rec); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	eval := txstate.New("tx1", []core.Address{"payee"})
	err := Withdraw(view, eval, core.DefaultParams(), WithdrawOp{
		BalanceID:     cond.BalanceID(),
		Amount:        100,
		ClaimPreimage: preimage,
	})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
}

func TestWithdrawEscrowBalanceAlwaysRejected(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	cond := core.WithdrawCondition{
		Type:    core.ConditionEscrow,
		Escrow:  &core.EscrowCondition{Sender: "s", Receiver: "r", Escrow: "e"},
		AssetID: core.BaseAsset,
	}
	rec := core.NewBalanceRecord(cond)
	rec.Balance = 500
	if err := view.SetBalance(rec); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	eval := txstate.New("tx1", []core.Address{"s", "r", "e"})
	err := Withdraw(view, eval, core.DefaultParams(), WithdrawOp{BalanceID: cond.BalanceID(), Amount: 100})
	if !errors.Is(err, core.NewError(core.KindInvalidWithdrawCond)) {
		t.Fatalf("err = %v, want KindInvalidWithdrawCond", err)
	}
}
