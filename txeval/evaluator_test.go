package txeval

import (
	"errors"
	"testing"

	"github.com/tolelom/ledgercore/balance"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/internal/testutil"
)

func TestEvaluateTransactionCommitsOnSuccess(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	aliceCond := core.NewSignatureCondition("alice", core.BaseAsset, "")
	aliceRec := core.NewBalanceRecord(aliceCond)
	aliceRec.Balance = 1000
	if err := view.SetBalance(aliceRec); err != nil {
		t.Fatalf("seed alice balance: %v", err)
	}

	bobCond := core.NewSignatureCondition("bob", core.BaseAsset, "")

	tx := Transaction{
		ID:      "tx1",
		Signers: []core.Address{"alice"},
		Operations: []Operation{
			{Kind: OpWithdraw, Withdraw: &balance.WithdrawOp{BalanceID: aliceCond.BalanceID(), Amount: 1000}},
			{Kind: OpDeposit, Deposit: &balance.DepositOp{Condition: bobCond, Amount: 990}},
			{Kind: OpPayFee, PayFee: &balance.PayFeeOp{AssetID: core.BaseAsset, Amount: 10}},
		},
	}

	result, err := EvaluateTransaction(view, core.DefaultParams(), tx)
	if err != nil {
		t.Fatalf("EvaluateTransaction: %v", err)
	}
	if result.Fees[core.BaseAsset] != 10 {
		t.Fatalf("fee = %d, want 10", result.Fees[core.BaseAsset])
	}

	bobRec, found, err := view.GetBalance(bobCond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance(bob): found=%v err=%v", found, err)
	}
	if bobRec.Balance != 990 {
		t.Fatalf("bob balance = %d, want 990 (deposit must be committed)", bobRec.Balance)
	}
}

func TestEvaluateTransactionDiscardsOnFailure(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	cond := core.NewSignatureCondition("alice", core.BaseAsset, "")
	tx := Transaction{
		ID: "tx1",
		Operations: []Operation{
			{Kind: OpDeposit, Deposit: &balance.DepositOp{Condition: cond, Amount: 500}},
			{Kind: OpWithdraw, Withdraw: &balance.WithdrawOp{BalanceID: "does-not-exist", Amount: 1}},
		},
	}

	_, err := EvaluateTransaction(view, core.DefaultParams(), tx)
	if !errors.Is(err, core.NewError(core.KindUnknownBalanceRecord)) {
		t.Fatalf("err = %v, want KindUnknownBalanceRecord", err)
	}

	_, found, err := view.GetBalance(cond.BalanceID())
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if found {
		t.Fatal("deposit from a failed transaction must not be visible")
	}
}

func TestEvaluateTransactionFailsWhenDepositUnbackedByWithdrawal(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	cond := core.NewSignatureCondition("alice", core.BaseAsset, "")
	tx := Transaction{
		ID: "tx1",
		Operations: []Operation{
			{Kind: OpDeposit, Deposit: &balance.DepositOp{Condition: cond, Amount: 500}},
		},
	}

	_, err := EvaluateTransaction(view, core.DefaultParams(), tx)
	if !errors.Is(err, core.NewError(core.KindInsufficientFunds)) {
		t.Fatalf("err = %v, want KindInsufficientFunds (a deposit with no matching withdrawal creates funds from nothing)", err)
	}
}
