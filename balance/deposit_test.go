package balance

import (
	"errors"
	"testing"

	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/internal/testutil"
	"github.com/tolelom/ledgercore/txstate"
)

func TestDepositAveragesDepositDate(t *testing.T) {
	store := chainstate.NewMemStore()
	view0 := chainstate.NewView(store, 0)
	if err := view0.SetAsset(&core.AssetRecord{ID: core.BaseAsset}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	eval := txstate.New("tx1", nil)

	cond := core.NewSignatureCondition("alice", core.BaseAsset, "")

	if err := Deposit(view0, eval, DepositOp{Condition: cond, Amount: 100}); err != nil {
		t.Fatalf("first deposit: %v", err)
	}

	view1000 := chainstate.NewView(store, 1000)
	if err := Deposit(view1000, eval, DepositOp{Condition: cond, Amount: 300}); err != nil {
		t.Fatalf("second deposit: %v", err)
	}

	rec, found, err := view1000.GetBalance(cond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance: found=%v err=%v", found, err)
	}
	if rec.Balance != 400 {
		t.Fatalf("balance = %d, want 400", rec.Balance)
	}
	if rec.DepositDate != 750 {
		t.Fatalf("deposit_date = %d, want 750", rec.DepositDate)
	}
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	view := testutil.NewView(0)
	eval := txstate.New("tx1", nil)
	cond := core.NewSignatureCondition("alice", core.BaseAsset, "")

	err := Deposit(view, eval, DepositOp{Condition: cond, Amount: 0})
	if !errors.Is(err, core.NewError(core.KindNegativeDeposit)) {
		t.Fatalf("err = %v, want KindNegativeDeposit", err)
	}
}

func TestDepositRejectsSlateOnMarketIssuedAsset(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: 7, Flags: core.AssetFlags{MarketIssued: true}}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	eval := txstate.New("tx1", nil)
	cond := core.NewSignatureCondition("alice", 7, "some-slate")

	err := Deposit(view, eval, DepositOp{Condition: cond, Amount: 10})
	if !errors.Is(err, core.NewError(core.KindMarketIssuedRestricted)) {
		t.Fatalf("err = %v, want KindMarketIssuedRestricted", err)
	}
}
