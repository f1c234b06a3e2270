package balance

import (
	"errors"
	"testing"

	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/internal/testutil"
	"github.com/tolelom/ledgercore/txstate"
)

func TestBurnBelowFloorRejected(t *testing.T) {
	view := testutil.NewView(0)
	params := core.DefaultParams()
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset, CurrentShareSupply: 1000000}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	eval := txstate.New("tx1", nil)

	err := Burn(view, eval, params, BurnOp{Amount: params.MinBurnFee - 1, AssetID: core.BaseAsset})
	if !errors.Is(err, core.NewError(core.KindInsufficientFunds)) {
		t.Fatalf("err = %v, want KindInsufficientFunds", err)
	}
}

func TestBurnAtFloorSucceedsAndDecrementsSupply(t *testing.T) {
	view := testutil.NewView(0)
	params := core.DefaultParams()
	if err := view.SetAsset(&core.AssetRecord{ID: core.BaseAsset, CurrentShareSupply: 1000000}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	eval := txstate.New("tx1", nil)

	if err := Burn(view, eval, params, BurnOp{Amount: params.MinBurnFee, AssetID: core.BaseAsset}); err != nil {
		t.Fatalf("Burn: %v", err)
	}

	rec, found, err := view.GetAsset(core.BaseAsset)
	if err != nil || !found {
		t.Fatalf("GetAsset: found=%v err=%v", found, err)
	}
	if rec.CurrentShareSupply != 1000000-params.MinBurnFee {
		t.Fatalf("share supply = %d, want %d", rec.CurrentShareSupply, 1000000-params.MinBurnFee)
	}
}

func TestBurnRejectsMarketIssuedAsset(t *testing.T) {
	view := testutil.NewView(0)
	params := core.DefaultParams()
	if err := view.SetAsset(&core.AssetRecord{ID: 9, CurrentShareSupply: 1000, Flags: core.AssetFlags{MarketIssued: true}}); err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	eval := txstate.New("tx1", nil)

	err := Burn(view, eval, params, BurnOp{Amount: 10, AssetID: 9})
	if !errors.Is(err, core.NewError(core.KindMarketIssuedRestricted)) {
		t.Fatalf("err = %v, want KindMarketIssuedRestricted", err)
	}
}
