package market

import (
	"testing"

	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/internal/testutil"
)

const (
	quoteAsset core.AssetID = 1
	baseAsset  core.AssetID = 2
)

func TestRunRoundMatchesOrdinaryBidAndAsk(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: quoteAsset}); err != nil {
		t.Fatalf("seed quote asset: %v", err)
	}
	if err := view.SetAsset(&core.AssetRecord{ID: baseAsset}); err != nil {
		t.Fatalf("seed base asset: %v", err)
	}

	price := core.Price{Ratio: 100, Quote: quoteAsset, Base: baseAsset}

	askIdx := core.OrderIndexKey{Quote: quoteAsset, Base: baseAsset, Price: price, Owner: "asker"}
	if err := view.StoreOrder(&core.OrderRecord{Index: askIdx, Side: core.OrderAsk, Balance: 50}); err != nil {
		t.Fatalf("store ask: %v", err)
	}

	bidIdx := core.OrderIndexKey{Quote: quoteAsset, Base: baseAsset, Price: price, Owner: "bidder"}
	if err := view.StoreOrder(&core.OrderRecord{Index: bidIdx, Side: core.OrderBid, Balance: 50}); err != nil {
		t.Fatalf("store bid: %v", err)
	}

	params := core.DefaultParams()
	params.Precision = 100
	params.MarketFeeRatio = 0

	eng := NewEngine(params)
	trades, err := eng.RunRound(view, quoteAsset, baseAsset, 0, nil)
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("len(trades) = %d, want 1", len(trades))
	}
	tr := trades[0]
	if tr.Origin != core.OriginBidAsk {
		t.Fatalf("origin = %s, want bid_ask", tr.Origin)
	}
	if tr.BaseAmount != 50 || tr.QuoteAmount != 50 {
		t.Fatalf("trade amounts = (%d base, %d quote), want (50, 50)", tr.BaseAmount, tr.QuoteAmount)
	}

	askerCond := core.NewSignatureCondition("asker", quoteAsset, "")
	askerRec, found, err := view.GetBalance(askerCond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance(asker): found=%v err=%v", found, err)
	}
	if askerRec.Balance != 50 {
		t.Fatalf("asker quote balance = %d, want 50", askerRec.Balance)
	}

	bidderCond := core.NewSignatureCondition("bidder", baseAsset, "")
	bidderRec, found, err := view.GetBalance(bidderCond.BalanceID())
	if err != nil || !found {
		t.Fatalf("GetBalance(bidder): found=%v err=%v", found, err)
	}
	if bidderRec.Balance != 50 {
		t.Fatalf("bidder base balance = %d, want 50", bidderRec.Balance)
	}

	if ask, err := view.NextAsk(quoteAsset, baseAsset); err != nil || ask != nil {
		t.Fatalf("NextAsk after full match: %v, %v, want nil", ask, err)
	}
	if bid, err := view.NextBid(quoteAsset, baseAsset); err != nil || bid != nil {
		t.Fatalf("NextBid after full match: %v, %v, want nil", bid, err)
	}
}

func TestRunRoundNoTradeWhenBidBelowAsk(t *testing.T) {
	view := testutil.NewView(0)
	if err := view.SetAsset(&core.AssetRecord{ID: quoteAsset}); err != nil {
		t.Fatalf("seed quote asset: %v", err)
	}
	if err := view.SetAsset(&core.AssetRecord{ID: baseAsset}); err != nil {
		t.Fatalf("seed base asset: %v", err)
	}

	askPrice := core.Price{Ratio: 200, Quote: quoteAsset, Base: baseAsset}
	bidPrice := core.Price{Ratio: 100, Quote: quoteAsset, Base: baseAsset}

	askIdx := core.OrderIndexKey{Quote: quoteAsset, Base: baseAsset, Price: askPrice, Owner: "asker"}
	if err := view.StoreOrder(&core.OrderRecord{Index: askIdx, Side: core.OrderAsk, Balance: 50}); err != nil {
		t.Fatalf("store ask: %v", err)
	}
	bidIdx := core.OrderIndexKey{Quote: quoteAsset, Base: baseAsset, Price: bidPrice, Owner: "bidder"}
	if err := view.StoreOrder(&core.OrderRecord{Index: bidIdx, Side: core.OrderBid, Balance: 50}); err != nil {
		t.Fatalf("store bid: %v", err)
	}

	params := core.DefaultParams()
	params.Precision = 100

	eng := NewEngine(params)
	trades, err := eng.RunRound(view, quoteAsset, baseAsset, 0, nil)
	if err != nil {
		t.Fatalf("RunRound: %v", err)
	}
	if len(trades) != 0 {
		t.Fatalf("len(trades) = %d, want 0 (bid below ask)", len(trades))
	}
}
