// Package market implements the continuous double-auction matching
// engine: one round pairs the order book's best bid against its best
// ask, repeatedly, until no further pairing is possible or the round's
// orders-filled cap is hit. Grounded on market_engine.hpp's method
// breakdown (get_next_bid/ask/ask_margin_call/ask_expired_cover,
// minimum_ask, get_current_cover_age, get_interest_paid/owed), with the
// control flow re-expressed as Go loops and typed candidates instead of
// the original's stateful btree iterators.
package market

import (
	"github.com/holiman/uint256"
	"github.com/tolelom/ledgercore/chainstate"
	"github.com/tolelom/ledgercore/core"
	"github.com/tolelom/ledgercore/events"
)

// Engine runs matching rounds for a fixed parameter set. Emitter is
// optional; when set, a round that commits trades publishes one
// EventMarketTrade per trade after the commit. The margin-call,
// expired-cover and collateral-closed events are published during the
// round as each transition is observed, before the commit, including in
// a round that commits nothing.
type Engine struct {
	params  core.Params
	emitter *events.Emitter
}

// NewEngine builds an Engine bound to params (the collateral ratio,
// orders-filled cap, and market fee ratio it trades against).
func NewEngine(params core.Params) *Engine {
	return &Engine{params: params}
}

// WithEmitter attaches emitter to e and returns e for chaining.
func (e *Engine) WithEmitter(emitter *events.Emitter) *Engine {
	e.emitter = emitter
	return e
}

// askKind tags which of the three ask streams a candidate came from.
type askKind int

const (
	askOrdinary askKind = iota
	askMarginCall
	askExpiredCover
)

type askCandidate struct {
	kind   askKind
	price  core.Price
	owner  core.Address
	order  *core.OrderRecord
	collat *core.CollateralRecord
}

// bidKind tags which of the two bid streams a candidate came from.
type bidKind int

const (
	bidOrdinary bidKind = iota
	bidShort
)

type bidCandidate struct {
	kind  bidKind
	price core.Price
	owner core.Address
	order *core.OrderRecord
}

// RunRound matches (quote, base) at block timestamp now until the book
// is exhausted at the current prices or orders-filled is capped. feed
// may be nil, in which case the short and margin-call/expired-cover ask
// streams are disabled entirely (spec: "if no feed exists, short and
// margin-call paths are disabled"). Returns every market transaction
// produced, or an error if a chain-state read/write failed (in which
// case nothing from this round is committed).
func (e *Engine) RunRound(view *chainstate.View, quote, base core.AssetID, now int64, feed *core.Price) ([]core.MarketTransaction, error) {
	scoped, overlay := view.Overlay()

	var trades []core.MarketTransaction
	ordersFilled := 0

	for ordersFilled < e.params.OrdersFilledCap {
		ask, err := e.nextAsk(scoped, quote, base, now, feed)
		if err != nil {
			return nil, err
		}
		bid, err := e.nextBid(scoped, quote, base, feed)
		if err != nil {
			return nil, err
		}
		if ask == nil || bid == nil {
			break
		}
		if bid.price.Ratio < ask.price.Ratio {
			break
		}

		price := ask.price

		askBase := askAvailable(ask)
		bidBase := price.BaseAmount(bidAvailable(bid), e.params.Precision)
		tradeBase := askBase
		if bidBase < tradeBase {
			tradeBase = bidBase
		}
		if tradeBase <= 0 {
			break
		}
		tradeQuote := price.QuoteAmount(tradeBase, e.params.Precision)
		if tradeQuote <= 0 {
			break
		}

		mtrx := core.MarketTransaction{
			BidOwner:    bid.owner,
			AskOwner:    ask.owner,
			BaseAmount:  tradeBase,
			QuoteAmount: tradeQuote,
			Price:       price,
		}

		switch {
		case ask.kind == askOrdinary && bid.kind == bidOrdinary:
			mtrx.Origin = core.OriginBidAsk
		case ask.kind == askOrdinary && bid.kind == bidShort:
			mtrx.Origin = core.OriginBidShort
		case ask.kind != askOrdinary && bid.kind == bidOrdinary:
			mtrx.Origin = core.OriginCoverBid
		default:
			mtrx.Origin = core.OriginCoverAsk
		}

		fee, err := e.settleAsk(scoped, quote, base, now, ask, tradeBase, tradeQuote)
		if err != nil {
			return nil, err
		}
		mtrx.Fee = fee

		if err := e.settleBid(scoped, quote, base, now, bid, tradeBase, tradeQuote); err != nil {
			return nil, err
		}

		trades = append(trades, mtrx)
		ordersFilled++
	}

	if len(trades) == 0 {
		overlay.Discard()
		return nil, nil
	}

	if err := recordHistory(scoped, quote, base, now, trades); err != nil {
		return nil, err
	}

	if err := overlay.Commit(); err != nil {
		return nil, err
	}

	if e.emitter != nil {
		for _, t := range trades {
			e.emitter.Emit(events.Event{
				Type:      events.EventMarketTrade,
				Timestamp: now,
				Data: map[string]any{
					"quote":        quote,
					"base":         base,
					"origin":       t.Origin,
					"base_amount":  t.BaseAmount,
					"quote_amount": t.QuoteAmount,
					"fee":          t.Fee,
				},
			})
		}
	}
	return trades, nil
}

func askAvailable(a *askCandidate) core.ShareAmount {
	if a.order != nil {
		return a.order.Balance
	}
	return a.collat.CollateralBalance
}

func bidAvailable(b *bidCandidate) core.ShareAmount {
	return b.order.Balance
}

// minimumAsk is feed scaled by 0.9: asks below this are ignored on the
// cover/call synthetic-ask paths to prevent below-floor execution.
func minimumAsk(feed core.Price) core.Price {
	return feed.ScaledBy(9, 10)
}

func (e *Engine) nextAsk(view *chainstate.View, quote, base core.AssetID, now int64, feed *core.Price) (*askCandidate, error) {
	var best *askCandidate

	ordinary, err := view.NextAsk(quote, base)
	if err != nil {
		return nil, err
	}
	if ordinary != nil {
		best = &askCandidate{kind: askOrdinary, price: ordinary.Index.Price, owner: ordinary.Index.Owner, order: ordinary}
	}

	if feed == nil {
		return best, nil
	}
	floor := minimumAsk(*feed)

	collats, err := view.AllCollateral(quote, base)
	if err != nil {
		return nil, err
	}

	var marginCall *core.CollateralRecord
	for _, c := range collats {
		if c.CollateralBalance <= 0 || c.PayoffBalance <= 0 {
			continue
		}
		if c.State != core.CollateralOpen && c.State != core.CollateralMarginCalled {
			continue
		}
		callPrice := c.CallPrice(e.params.CollateralRatio, e.params.Precision)
		if callPrice.Ratio <= feed.Ratio {
			continue
		}
		if c.State == core.CollateralOpen {
			c.State = core.CollateralMarginCalled
			if err := view.StoreCollateral(c); err != nil {
				return nil, err
			}
			if e.emitter != nil {
				e.emitter.Emit(events.Event{Type: events.EventCollateralMarginCalled, Timestamp: now, Data: map[string]any{"owner": c.Index.Owner, "quote": quote, "base": base}})
			}
		}
		if marginCall == nil || callPrice.Ratio < marginCall.CallPrice(e.params.CollateralRatio, e.params.Precision).Ratio {
			marginCall = c
		}
	}
	if marginCall != nil {
		price := marginCall.CallPrice(e.params.CollateralRatio, e.params.Precision)
		if price.Ratio >= floor.Ratio && (best == nil || price.Ratio < best.price.Ratio) {
			best = &askCandidate{kind: askMarginCall, price: price, owner: marginCall.Index.Owner, collat: marginCall}
		}
	}

	var expired *core.CollateralRecord
	for _, c := range collats {
		if c.CollateralBalance <= 0 || c.PayoffBalance <= 0 {
			continue
		}
		if c.State != core.CollateralOpen && c.State != core.CollateralMarginCalled && c.State != core.CollateralExpired {
			continue
		}
		if c.Expiration > now {
			continue
		}
		if c.State != core.CollateralExpired {
			c.State = core.CollateralExpired
			if err := view.StoreCollateral(c); err != nil {
				return nil, err
			}
			if e.emitter != nil {
				e.emitter.Emit(events.Event{Type: events.EventCollateralExpired, Timestamp: now, Data: map[string]any{"owner": c.Index.Owner, "quote": quote, "base": base}})
			}
		}
		if expired == nil || c.Expiration < expired.Expiration {
			expired = c
		}
	}
	if expired != nil {
		price := *feed
		if price.Ratio >= floor.Ratio && (best == nil || price.Ratio < best.price.Ratio) {
			best = &askCandidate{kind: askExpiredCover, price: price, owner: expired.Index.Owner, collat: expired}
		}
	}

	return best, nil
}

func (e *Engine) nextBid(view *chainstate.View, quote, base core.AssetID, feed *core.Price) (*bidCandidate, error) {
	var best *bidCandidate

	ordinary, err := view.NextBid(quote, base)
	if err != nil {
		return nil, err
	}
	if ordinary != nil {
		best = &bidCandidate{kind: bidOrdinary, price: ordinary.Index.Price, owner: ordinary.Index.Owner, order: ordinary}
	}

	if feed == nil {
		return best, nil
	}

	short, err := view.NextShort(quote, base)
	if err != nil {
		return nil, err
	}
	if short != nil {
		price := short.Index.Price
		if price.Ratio > feed.Ratio {
			price = *feed
		}
		if best == nil || price.Ratio > best.price.Ratio {
			best = &bidCandidate{kind: bidShort, price: price, owner: short.Index.Owner, order: short}
		}
	}

	return best, nil
}

// settleAsk pays out (or releases) the ask side of a trade and returns
// the fee retained: the market fee on an ordinary ask, or the interest
// leg of a cover payoff.
func (e *Engine) settleAsk(view *chainstate.View, quote, base core.AssetID, now int64, ask *askCandidate, tradeBase, tradeQuote core.ShareAmount) (core.ShareAmount, error) {
	quoteAsset, found, err := view.GetAsset(quote)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, core.NewError(core.KindUnknownAssetRecord, "asset_id", quote)
	}

	if ask.order != nil {
		fee := core.ShareAmount(uint64(tradeQuote) * e.params.MarketFeeRatio / e.params.Precision)
		quoteAsset.CollectedFees += fee
		if err := view.SetAsset(quoteAsset); err != nil {
			return 0, err
		}
		if err := creditOwner(view, ask.owner, quote, tradeQuote-fee); err != nil {
			return 0, err
		}

		ask.order.Balance -= tradeBase
		if ask.order.Balance <= 0 {
			if err := view.DeleteOrder(ask.order.Index); err != nil {
				return 0, err
			}
		} else if err := view.StoreOrder(ask.order); err != nil {
			return 0, err
		}
		return fee, nil
	}

	collat := ask.collat
	age := GetCurrentCoverAge(collat.Expiration, now, e.params.MaxShortPeriod)
	principal, interest := GetInterestPaid(tradeQuote, collat.PayoffBalance, collat.InterestRate, age, e.params.Precision)

	quoteAsset.CollectedFees += interest
	if err := view.SetAsset(quoteAsset); err != nil {
		return 0, err
	}

	collat.PayoffBalance -= principal
	collat.CollateralBalance -= tradeBase

	if collat.PayoffBalance <= 0 || collat.CollateralBalance <= 0 {
		collat.State = core.CollateralClosed
		residual := collat.CollateralBalance
		collat.CollateralBalance = 0
		if residual > 0 {
			if err := creditOwner(view, collat.Index.Owner, base, residual); err != nil {
				return 0, err
			}
		}
		if err := view.DeleteCollateral(collat.Index); err != nil {
			return 0, err
		}
		if e.emitter != nil {
			e.emitter.Emit(events.Event{Type: events.EventCollateralClosed, Timestamp: now, Data: map[string]any{"owner": collat.Index.Owner, "quote": quote, "base": base}})
		}
	} else if err := view.StoreCollateral(collat); err != nil {
		return 0, err
	}

	return interest, nil
}

// settleBid pays out the bid side of a trade: an ordinary bid simply
// receives the base purchased, while a short creates (or tops up) a
// collateral record securing the debt it just took on.
func (e *Engine) settleBid(view *chainstate.View, quote, base core.AssetID, now int64, bid *bidCandidate, tradeBase, tradeQuote core.ShareAmount) error {
	if bid.kind == bidOrdinary {
		if err := creditOwner(view, bid.owner, base, tradeBase); err != nil {
			return err
		}
		bid.order.Balance -= tradeQuote
		if bid.order.Balance <= 0 {
			return view.DeleteOrder(bid.order.Index)
		}
		return view.StoreOrder(bid.order)
	}

	short := bid.order
	priorBalance := short.Balance
	var collatSlice core.ShareAmount
	if priorBalance > 0 {
		slice := new(uint256.Int).SetUint64(uint64(short.ShortCollateral))
		slice.Mul(slice, uint256.NewInt(uint64(tradeQuote)))
		slice.Div(slice, uint256.NewInt(uint64(priorBalance)))
		collatSlice = core.ShareAmount(slice.Uint64())
	}
	if collatSlice > short.ShortCollateral {
		collatSlice = short.ShortCollateral
	}

	idx := core.OrderIndexKey{Quote: quote, Base: base, Price: short.Index.Price, Owner: short.Index.Owner}
	existing, found, err := findCollateral(view, quote, base, idx.Owner)
	if err != nil {
		return err
	}
	if found && existing.State == core.CollateralOpen {
		existing.CollateralBalance += tradeBase + collatSlice
		existing.PayoffBalance += tradeQuote
		existing.InterestRate = short.ShortInterestRate
		existing.Expiration = now + e.params.MaxShortPeriod
		if err := view.StoreCollateral(existing); err != nil {
			return err
		}
	} else {
		rec := &core.CollateralRecord{
			Index:             idx,
			CollateralBalance: tradeBase + collatSlice,
			PayoffBalance:     tradeQuote,
			InterestRate:      short.ShortInterestRate,
			Expiration:        now + e.params.MaxShortPeriod,
			State:             core.CollateralOpen,
		}
		if err := view.StoreCollateral(rec); err != nil {
			return err
		}
	}

	short.ShortCollateral -= collatSlice
	short.Balance -= tradeQuote
	if short.Balance <= 0 || short.ShortCollateral <= 0 {
		return view.DeleteOrder(short.Index)
	}
	return view.StoreOrder(short)
}

// creditOwner credits amount of assetID into owner's plain signature
// balance, creating it on first use.
func creditOwner(view *chainstate.View, owner core.Address, assetID core.AssetID, amount core.ShareAmount) error {
	if amount <= 0 {
		return nil
	}
	cond := core.NewSignatureCondition(owner, assetID, "")
	rec, found, err := view.GetBalance(cond.BalanceID())
	if err != nil {
		return err
	}
	if !found {
		rec = core.NewBalanceRecord(cond)
	}
	rec.Balance += amount
	return view.SetBalance(rec)
}

func findCollateral(view *chainstate.View, quote, base core.AssetID, owner core.Address) (*core.CollateralRecord, bool, error) {
	all, err := view.AllCollateral(quote, base)
	if err != nil {
		return nil, false, err
	}
	for _, c := range all {
		if c.Index.Owner == owner {
			return c, true, nil
		}
	}
	return nil, false, nil
}

func recordHistory(view *chainstate.View, quote, base core.AssetID, now int64, trades []core.MarketTransaction) error {
	entry := core.MarketHistoryEntry{
		Quote:     quote,
		Base:      base,
		Timestamp: now,
		Open:      trades[0].Price,
		Close:     trades[len(trades)-1].Price,
		High:      trades[0].Price,
		Low:       trades[0].Price,
	}
	for _, t := range trades {
		if t.Price.Ratio > entry.High.Ratio {
			entry.High = t.Price
		}
		if t.Price.Ratio < entry.Low.Ratio {
			entry.Low = t.Price
		}
		entry.Volume += t.BaseAmount
	}
	return view.AppendMarketHistory(entry)
}
