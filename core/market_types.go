package core

// Price is a fixed-point exchange rate: Ratio units of Quote per one unit
// of Base, scaled by Precision. Comparing two Prices over the same
// (Quote, Base) pair is just comparing Ratio.
type Price struct {
	Ratio uint64  `json:"ratio"`
	Quote AssetID `json:"quote"`
	Base  AssetID `json:"base"`
}

// ScaledBy returns a new Price whose Ratio is p.Ratio*num/den, the
// operation minimum_ask uses to compute feed*0.9 (num=9, den=10) and the
// original's call-price scaling.
func (p Price) ScaledBy(num, den uint64) Price {
	return Price{Ratio: p.Ratio * num / den, Quote: p.Quote, Base: p.Base}
}

// Less reports whether p trades at a lower quote-per-base rate than o.
func (p Price) Less(o Price) bool { return p.Ratio < o.Ratio }

// QuoteAmount converts a base-asset quantity to its quote-asset value at
// this price, using Precision as the fixed-point scale.
func (p Price) QuoteAmount(base ShareAmount, precision uint64) ShareAmount {
	return ShareAmount(uint64(base) * p.Ratio / precision)
}

// BaseAmount converts a quote-asset quantity back to base at this price.
func (p Price) BaseAmount(quote ShareAmount, precision uint64) ShareAmount {
	if p.Ratio == 0 {
		return 0
	}
	return ShareAmount(uint64(quote) * precision / p.Ratio)
}

// OrderSide tags what kind of resting order an OrderRecord represents.
type OrderSide string

const (
	OrderAsk   OrderSide = "ask"
	OrderBid   OrderSide = "bid"
	OrderShort OrderSide = "short"
)

// OrderIndexKey is the (quote, base, price, owner) compound key orders and
// collateral are stored and iterated under.
type OrderIndexKey struct {
	Quote AssetID
	Base  AssetID
	Price Price
	Owner Address
}

// OrderRecord is a resting ask, bid, or short entry in the order book.
// ShortCollateral and ShortInterestRate are only meaningful when Side is
// OrderShort: the base-asset collateral the short owner has already
// pledged, and the APR they're willing to pay on the resulting debt.
type OrderRecord struct {
	Index             OrderIndexKey `json:"index"`
	Side              OrderSide     `json:"side"`
	Balance           ShareAmount   `json:"balance"` // quantity still resting
	ShortCollateral   ShareAmount   `json:"short_collateral,omitempty"`
	ShortInterestRate Price         `json:"short_interest_rate,omitempty"`
}

// CollateralState is the lifecycle stage of a CollateralRecord. Transitions
// happen only through the matching engine, never through direct balance
// operations.
type CollateralState string

const (
	CollateralOpen         CollateralState = "open"
	CollateralMarginCalled CollateralState = "margin_called"
	CollateralExpired      CollateralState = "expired"
	CollateralClosed       CollateralState = "closed"
)

// CollateralRecord backs a short position: CollateralBalance secures
// PayoffBalance debt at InterestRate until Expiration, or until margin
// called by the feed price crossing the call price.
type CollateralRecord struct {
	Index             OrderIndexKey   `json:"index"`
	CollateralBalance ShareAmount     `json:"collateral_balance"`
	PayoffBalance     ShareAmount     `json:"payoff_balance"`
	InterestRate      Price           `json:"interest_rate"` // APR, expressed as a Price ratio
	Expiration        int64           `json:"expiration"`
	State             CollateralState `json:"state"`
}

// CallPrice returns the price at which this collateral's value exactly
// covers its debt at the required collateral ratio (ratio expressed as a
// Price.Ratio-style fixed-point scale, e.g. 2x collateralisation = 2 *
// precision). The position is margin-called while this price is above
// the feed price.
func (c *CollateralRecord) CallPrice(requiredRatio, precision uint64) Price {
	if c.CollateralBalance == 0 {
		return Price{Quote: c.Index.Price.Quote, Base: c.Index.Price.Base}
	}
	ratio := uint64(c.PayoffBalance) * requiredRatio / uint64(c.CollateralBalance)
	return Price{Ratio: ratio, Quote: c.Index.Price.Quote, Base: c.Index.Price.Base}
}

// MarketOrigin tags which interaction produced a MarketTransaction.
type MarketOrigin string

const (
	OriginBidAsk   MarketOrigin = "bid_ask"
	OriginBidShort MarketOrigin = "bid_short"
	OriginCoverAsk MarketOrigin = "cover_ask"
	OriginCoverBid MarketOrigin = "cover_bid"
)

// MarketTransaction records one paired execution during a matching round.
type MarketTransaction struct {
	Origin      MarketOrigin `json:"origin"`
	BidOwner    Address      `json:"bid_owner"`
	AskOwner    Address      `json:"ask_owner"`
	BaseAmount  ShareAmount  `json:"base_amount"`
	QuoteAmount ShareAmount  `json:"quote_amount"`
	Fee         ShareAmount  `json:"fee"`
	Price       Price        `json:"price"`
}
