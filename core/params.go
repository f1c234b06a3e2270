package core

// Params carries the chain-wide constants that must match bit-exactly
// across every implementation; any divergence here produces chain forks.
type Params struct {
	MinYieldPeriod   int64       `json:"min_yield_period_sec"`
	MaxYieldPeriod   int64       `json:"max_yield_period_sec"`
	MaxSlateSize     int         `json:"max_slate_size"`
	VoteUpdatePeriod int64       `json:"vote_update_period_sec"`
	MaxShortPeriod   int64       `json:"max_short_period_sec"`
	Precision        uint64      `json:"precision"`
	MinBurnFee       ShareAmount `json:"min_burn_fee"`
	MaxShares        ShareAmount `json:"max_shares"`

	// YieldLinearShare and YieldQuadraticShare are the numerator/10
	// split of the yield curve: 80% linear, 20% quadratic.
	YieldLinearShare    uint64 `json:"yield_linear_share"`
	YieldQuadraticShare uint64 `json:"yield_quadratic_share"`
	// YieldScale is the fixed 10^6 factor the original scales amounts by
	// before dividing, the scaling that prevents truncation in the
	// intermediate 128-bit arithmetic.
	YieldScale uint64 `json:"yield_scale"`

	// CollateralRatio is the required collateral-to-debt ratio expressed
	// as a Precision-scaled fixed point (2x collateralisation by default).
	CollateralRatio uint64 `json:"collateral_ratio"`
	// OrdersFilledCap bounds a single matching round against pathological
	// books.
	OrdersFilledCap int `json:"orders_filled_cap"`

	// MarketFeeRatio is the exchange fee charged on a bid/ask execution's
	// quote amount, Precision-scaled and routed into the quote asset's
	// collected_fees.
	MarketFeeRatio uint64 `json:"market_fee_ratio"`
}

// DefaultParams returns the canonical mainnet constants.
func DefaultParams() Params {
	return Params{
		MinYieldPeriod:      60 * 60 * 24,       // 1 day
		MaxYieldPeriod:       60 * 60 * 24 * 365, // 1 year
		MaxSlateSize:         30,
		VoteUpdatePeriod:     60 * 60 * 24,       // 1 day
		MaxShortPeriod:       60 * 60 * 24 * 30,  // 30 days
		Precision:            100000000,          // 1e8 base units per coin unit
		MinBurnFee:           100000,             // 0.001 coin
		MaxShares:            1000000000000000,  // 1e15
		YieldLinearShare:     8,
		YieldQuadraticShare:  2,
		YieldScale:           1000000,
		CollateralRatio:      200000000, // 2x, scaled by Precision
		OrdersFilledCap:      10000,
		MarketFeeRatio:       200000, // 0.2%, scaled by Precision
	}
}

// Validate checks that every parameter is within a sane range. Non-goal
// fields like network ports do not belong here; this only guards the
// bit-exact ledger constants listed in the external-interfaces contract.
func (p Params) Validate() error {
	if p.MinYieldPeriod < 0 || p.MaxYieldPeriod <= p.MinYieldPeriod {
		return NewError(KindOverflow, "field", "yield_period", "min", p.MinYieldPeriod, "max", p.MaxYieldPeriod)
	}
	if p.MaxSlateSize <= 0 {
		return NewError(KindOverflow, "field", "max_slate_size", "value", p.MaxSlateSize)
	}
	if p.Precision == 0 {
		return NewError(KindOverflow, "field", "precision", "value", p.Precision)
	}
	if p.MaxShares <= 0 {
		return NewError(KindOverflow, "field", "max_shares", "value", p.MaxShares)
	}
	if p.YieldLinearShare+p.YieldQuadraticShare != 10 {
		return NewError(KindOverflow, "field", "yield_split", "linear", p.YieldLinearShare, "quadratic", p.YieldQuadraticShare)
	}
	if p.OrdersFilledCap <= 0 {
		return NewError(KindOverflow, "field", "orders_filled_cap", "value", p.OrdersFilledCap)
	}
	return nil
}
