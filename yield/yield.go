// Package yield computes the accrued yield payable on withdrawal from a
// market-issued asset. It is a pure function: no state is read or
// written here, matching the original's balance_record::calculate_yield.
package yield

import (
	"github.com/holiman/uint256"
	"github.com/tolelom/ledgercore/core"
)

// Calculate returns the yield payable at now against amount (the balance
// being withdrawn from), given the asset's yield pool (collected fees),
// share supply, and the balance's deposit date, under params.
//
// Zero is returned whenever amount, yieldPool, or shareSupply is
// non-positive, when shareSupply == yieldPool (no circulating supply), or
// when the balance has aged no more than params.MinYieldPeriod. Otherwise
// the base yield amount*1e6*yieldPool/circulating is computed, then
// split 80% linear / 20% quadratic in elapsed time over MaxYieldPeriod
// for balances younger than that window, and divided back down by 1e6.
// All intermediates use 256-bit unsigned arithmetic — the numerator is at
// most MaxShares*1e6*MaxShares, which never overflows a 128-bit value,
// but uint256 is the fixed-width type already in use elsewhere in this
// module for the same class of promoted arithmetic.
func Calculate(now int64, amount, yieldPool, shareSupply core.ShareAmount, depositDate int64, params core.Params) core.ShareAmount {
	if amount <= 0 || shareSupply <= 0 || yieldPool <= 0 {
		return 0
	}

	circulating := shareSupply - yieldPool
	if circulating <= 0 {
		return 0
	}

	elapsed := now - depositDate
	if elapsed <= params.MinYieldPeriod {
		return 0
	}

	amountWithdrawn := uint256.NewInt(uint64(amount))
	amountWithdrawn.Mul(amountWithdrawn, uint256.NewInt(params.YieldScale))

	feeFund := uint256.NewInt(uint64(yieldPool))

	// numerator is at most MaxShares * YieldScale * MaxShares, which
	// cannot overflow.
	num := new(uint256.Int).Mul(amountWithdrawn, feeFund)
	total := new(uint256.Int).Div(num, uint256.NewInt(uint64(circulating)))

	if elapsed < params.MaxYieldPeriod {
		original := new(uint256.Int).Set(total)

		// discount to the linear share (80% by default)
		total.Mul(total, uint256.NewInt(params.YieldLinearShare))
		total.Div(total, uint256.NewInt(params.YieldLinearShare+params.YieldQuadraticShare))

		deltaYield := new(uint256.Int).Sub(original, total)

		elapsedU := uint256.NewInt(uint64(elapsed))
		periodU := uint256.NewInt(uint64(params.MaxYieldPeriod))

		total.Mul(total, elapsedU)
		total.Div(total, periodU)

		deltaYield.Mul(deltaYield, elapsedU)
		deltaYield.Div(deltaYield, periodU)
		deltaYield.Mul(deltaYield, elapsedU)
		deltaYield.Div(deltaYield, periodU)

		total.Add(total, deltaYield)
	}

	total.Div(total, uint256.NewInt(params.YieldScale))

	if total.IsZero() || total.Cmp(uint256.NewInt(uint64(yieldPool))) >= 0 {
		return 0
	}
	return core.ShareAmount(total.Uint64())
}
