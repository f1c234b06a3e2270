package market

import (
	"github.com/holiman/uint256"
	"github.com/tolelom/ledgercore/core"
)

// GetInterestOwed returns the interest accrued on principle at apr over
// ageSeconds, pro-rated linearly against a 365-day year: principle * apr
// * ageSeconds / (365*86400), Precision-scaled by apr.Ratio.
func GetInterestOwed(principle core.ShareAmount, apr core.Price, ageSeconds int64, precision uint64) core.ShareAmount {
	if principle <= 0 || ageSeconds <= 0 {
		return 0
	}
	const secondsPerYear = 365 * 24 * 60 * 60

	owed := uint256.NewInt(uint64(principle))
	owed.Mul(owed, uint256.NewInt(apr.Ratio))
	owed.Mul(owed, uint256.NewInt(uint64(ageSeconds)))
	owed.Div(owed, uint256.NewInt(uint64(precision)))
	owed.Div(owed, uint256.NewInt(secondsPerYear))
	return core.ShareAmount(owed.Uint64())
}

// GetInterestPaid splits totalAmountPaid into (principal, interest) given
// the debt's apr and age: the interest leg is get_interest_owed capped at
// the amount actually paid, with whatever remains applied to principal.
func GetInterestPaid(totalAmountPaid, principle core.ShareAmount, apr core.Price, ageSeconds int64, precision uint64) (principal, interest core.ShareAmount) {
	owed := GetInterestOwed(principle, apr, ageSeconds, precision)
	if owed > totalAmountPaid {
		owed = totalAmountPaid
	}
	return totalAmountPaid - owed, owed
}

// GetCurrentCoverAge returns the position's age in seconds: total lifetime
// (maxShortPeriod) minus remaining lifetime (expiration - now).
func GetCurrentCoverAge(expiration, now, maxShortPeriod int64) int64 {
	remaining := expiration - now
	age := maxShortPeriod - remaining
	if age < 0 {
		return 0
	}
	return age
}
