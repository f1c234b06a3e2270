package balance

import (
	"github.com/holiman/uint256"
	"github.com/tolelom/ledgercore/core"
)

// weightedAverage computes (oldDate*oldBalance + newDate*newAmount) /
// (oldBalance+newAmount), the deposit-date share-weighted average every
// deposit and restricted-owner vote update re-derives. Promoted to
// 256-bit arithmetic the way the original promotes to fc::uint128.
func weightedAverage(oldDate int64, oldBalance core.ShareAmount, newDate int64, newAmount core.ShareAmount) int64 {
	oldSec := uint256.NewInt(uint64(oldDate))
	newSec := uint256.NewInt(uint64(newDate))

	avg := new(uint256.Int).Mul(oldSec, uint256.NewInt(uint64(oldBalance)))
	term2 := new(uint256.Int).Mul(newSec, uint256.NewInt(uint64(newAmount)))
	avg.Add(avg, term2)
	avg.Div(avg, uint256.NewInt(uint64(oldBalance+newAmount)))

	return int64(avg.Uint64())
}
