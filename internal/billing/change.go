package billing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/kasir-api/internal/domain"
)

// Change maps a denomination face value to the number of units dispensed.
type Change map[int64]int64

// MakeChange computes a greedy breakdown of balance into the available
// denominations, largest face value first. The balance is truncated toward
// zero to whole currency units before dispensing; the fractional part can
// never be represented by the till and is folded into the returned remainder.
//
// The second return value is the amount that could not be dispensed. It is
// zero on a full payout and positive when denomination supply ran short; a
// shortfall is a successful under-delivery, not an error.
//
// Greedy under bounded supply is an approximation: it is optimal for
// canonical currency systems with unlimited supply, but a short drawer can
// starve it into a worse or incomplete result than an exact solver would
// find. That behavior is intentional and kept as-is.
func MakeChange(balance decimal.Decimal, denominations []domain.Denomination) (Change, decimal.Decimal) {
	if balance.Sign() <= 0 {
		return Change{}, decimal.Zero
	}

	units := balance.IntPart()
	fraction := balance.Sub(decimal.NewFromInt(units))

	sorted := make([]domain.Denomination, len(denominations))
	copy(sorted, denominations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FaceValue > sorted[j].FaceValue })

	change := Change{}
	remaining := units
	for _, d := range sorted {
		if d.FaceValue <= 0 || d.AvailableCount <= 0 {
			continue
		}
		use := remaining / d.FaceValue
		if use > d.AvailableCount {
			use = d.AvailableCount
		}
		if use > 0 {
			change[d.FaceValue] = use
			remaining -= d.FaceValue * use
		}
	}
	return change, decimal.NewFromInt(remaining).Add(fraction)
}
