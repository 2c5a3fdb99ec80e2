package pricing

import "math"

const (
	// StrikeStep strike spacing used for ATM rounding and ladders
	StrikeStep = 50.0
	// LadderDepth strikes on each side of ATM
	LadderDepth = 4
)

// ExpiryPresets selectable expiries in calendar days
var ExpiryPresets = []int{7, 14, 30, 60, 90}

// ATMStrike rounds spot to the nearest StrikeStep
func ATMStrike(spot float64) float64 {
	if spot <= 0 || math.IsNaN(spot) {
		return 0
	}
	return math.Round(spot/StrikeStep) * StrikeStep
}

// StrikeLadder returns 2*LadderDepth+1 strikes centred on ATM, ascending.
// Non-positive strikes are dropped.
func StrikeLadder(spot float64) []float64 {
	atm := ATMStrike(spot)
	if atm <= 0 {
		return nil
	}

	strikes := make([]float64, 0, 2*LadderDepth+1)
	for i := -LadderDepth; i <= LadderDepth; i++ {
		k := atm + float64(i)*StrikeStep
		if k > 0 {
			strikes = append(strikes, k)
		}
	}
	return strikes
}
