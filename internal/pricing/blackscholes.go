// Package pricing computes European option values and Greeks with the
// Black-Scholes-Merton model. All functions are pure.
package pricing

import (
	"math"

	"github.com/wonny/quantedge/internal/contracts"
)

const (
	daysPerYear = 365.0
	volPoint    = 100.0
)

// degenerate reports inputs for which the closed form is undefined
func degenerate(spot, strike, t, sigma float64) bool {
	for _, v := range []float64{spot, strike, t, sigma} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return true
		}
	}
	return false
}

func d1d2(spot, strike, rate, t, sigma float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (rate+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	return d1, d1 - sigma*sqrtT
}

// Price returns the fair value of a European option.
// t is in years. Degenerate inputs price at 0.
func Price(spot, strike, rate, t, sigma float64, kind contracts.OptionKind) float64 {
	if degenerate(spot, strike, t, sigma) {
		return 0
	}

	d1, d2 := d1d2(spot, strike, rate, t, sigma)
	discounted := strike * math.Exp(-rate*t)

	if kind == contracts.Put {
		return discounted*normCDF(-d2) - spot*normCDF(-d1)
	}
	return spot*normCDF(d1) - discounted*normCDF(d2)
}

// Greeks returns sensitivities: theta per calendar day (call side),
// vega per volatility point. Degenerate inputs yield {0.5, -0.5, 0, 0, 0}.
func Greeks(spot, strike, rate, t, sigma float64) contracts.Greeks {
	if degenerate(spot, strike, t, sigma) {
		return contracts.Greeks{DeltaCall: 0.5, DeltaPut: -0.5}
	}

	d1, d2 := d1d2(spot, strike, rate, t, sigma)
	sqrtT := math.Sqrt(t)
	pdf := normPDF(d1)
	nd1 := normCDF(d1)

	theta := (-(spot*pdf*sigma)/(2*sqrtT) - rate*strike*math.Exp(-rate*t)*normCDF(d2)) / daysPerYear

	return contracts.Greeks{
		DeltaCall: nd1,
		DeltaPut:  nd1 - 1,
		Gamma:     pdf / (spot * sigma * sqrtT),
		Theta:     theta,
		Vega:      spot * pdf * sqrtT / volPoint,
	}
}

// YearFraction converts calendar days to years
func YearFraction(days int) float64 {
	return float64(days) / daysPerYear
}

// Quote prices both sides of one strike for an expiry in calendar days
func Quote(spot, strike, rate float64, expiryDays int, sigma float64) contracts.OptionQuote {
	t := YearFraction(expiryDays)
	return contracts.OptionQuote{
		Strike:        strike,
		ExpiryDays:    expiryDays,
		Spot:          spot,
		CallPrice:     Price(spot, strike, rate, t, sigma, contracts.Call),
		PutPrice:      Price(spot, strike, rate, t, sigma, contracts.Put),
		Greeks:        Greeks(spot, strike, rate, t, sigma),
		ImpliedVolPct: math.Round(sigma*1000) / 10,
	}
}
