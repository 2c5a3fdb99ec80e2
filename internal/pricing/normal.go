package pricing

import "math"

// Abramowitz & Stegun 26.2.17, |error| < 7.5e-8
const (
	asP  = 0.2316419
	asB1 = 0.319381530
	asB2 = -0.356563782
	asB3 = 1.781477937
	asB4 = -1.821255978
	asB5 = 1.330274429
)

var invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)

// normPDF standard normal density
func normPDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

// normCDF standard normal distribution function.
// Negative arguments are reflected so that Φ(x) + Φ(-x) == 1 exactly.
func normCDF(x float64) float64 {
	// -0 는 x < 0 에 걸리지 않음
	if x == 0 {
		return 0.5
	}
	if x < 0 {
		return 1 - normCDF(-x)
	}
	t := 1 / (1 + asP*x)
	poly := t * (asB1 + t*(asB2+t*(asB3+t*(asB4+t*asB5))))
	return 1 - normPDF(x)*poly
}
