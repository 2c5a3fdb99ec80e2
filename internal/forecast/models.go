package forecast

import "math"

// ModelScorer reports a confidence percentage for one sub-model
type ModelScorer interface {
	Name() string
	Score(rnd Rand) int
}

// BandScorer reports a uniform draw inside a declared capability band
type BandScorer struct {
	Model string
	Min   float64
	Max   float64
}

// Name implements ModelScorer
func (b BandScorer) Name() string { return b.Model }

// Score implements ModelScorer
func (b BandScorer) Score(rnd Rand) int {
	return int(math.Round(b.Min + rnd.Float64()*(b.Max-b.Min)))
}

// DefaultModels sub-model bands in report order
func DefaultModels() []ModelScorer {
	return []ModelScorer{
		BandScorer{Model: "lstm", Min: 55, Max: 75},
		BandScorer{Model: "xgboost", Min: 55, Max: 75},
		BandScorer{Model: "prophet", Min: 50, Max: 70},
		BandScorer{Model: "transformer", Min: 60, Max: 78},
	}
}

// HeadlineConfidence band for the ensemble confidence
var HeadlineConfidence = BandScorer{Model: "ensemble", Min: 60, Max: 80}
