package contracts

// Forecast 앙상블 방향성 예측 결과 (요청마다 새로 계산)
type Forecast struct {
	Symbol       string          `json:"symbol,omitempty"`
	CurrentPrice float64         `json:"current_price"`
	Targets      ForecastTargets `json:"targets"`
	BullPct      int             `json:"bull_probability_pct"`
	BearPct      int             `json:"bear_probability_pct"`
	RSI          float64         `json:"rsi"`
	MACD         float64         `json:"macd"`
	Sentiment    string          `json:"sentiment"`
	Regime       string          `json:"regime"`
	Confidence   int             `json:"confidence_pct"`
	ModelScores  map[string]int  `json:"model_scores"`
	Levels       ForecastLevels  `json:"levels"`
	History      []float64       `json:"history"`
}

// ForecastTargets 기간별 목표가
type ForecastTargets struct {
	OneDay    float64 `json:"1d"`
	FiveDay   float64 `json:"5d"`
	ThirtyDay float64 `json:"30d"`
}

// ForecastLevels 표시용 가격 레벨 (소수 둘째 자리)
type ForecastLevels struct {
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
	StopLoss   float64 `json:"stop_loss"`
	Target     float64 `json:"target"`
}

// Direction summarizes the bull/bear split
func (f *Forecast) Direction() string {
	switch {
	case f.BullPct > f.BearPct:
		return "bullish"
	case f.BullPct < f.BearPct:
		return "bearish"
	default:
		return "neutral"
	}
}
