package contracts

// OptionKind call/put
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// Greeks 옵션 민감도
// Theta 는 달력일 기준, Vega 는 변동성 1%p 기준
type Greeks struct {
	DeltaCall float64 `json:"delta_call"`
	DeltaPut  float64 `json:"delta_put"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"`
	Vega      float64 `json:"vega"`
}

// OptionQuote 단일 행사가의 콜/풋 이론가
type OptionQuote struct {
	Symbol        string  `json:"symbol,omitempty"`
	Strike        float64 `json:"strike"`
	ExpiryDays    int     `json:"expiry_days"`
	Spot          float64 `json:"spot"`
	CallPrice     float64 `json:"call_price"`
	PutPrice      float64 `json:"put_price"`
	Greeks        Greeks  `json:"greeks"`
	ImpliedVolPct float64 `json:"implied_vol_pct"`
}

// Moneyness relative to spot for the call side
func (q OptionQuote) Moneyness() string {
	switch {
	case q.Spot <= 0:
		return "unknown"
	case q.Strike == q.Spot:
		return "ATM"
	case q.Strike < q.Spot:
		return "ITM"
	default:
		return "OTM"
	}
}

// OptionLadder 만기 하나에 대한 행사가 사다리
type OptionLadder struct {
	Symbol     string        `json:"symbol"`
	Spot       float64       `json:"spot"`
	ATMStrike  float64       `json:"atm_strike"`
	ExpiryDays int           `json:"expiry_days"`
	Rows       []OptionQuote `json:"rows"`
}
