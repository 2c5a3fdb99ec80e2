package contracts

// Instrument 카탈로그 종목 (시작 시 로드, 이후 불변)
type Instrument struct {
	Symbol  string  `json:"symbol" yaml:"symbol" validate:"required"`
	Name    string  `json:"name" yaml:"name" validate:"required"`
	Sector  string  `json:"sector" yaml:"sector" validate:"required"`
	IsIndex bool    `json:"is_index" yaml:"is_index"`
	IV      float64 `json:"iv" yaml:"iv" validate:"gt=0,lte=2"` // baseline implied volatility (annualized)
}
