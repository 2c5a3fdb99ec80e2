package contracts

import "time"

// Quote 최신 시세 스냅샷
// Stale 은 읽는 시점에 계산되며 저장되지 않음
type Quote struct {
	Symbol         string    `json:"symbol"`
	LastPrice      float64   `json:"last_price"`
	ChangePercent  float64   `json:"change_percent"`
	ChangeAbsolute float64   `json:"change_absolute"`
	FetchedAt      time.Time `json:"fetched_at"`
	Stale          bool      `json:"stale"`
}

// ConnectivityStatus 시세 피드 연결 상태
type ConnectivityStatus string

const (
	StatusConnecting ConnectivityStatus = "connecting"
	StatusLive       ConnectivityStatus = "live"
	StatusError      ConnectivityStatus = "error"
)

// Code returns a numeric form for gauges
func (s ConnectivityStatus) Code() int {
	switch s {
	case StatusLive:
		return 1
	case StatusError:
		return 2
	default:
		return 0
	}
}

// FeedStatus aggregator state snapshot
type FeedStatus struct {
	Status                ConnectivityStatus `json:"status"`
	LastSuccessfulRefresh *time.Time         `json:"last_successful_refresh,omitempty"`
	RefreshInFlight       bool               `json:"refresh_in_flight"`
	QuoteCount            int                `json:"quote_count"`
}

// BoardRow 카탈로그 + 최신 시세 (시세 없으면 가격 0)
type BoardRow struct {
	Instrument
	LastPrice      float64    `json:"last_price"`
	ChangePercent  float64    `json:"change_percent"`
	ChangeAbsolute float64    `json:"change_absolute"`
	FetchedAt      *time.Time `json:"fetched_at,omitempty"`
	Stale          bool       `json:"stale"`
}

// HasQuote reports whether a live price is known for the row
func (r BoardRow) HasQuote() bool {
	return r.LastPrice > 0
}
