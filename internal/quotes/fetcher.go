package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/config"
	"github.com/wonny/quantedge/pkg/httputil"
	"github.com/wonny/quantedge/pkg/logger"
)

// Fetcher loads one batch of quotes from the market-data provider.
// Errors wrap contracts.ErrNetworkTimeout or contracts.ErrNetworkError.
type Fetcher interface {
	FetchBatch(ctx context.Context, symbols []string) (map[string]contracts.Quote, error)
}

// HTTPFetcher calls GET {base}/bulk?symbols=A,B,C
type HTTPFetcher struct {
	client  *httputil.Client
	baseURL string
	logger  *logger.Logger
	now     func() time.Time
}

// bulkResponse is the provider's /bulk body
type bulkResponse struct {
	Data      map[string]bulkQuote `json:"data"`
	Cached    bool                 `json:"cached"`
	Count     int                  `json:"count"`
	UpdatedAt string               `json:"updated_at"`
}

type bulkQuote struct {
	Sym       string  `json:"sym"`
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	UpdatedAt string  `json:"updated_at"`
}

// NewHTTPFetcher creates a fetcher without retries.
// 실패한 배치는 다음 사이클에서 다시 시도됨
func NewHTTPFetcher(cfg *config.Config, log *logger.Logger) *HTTPFetcher {
	client := httputil.NewWithTimeout(cfg, log, cfg.Quotes.BatchTimeout).
		DisableRetry().
		WithRateLimit(cfg.Quotes.RatePerMinute)

	return &HTTPFetcher{
		client:  client,
		baseURL: strings.TrimRight(cfg.Quotes.BaseURL, "/"),
		logger:  log,
		now:     time.Now,
	}
}

// FetchBatch requests one batch. Symbols missing from the response are simply absent.
func (f *HTTPFetcher) FetchBatch(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	if len(symbols) == 0 {
		return map[string]contracts.Quote{}, nil
	}
	if len(symbols) > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d exceeds %d symbols", contracts.ErrInvalidArgument, len(symbols), MaxBatchSize)
	}

	query := url.Values{"symbols": {strings.Join(symbols, ",")}}
	endpoint := f.baseURL + "/bulk?" + query.Encode()

	var body bulkResponse
	if err := f.client.GetJSON(ctx, endpoint, &body); err != nil {
		return nil, classify(ctx, err)
	}

	wanted := make(map[string]string, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(s)] = s
	}

	fetchedAt := f.now()
	out := make(map[string]contracts.Quote, len(body.Data))
	for key, q := range body.Data {
		symbol, ok := wanted[strings.ToUpper(key)]
		if !ok {
			continue
		}
		if q.Price < 0 {
			f.logger.WithField("symbol", symbol).Warn("Provider returned negative price, skipped")
			continue
		}
		out[symbol] = contracts.Quote{
			Symbol:         symbol,
			LastPrice:      q.Price,
			ChangePercent:  q.ChangePct,
			ChangeAbsolute: q.Change,
			FetchedAt:      fetchedAt,
		}
	}

	f.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"received":  len(out),
		"cached":    body.Cached,
	}).Debug("Quote batch fetched")

	return out, nil
}

// classify maps transport errors onto the batch error taxonomy
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, contracts.ErrNetworkTimeout), errors.Is(err, contracts.ErrNetworkError):
		return err
	case errors.Is(err, context.DeadlineExceeded), ctx.Err() == context.DeadlineExceeded:
		return fmt.Errorf("%w: %v", contracts.ErrNetworkTimeout, err)
	default:
		var netTimeout interface{ Timeout() bool }
		if errors.As(err, &netTimeout) && netTimeout.Timeout() {
			return fmt.Errorf("%w: %v", contracts.ErrNetworkTimeout, err)
		}
		return fmt.Errorf("%w: %v", contracts.ErrNetworkError, err)
	}
}

// errorKind labels a batch error for logs and metrics
func errorKind(err error) string {
	if errors.Is(err, contracts.ErrNetworkTimeout) {
		return "timeout"
	}
	return "network"
}
