package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/quantedge/pkg/config"
	"github.com/wonny/quantedge/pkg/httputil"
	"github.com/wonny/quantedge/pkg/logger"
)

// Example_quoteProvider shows the client setup used for quote batches:
// no retry, a per-request timeout and a provider-wide rate limit.
func Example_quoteProvider() {
	cfg := &config.Config{Env: "production", LogLevel: "info"}
	log := logger.New(cfg)

	client := httputil.NewWithTimeout(cfg, log, 15*time.Second).
		DisableRetry().
		WithRateLimit(20)

	var body map[string]interface{}
	err := client.GetJSON(context.Background(), "https://quantedge-api.onrender.com/bulk?symbols=TCS", &body)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}
	fmt.Println("quotes:", body["count"])
}
