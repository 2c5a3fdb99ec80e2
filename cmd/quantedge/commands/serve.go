package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/api"
	"github.com/wonny/quantedge/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 + 시세 피드 시작",
	Long: `시세 집계기, 스케줄러, REST/WebSocket API 서버를 시작합니다.

시작 즉시 1회 갱신 후 QUOTE_REFRESH_INTERVAL(기본 60s)마다 갱신합니다.

Endpoints:
  GET  /health                         - Health check
  GET  /metrics                        - Prometheus metrics
  GET  /api/status                     - 피드 상태
  GET  /api/quotes?q=&sector=          - 시세 보드
  GET  /api/quotes/{symbol}            - 종목 시세
  POST /api/quotes/refresh             - 수동 갱신
  GET  /api/sectors                    - 섹터 목록
  GET  /api/options/{symbol}           - 옵션 가격 (?strike=&expiry=)
  GET  /api/options/{symbol}/ladder    - 행사가 래더 (?expiry=)
  GET  /api/forecast/{symbol}          - 방향성 예측
  GET  /ws/quotes                      - 시세 스트림

Example:
  go run ./cmd/quantedge serve
  go run ./cmd/quantedge serve --port 9000`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== QuantEdge API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Wire components
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}
	log := a.log

	// 2. Scheduler + jobs
	sched, err := a.newScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// 3. Handlers
	hub := handlers.NewStreamHub(a.service, log)
	a.aggregator.OnCycle(hub.PublishCycle)

	h := api.Handlers{
		Quotes:   handlers.NewQuoteHandler(a.service, log),
		Options:  handlers.NewOptionsHandler(a.service, log),
		Forecast: handlers.NewForecastHandler(a.service, log),
		Stream:   hub,
	}
	if a.cfg.MetricsEnabled {
		h.Metrics = a.metrics.Handler()
	}
	server := api.New(a.cfg, log, api.NewRouter(h, log))

	// 4. Start quote feed (immediate refresh + periodic job)
	if err := a.aggregator.Start(ctx, sched); err != nil {
		return err
	}
	sched.Start()

	// 5. Start server
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Instruments: %d, refresh every %s\n", a.catalog.Len(), a.cfg.Quotes.RefreshInterval)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("API server stopped unexpectedly")
		}
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Server shutdown failed")
	}
	a.aggregator.Stop()
	sched.Stop()

	log.Info("Server stopped")
	return nil
}
