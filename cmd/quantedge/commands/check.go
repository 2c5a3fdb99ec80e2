package commands

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/quotes"
	"github.com/wonny/quantedge/pkg/config"
	"github.com/wonny/quantedge/pkg/database"
	"github.com/wonny/quantedge/pkg/redis"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "외부 의존성 연결 점검",
	Long: `설정을 읽고 시세 API, PostgreSQL, Redis 연결을 점검합니다.

설정되지 않은 의존성(DATABASE_URL 없음, REDIS_ENABLED=false)은 건너뜁니다.

Example:
  go run ./cmd/quantedge check
  go run ./cmd/quantedge check --symbol TCS`,
	RunE: runCheck,
}

var (
	checkSymbol string
)

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkSymbol, "symbol", "NIFTY50", "시세 API 점검용 종목")
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== QuantEdge Connectivity Check ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	PrintSuccess(fmt.Sprintf("Config loaded (ENV: %s, TZ: %s)", cfg.Env, cfg.Location()))

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	failed := 0

	// 1. Quote provider
	fmt.Printf("\nQuote API %s ...\n", cfg.Quotes.BaseURL)
	start := time.Now()
	got, err := quotes.NewHTTPFetcher(cfg, log).FetchBatch(ctx, []string{checkSymbol})
	switch {
	case err != nil:
		failed++
		PrintError(err.Error())
	case len(got) == 0:
		PrintWarning(fmt.Sprintf("reachable, but no quote for %s", checkSymbol))
	default:
		PrintSuccess(fmt.Sprintf("%s = %s (%s)", checkSymbol, formatPrice(got[checkSymbol].LastPrice), time.Since(start).Round(time.Millisecond)))
	}

	// 2. PostgreSQL
	if cfg.Database.URL == "" {
		fmt.Println("\nDatabase: skipped (DATABASE_URL not set)")
	} else {
		fmt.Printf("\nDatabase %s ...\n", redactURL(cfg.Database.URL))
		if err := checkDatabase(ctx, cfg); err != nil {
			failed++
			PrintError(err.Error())
		}
	}

	// 3. Redis
	if !cfg.Redis.Enabled {
		fmt.Println("\nRedis: skipped (REDIS_ENABLED=false)")
	} else {
		fmt.Printf("\nRedis %s:%s ...\n", cfg.Redis.Host, cfg.Redis.Port)
		rc, err := redis.New(ctx, cfg)
		if err != nil {
			failed++
			PrintError(err.Error())
		} else {
			rc.Close()
			PrintSuccess("Ping successful")
		}
	}

	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	PrintSuccess("All checks passed")
	return nil
}

func checkDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy {
		return errors.New("database unhealthy")
	}
	PrintSuccess(fmt.Sprintf("Ping %s, %d conns (%d idle)", status.ResponseTime.Round(time.Microsecond), status.TotalConns, status.IdleConns))
	return nil
}

// redactURL hides the password of a connection string
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable)"
	}
	return u.Redacted()
}
