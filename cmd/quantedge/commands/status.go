package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/pkg/httputil"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "실행 중인 서버의 피드 상태 조회",
	Long: `serve 로 실행 중인 서버의 /api/status 를 조회합니다.

--watch 를 주면 Ctrl+C 까지 주기적으로 갱신합니다.

Example:
  go run ./cmd/quantedge status
  go run ./cmd/quantedge status --addr http://localhost:9000 --watch 5s`,
	RunE: runStatus,
}

var (
	statusAddr  string
	statusWatch time.Duration
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusAddr, "addr", "http://localhost:8089", "서버 주소")
	statusCmd.Flags().DurationVar(&statusWatch, "watch", 0, "갱신 간격 (0 = 1회)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	client := httputil.NewWithTimeout(cfg, log, 5*time.Second).DisableRetry()
	url := strings.TrimRight(statusAddr, "/") + "/api/status"

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if statusWatch <= 0 {
		return displayFeedStatus(ctx, client, url)
	}

	ticker := time.NewTicker(statusWatch)
	defer ticker.Stop()

	for {
		if err := displayFeedStatus(ctx, client, url); err != nil {
			PrintError(err.Error())
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func displayFeedStatus(ctx context.Context, client *httputil.Client, url string) error {
	var st contracts.FeedStatus
	if err := client.GetJSON(ctx, url, &st); err != nil {
		return fmt.Errorf("query %s: %w", url, err)
	}

	inFlight := "no"
	if st.RefreshInFlight {
		inFlight = "yes"
	}

	PrintHeader("Feed Status " + time.Now().Format("15:04:05"))
	PrintKeyValue("Status", string(st.Status), 14)
	PrintKeyValue("Last success", formatTime(st.LastSuccessfulRefresh), 14)
	PrintKeyValue("In flight", inFlight, 14)
	PrintKeyValue("Quotes", fmt.Sprintf("%d", st.QuoteCount), 14)
	return nil
}
