package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quantedge/internal/quotes"
	"github.com/wonny/quantedge/internal/scheduler"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 작업 관리",
	Long: `등록된 작업을 조회하거나 즉시 실행합니다.

등록되는 작업:
- quote_refresh: QUOTE_REFRESH_INTERVAL 마다 (시세 갱신)
- quote_freshness: 5분마다 (시세 신선도 점검)
- history_snapshot: 평일 15:35 (종가 기록, HISTORY_SOURCE=postgres 일 때만)

Subcommands:
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (동기)

Example:
  go run ./cmd/quantedge scheduler list
  go run ./cmd/quantedge scheduler run quote_refresh`,
}

var (
	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the app and registers every job including quote_refresh
func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	sched, err := a.newScheduler()
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("init scheduler: %w", err)
	}
	if err := sched.AddJob(a.aggregator.RefreshJob()); err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, sched, nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stats := sched.GetJobStats()

	fmt.Println("Registered jobs:")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %-18s %s\n", name, stats[name].Schedule)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// 다른 작업은 시세가 있어야 의미가 있음
	if jobName != quotes.RefreshJobName {
		if err := refreshOnce(cmd.Context(), a); err != nil {
			return err
		}
	}

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJobSync(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %s: %s", jobName, result.Duration.Round(time.Millisecond), result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}
