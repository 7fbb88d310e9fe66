package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moyan/superforce/backend/internal/scheduler"
	"github.com/moyan/superforce/backend/internal/scheduler/jobs"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled auction pipeline",
	Long: `Run the scheduled auction pipeline: snapshot collection right after
the 09:25 auction match and outcome settlement after the close, both in
exchange time, on weekdays.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScheduler()
	},
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.New(a.log, exchangeTZ)

	if err := sched.AddJob(jobs.NewAuctionCollectionJob(a.collector, a.log)); err != nil {
		return fmt.Errorf("failed to add collection job: %w", err)
	}
	if err := sched.AddJob(jobs.NewOutcomeSettlementJob(a.settler, a.log)); err != nil {
		return fmt.Errorf("failed to add settlement job: %w", err)
	}

	sched.Start()
	a.log.WithField("jobs", sched.GetAllJobs()).Info("Scheduler running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	a.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	sched.Stop()
	return nil
}
