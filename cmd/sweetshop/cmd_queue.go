package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/internal/kernel"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/queue"
)

var (
	queueWorkers int
	failedLimit  int
)

var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		k, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer k.Close()

		if config.QueueDriver() != "redis" {
			logger.Warn("queue:work with the memory driver only sees jobs from this process; set QUEUE_DRIVER=redis")
		}
		workers := queueWorkers
		if !cmd.Flags().Changed("workers") {
			workers = config.QueueWorkers()
		}
		k.Queue.Work(ctx, workers)
		return nil
	},
}

var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSQL(func(db *gorm.DB) error {
			jobs, err := queue.NewGormFailedStore(db).List(cmd.Context(), failedLimit)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No failed jobs.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tJOB\tATTEMPTS\tFAILED AT\tERROR")
			for _, j := range jobs {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", j.ID, j.JobType, j.Attempts, j.FailedAt.Format("2006-01-02 15:04:05"), j.Error)
			}
			return w.Flush()
		})
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkers, "workers", "w", 0, "concurrent workers (default QUEUE_WORKERS)")
	queueFailedCmd.Flags().IntVarP(&failedLimit, "limit", "n", 20, "how many failures to show")
}
