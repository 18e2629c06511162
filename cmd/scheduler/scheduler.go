// Package scheduler implements the command that runs scrapes on a cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/newsmill/newsmill/cmd/common"
	"github.com/newsmill/newsmill/internal/logger"
	"github.com/newsmill/newsmill/internal/worker"
)

// Command returns the scheduler command.
func Command(debug *bool) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the scrape pipeline on a cron schedule",
		Long: `Starts a long-running process that executes the scrape pipeline
for all active scrapers on the configured cron schedule. Stops cleanly on
SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps(*debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			log := deps.Logger.WithComponent("scheduler")

			spec := cronSpec
			if spec == "" {
				spec = deps.Config.Scheduler.CronSpec
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
			)
			defer stop()

			// A run can outlast its cron slot; skip overlapping runs
			// instead of stacking them.
			var running atomic.Bool

			c := cron.New()
			_, err = c.AddFunc(spec, func() {
				if !running.CompareAndSwap(false, true) {
					log.Warn("previous run still in progress, skipping")
					return
				}
				defer running.Store(false)
				runAll(ctx, deps, log)
			})
			if err != nil {
				return fmt.Errorf("invalid cron spec %q: %w", spec, err)
			}

			log.Info("scheduler started", "cron", spec)
			c.Start()

			<-ctx.Done()
			log.Info("shutting down scheduler")

			// Wait for any in-flight run to finish.
			<-c.Stop().Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "cron spec override (default from config)")

	return cmd
}

func runAll(ctx context.Context, deps *common.Deps, log logger.Interface) {
	scrapers, err := deps.Scrapers.ListActive(ctx)
	if err != nil {
		log.Error("failed to list active scrapers", "error", err)
		return
	}
	if len(scrapers) == 0 {
		log.Info("no active scrapers")
		return
	}

	pool := worker.NewPool(deps.Config.Pipeline.Workers, deps.Orchestrator, deps.Logger)
	pool.RunAll(ctx, scrapers)
	log.Info("scheduled run finished",
		"scrapers", len(scrapers),
		"processed", pool.Processed(),
	)
}
