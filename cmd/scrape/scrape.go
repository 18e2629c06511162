// Package scrape implements the command that runs the scrape pipeline.
package scrape

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsmill/newsmill/cmd/common"
	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/worker"
)

// Command returns the scrape command.
func Command(debug *bool) *cobra.Command {
	var (
		scraperID int64
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run the scrape pipeline for active scrapers",
		Long: `Runs discovery, extraction, rewriting, and publishing for every
active scraper, or for a single scraper when --scraper-id is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps(*debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx := cmd.Context()
			log := deps.Logger.WithComponent("scrape")

			var scrapers []*domain.Scraper
			if scraperID > 0 {
				sc, err := deps.Scrapers.GetByID(ctx, scraperID)
				if err != nil {
					return fmt.Errorf("failed to load scraper %d: %w", scraperID, err)
				}
				scrapers = append(scrapers, sc)
			} else {
				scrapers, err = deps.Scrapers.ListActive(ctx)
				if err != nil {
					return fmt.Errorf("failed to list active scrapers: %w", err)
				}
			}

			if len(scrapers) == 0 {
				log.Info("no scrapers to run")
				return nil
			}

			if workers <= 0 {
				workers = deps.Config.Pipeline.Workers
			}

			pool := worker.NewPool(workers, deps.Orchestrator, log)
			pool.RunAll(ctx, scrapers)

			log.Info("scrape finished",
				"scrapers", len(scrapers),
				"processed", pool.Processed(),
			)
			return nil
		},
	}

	cmd.Flags().Int64Var(&scraperID, "scraper-id", 0, "run a single scraper by id")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (default from config)")

	return cmd
}
