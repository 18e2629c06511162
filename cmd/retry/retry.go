// Package retry implements the command that re-runs failed article records.
package retry

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsmill/newsmill/cmd/common"
	"github.com/newsmill/newsmill/internal/domain"
)

// Command returns the retry command.
func Command(debug *bool) *cobra.Command {
	var (
		articleID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Retry failed articles that have attempts remaining",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewDeps(*debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx := cmd.Context()
			log := deps.Logger.WithComponent("retry")

			var records []*domain.ScrapedArticle
			if articleID != "" {
				record, err := deps.Articles.GetByID(ctx, articleID)
				if err != nil {
					return fmt.Errorf("failed to load article %s: %w", articleID, err)
				}
				records = append(records, record)
			} else {
				records, err = deps.Articles.ListRetryable(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list retryable articles: %w", err)
				}
			}

			if len(records) == 0 {
				log.Info("no retryable articles")
				return nil
			}

			recovered := 0
			for _, record := range records {
				if deps.Retry.Retry(ctx, record) {
					recovered++
				}
			}

			log.Info("retry pass finished",
				"attempted", len(records),
				"recovered", recovered,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&articleID, "id", "", "retry a single article by id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of articles to retry")

	return cmd
}
