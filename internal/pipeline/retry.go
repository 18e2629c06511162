package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

// errNoScraper marks a record whose owning scraper reference was nulled.
var errNoScraper = errors.New("record has no owning scraper")

// RetryCoordinator re-drives previously failed article records through the
// per-article pipeline, bounded by each record's max_retries. Retry cadence
// is the caller's concern; attempts are independent and carry no backoff.
type RetryCoordinator struct {
	pipeline ArticlePipeline
	scrapers ScraperGetter
	articles ArticleStore
	logger   logger.Interface
	now      func() time.Time
}

// NewRetryCoordinator creates a retry coordinator.
func NewRetryCoordinator(
	articlePipeline ArticlePipeline,
	scrapers ScraperGetter,
	articles ArticleStore,
	log logger.Interface,
) *RetryCoordinator {
	return &RetryCoordinator{
		pipeline: articlePipeline,
		scrapers: scrapers,
		articles: articles,
		logger:   log,
		now:      time.Now,
	}
}

// Retry re-runs the article pipeline for a failed record. Ineligible records
// return false without side effects.
func (r *RetryCoordinator) Retry(ctx context.Context, record *domain.ScrapedArticle) bool {
	log := r.logger.With("url", record.URL)

	if !record.CanRetry() {
		log.Warn("cannot retry article",
			"retry_count", record.RetryCount, "max_retries", record.MaxRetries)
		return false
	}

	record.RetryCount++
	attempted := r.now()
	record.LastRetryAt = &attempted
	record.Status = domain.StatusInProgress
	if err := r.articles.Update(ctx, record); err != nil {
		log.Error("failed to persist retry state", "error", err)
		return false
	}

	sc, err := r.scraperFor(ctx, record)
	if err != nil {
		r.fail(ctx, record, err, log)
		return false
	}

	if err := r.pipeline.ProcessArticle(ctx, sc, record, record.URL); err != nil {
		r.fail(ctx, record, err, log)
		return false
	}

	record.Status = domain.StatusSuccess
	record.Message = nil
	if err := r.articles.Update(ctx, record); err != nil {
		log.Error("failed to persist retry success", "error", err)
	}
	log.Info("successfully retried article", "retry_count", record.RetryCount)
	return true
}

func (r *RetryCoordinator) scraperFor(ctx context.Context, record *domain.ScrapedArticle) (*domain.Scraper, error) {
	if record.ScraperID == nil {
		return nil, errNoScraper
	}
	sc, err := r.scrapers.GetByID(ctx, *record.ScraperID)
	if err != nil {
		return nil, fmt.Errorf("load scraper %d: %w", *record.ScraperID, err)
	}
	return sc, nil
}

func (r *RetryCoordinator) fail(
	ctx context.Context,
	record *domain.ScrapedArticle,
	cause error,
	log logger.Interface,
) {
	record.Status = domain.StatusFailed
	msg := fmt.Sprintf("Retry %d failed: %s", record.RetryCount, errorWithStack(cause))
	record.Message = &msg
	if err := r.articles.Update(ctx, record); err != nil {
		log.Error("failed to persist retry failure", "error", err)
	}
	log.Error("retry failed", "retry_count", record.RetryCount, "error", cause)
}
