package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
	"github.com/newsmill/newsmill/internal/pipeline"
)

// fakeArticlePipeline runs the per-article stages with a canned outcome.
type fakeArticlePipeline struct {
	err   error
	calls int
}

func (p *fakeArticlePipeline) ProcessArticle(
	_ context.Context, _ *domain.Scraper, _ *domain.ScrapedArticle, _ string,
) error {
	p.calls++
	return p.err
}

func failedRecord() *domain.ScrapedArticle {
	scraperID := int64(1)
	msg := "extraction failed"
	return &domain.ScrapedArticle{
		ID:         "record-1",
		URL:        "https://www.govexec.com/story/1",
		Category:   "politics",
		Status:     domain.StatusFailed,
		Message:    &msg,
		ScraperID:  &scraperID,
		RetryCount: 1,
		MaxRetries: 3,
	}
}

func newRetryCoordinator(
	articlePipeline pipeline.ArticlePipeline,
) (*pipeline.RetryCoordinator, *fakeScraperStore, *fakeArticleStore) {
	scrapers := &fakeScraperStore{byID: map[int64]*domain.Scraper{1: testScraper()}}
	articles := newFakeArticleStore()
	coordinator := pipeline.NewRetryCoordinator(
		articlePipeline, scrapers, articles, logger.NewNoOp())
	return coordinator, scrapers, articles
}

func TestRetry_Success(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{}
	coordinator, _, articles := newRetryCoordinator(articlePipeline)
	record := failedRecord()

	ok := coordinator.Retry(context.Background(), record)
	require.True(t, ok)

	assert.Equal(t, 1, articlePipeline.calls)
	assert.Equal(t, domain.StatusSuccess, record.Status)
	assert.Nil(t, record.Message)
	assert.Equal(t, 2, record.RetryCount)
	assert.NotNil(t, record.LastRetryAt)

	// Two persisted states: the in-progress claim, then the final success.
	require.Len(t, articles.updated, 2)
	assert.Equal(t, domain.StatusInProgress, articles.updated[0].Status)
	assert.Equal(t, domain.StatusSuccess, articles.updated[1].Status)
}

func TestRetry_ExhaustedRecordUntouched(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{}
	coordinator, _, articles := newRetryCoordinator(articlePipeline)

	record := failedRecord()
	record.RetryCount = 3

	ok := coordinator.Retry(context.Background(), record)
	assert.False(t, ok)

	// No side effects at all: no pipeline run, no persisted change.
	assert.Zero(t, articlePipeline.calls)
	assert.Empty(t, articles.updated)
	assert.Equal(t, 3, record.RetryCount)
	assert.Equal(t, domain.StatusFailed, record.Status)
}

func TestRetry_NonFailedRecordRejected(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{}
	coordinator, _, _ := newRetryCoordinator(articlePipeline)

	record := failedRecord()
	record.Status = domain.StatusSuccess

	assert.False(t, coordinator.Retry(context.Background(), record))
	assert.Zero(t, articlePipeline.calls)
}

func TestRetry_PipelineFailureRecordsAttemptNumber(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{err: errors.New("still blocked")}
	coordinator, _, articles := newRetryCoordinator(articlePipeline)
	record := failedRecord()

	ok := coordinator.Retry(context.Background(), record)
	assert.False(t, ok)

	assert.Equal(t, domain.StatusFailed, record.Status)
	assert.Equal(t, 2, record.RetryCount)
	require.NotNil(t, record.Message)
	assert.Contains(t, *record.Message, "Retry 2 failed:")
	assert.Contains(t, *record.Message, "still blocked")

	require.Len(t, articles.updated, 2)
	assert.Equal(t, domain.StatusFailed, articles.updated[1].Status)
}

func TestRetry_MissingScraperReference(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{}
	coordinator, _, _ := newRetryCoordinator(articlePipeline)

	record := failedRecord()
	record.ScraperID = nil

	ok := coordinator.Retry(context.Background(), record)
	assert.False(t, ok)
	assert.Zero(t, articlePipeline.calls)
	assert.Equal(t, domain.StatusFailed, record.Status)
	require.NotNil(t, record.Message)
	assert.Contains(t, *record.Message, "no owning scraper")
}

func TestRetry_ScraperLoadFailure(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{}
	coordinator, scrapers, _ := newRetryCoordinator(articlePipeline)
	scrapers.getErr = errors.New("database is down")
	record := failedRecord()

	ok := coordinator.Retry(context.Background(), record)
	assert.False(t, ok)
	assert.Equal(t, domain.StatusFailed, record.Status)
}

func TestRetry_ClaimPersistFailureStops(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{}
	coordinator, _, articles := newRetryCoordinator(articlePipeline)
	articles.updateErr = errors.New("database is down")
	record := failedRecord()

	ok := coordinator.Retry(context.Background(), record)
	assert.False(t, ok)
	assert.Zero(t, articlePipeline.calls, "pipeline must not run without a persisted claim")
}

func TestRetry_AttemptsAreBounded(t *testing.T) {
	t.Parallel()

	articlePipeline := &fakeArticlePipeline{err: errors.New("permanently broken")}
	coordinator, _, _ := newRetryCoordinator(articlePipeline)

	record := failedRecord()
	record.RetryCount = 0

	for i := 0; i < 10; i++ {
		coordinator.Retry(context.Background(), record)
	}

	// max_retries caps the attempts no matter how often the caller asks.
	assert.Equal(t, record.MaxRetries, record.RetryCount)
	assert.Equal(t, record.MaxRetries, articlePipeline.calls)
}
