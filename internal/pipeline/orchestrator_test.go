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

const sectionURL = "https://www.govexec.com/politics/"

// sectionHTML lists three articles.
const sectionHTML = `<!DOCTYPE html>
<html>
<body>
  <ul class="river">
    <li class="item"><a href="/story/1">One</a></li>
    <li class="item"><a href="/story/2">Two</a></li>
    <li class="item"><a href="/story/3">Three</a></li>
  </ul>
</body>
</html>`

func testScraper() *domain.Scraper {
	return &domain.Scraper{
		ID:           1,
		Site:         domain.SiteGovExec,
		Active:       true,
		Name:         "govexec-politics",
		BaseURL:      sectionURL,
		Category:     "politics",
		AuthorID:     7,
		Variant:      domain.VariantLLM,
		ArticleItem:  "li.item",
		HrefSelector: "a",
	}
}

type fixture struct {
	fetcher   *fakeFetcher
	strategy  *fakeStrategy
	publisher *fakePublisher
	articles  *fakeArticleStore
	scrapers  *fakeScraperStore
	notifier  *fakeNotifier
	orch      *pipeline.Orchestrator
}

func newFixture(opts pipeline.Options) *fixture {
	f := &fixture{
		fetcher: &fakeFetcher{
			pages: map[string]string{
				sectionURL: sectionHTML,
				"https://www.govexec.com/story/1": "<html>one</html>",
				"https://www.govexec.com/story/2": "<html>two</html>",
				"https://www.govexec.com/story/3": "<html>three</html>",
			},
			failures: map[string]error{},
		},
		strategy: &fakeStrategy{
			articles: map[string]*domain.ExtractedArticle{
				"https://www.govexec.com/story/1": {Title: "One", Body: "Body one."},
				"https://www.govexec.com/story/2": {Title: "Two", Body: "Body two."},
				"https://www.govexec.com/story/3": {Title: "Three", Body: "Body three."},
			},
			failures: map[string]error{},
		},
		publisher: &fakePublisher{failFor: map[string]error{}},
		articles:  newFakeArticleStore(),
		scrapers:  &fakeScraperStore{},
		notifier:  &fakeNotifier{},
	}

	f.orch = pipeline.New(pipeline.Deps{
		Fetcher:    f.fetcher,
		Extractors: f.strategy.factory(),
		Rewriter:   passthroughRewriter{},
		Publisher:  f.publisher,
		Scrapers:   f.scrapers,
		Articles:   f.articles,
		Notifier:   f.notifier,
		Logger:     logger.NewNoOp(),
	}, opts)

	return f
}

func TestRun_HappyPath(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Equal(t, 1, sc.TotalRuns)
	assert.Equal(t, 1, sc.SuccessfulRuns)
	assert.Equal(t, 0, sc.FailedRuns)
	assert.Nil(t, sc.LastError)
	assert.NotNil(t, sc.LastRun)
	assert.NotNil(t, sc.LastSuccess)

	assert.Len(t, f.publisher.published, 3)
	assert.Len(t, f.articles.created, 3)

	// Every record ends in Success.
	require.Len(t, f.articles.updated, 3)
	for _, record := range f.articles.updated {
		assert.Equal(t, domain.StatusSuccess, record.Status)
	}

	// Health counters are persisted exactly once.
	require.Len(t, f.scrapers.updated, 1)
	assert.Equal(t, 1, f.scrapers.updated[0].SuccessfulRuns)

	assert.Equal(t, []int{3}, f.notifier.completed)
	assert.Empty(t, f.notifier.failed)
}

func TestRun_PublishedPayloadCarriesScraperFields(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	region := int64(3)
	sc := testScraper()
	sc.RegionID = &region

	f.orch.Run(context.Background(), sc)

	require.Len(t, f.publisher.published, 3)
	for _, article := range f.publisher.published {
		assert.Equal(t, domain.SiteGovExec, article.Site)
		assert.Equal(t, "politics", article.Category)
		assert.EqualValues(t, 7, article.AuthorID)
		require.NotNil(t, article.RegionID)
		assert.Equal(t, region, *article.RegionID)
	}
}

func TestRun_SingleArticleFailureDoesNotAbortRun(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.strategy.failures["https://www.govexec.com/story/2"] = errors.New("no title found")
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	// Articles 1 and 3 still published; the run itself counts as a success.
	assert.Len(t, f.publisher.published, 2)
	assert.Equal(t, 1, sc.SuccessfulRuns)
	assert.Equal(t, 0, sc.FailedRuns)
	assert.Nil(t, sc.LastError)

	// Exactly one record ends Failed, with a persisted message.
	var failed []domain.ScrapedArticle
	for _, record := range f.articles.updated {
		if record.Status == domain.StatusFailed {
			failed = append(failed, record)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "https://www.govexec.com/story/2", failed[0].URL)
	require.NotNil(t, failed[0].Message)
	assert.Contains(t, *failed[0].Message, "no title found")
	assert.Zero(t, failed[0].RetryCount)
}

func TestRun_KnownURLsSkipped(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.articles.existing["https://www.govexec.com/story/2"] = true
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Len(t, f.publisher.published, 2)
	assert.Len(t, f.articles.created, 2)
	for _, record := range f.articles.created {
		assert.NotEqual(t, "https://www.govexec.com/story/2", record.URL)
	}
	assert.Equal(t, 1, sc.SuccessfulRuns)
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	sc := testScraper()

	f.orch.Run(context.Background(), sc)
	f.orch.Run(context.Background(), sc)

	// The second run discovers the same URLs but creates and publishes
	// nothing new.
	assert.Len(t, f.articles.created, 3)
	assert.Len(t, f.publisher.published, 3)
	assert.Equal(t, 2, sc.TotalRuns)
	assert.Equal(t, 2, sc.SuccessfulRuns)
}

func TestRun_ConcurrentInsertRaceSkips(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	sc := testScraper()

	// Every insert collides with a concurrent worker's record; the
	// re-check after the failed insert turns that into a skip, not a
	// critical failure.
	f.articles.concurrentDup = true

	f.orch.Run(context.Background(), sc)

	assert.Empty(t, f.publisher.published)
	assert.Equal(t, 1, sc.SuccessfulRuns)
	assert.Equal(t, 0, sc.FailedRuns)
	assert.Nil(t, sc.LastError)
}

func TestRun_CreateFailureIsCritical(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.articles.createErr = errors.New("disk full")
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Empty(t, f.publisher.published)
	assert.Equal(t, 0, sc.SuccessfulRuns)
	assert.Equal(t, 1, sc.FailedRuns)
	require.NotNil(t, sc.LastError)
	assert.Contains(t, *sc.LastError, "disk full")
}

func TestRun_DiscoveryFetchFailureIsCritical(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.fetcher.failures[sectionURL] = errors.New("connection refused")
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Equal(t, 1, sc.TotalRuns)
	assert.Equal(t, 0, sc.SuccessfulRuns)
	assert.Equal(t, 1, sc.FailedRuns)
	require.NotNil(t, sc.LastError)
	assert.Contains(t, *sc.LastError, "connection refused")
	assert.Contains(t, *sc.LastError, "Stack:")
	assert.Nil(t, sc.LastSuccess)

	// Health counters still persisted.
	require.Len(t, f.scrapers.updated, 1)
	require.Len(t, f.notifier.failed, 1)
	assert.Contains(t, f.notifier.failed[0], "connection refused")
}

func TestRun_NoItemsMatchedIsCritical(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.fetcher.pages[sectionURL] = "<html><body><p>redesigned page</p></body></html>"
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Equal(t, 1, sc.FailedRuns)
	require.NotNil(t, sc.LastError)
	assert.Contains(t, *sc.LastError, "li.item")
}

func TestRun_SectionContainerMissingIsCritical(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	sc := testScraper()
	container := "div.main-section"
	sc.SectionContainer = &container

	f.orch.Run(context.Background(), sc)

	assert.Equal(t, 1, sc.FailedRuns)
	require.NotNil(t, sc.LastError)
	assert.Contains(t, *sc.LastError, "div.main-section")
}

func TestRun_StoreFailureAbortsLoop(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.articles.existsErr = errors.New("database is down")
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Empty(t, f.publisher.published)
	assert.Equal(t, 0, sc.SuccessfulRuns)
	assert.Equal(t, 1, sc.FailedRuns)
	require.NotNil(t, sc.LastError)
	assert.Contains(t, *sc.LastError, "database is down")
	require.Len(t, f.notifier.failed, 1)
}

func TestRun_MalformedHrefSkippedSilently(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.fetcher.pages[sectionURL] = `<html><body>
		<li class="item"><a href="/story/1">Good</a></li>
		<li class="item"><a>No href</a></li>
	</body></html>`
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Len(t, f.publisher.published, 1)
	assert.Equal(t, 1, sc.SuccessfulRuns)
}

func TestRun_PublishFailureMarksRecordFailed(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	f.publisher.failFor["Three"] = errors.New("HTTP 400: category does not exist")
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	assert.Len(t, f.publisher.published, 2)
	assert.Equal(t, 1, sc.SuccessfulRuns)

	var failed *domain.ScrapedArticle
	for i := range f.articles.updated {
		if f.articles.updated[i].Status == domain.StatusFailed {
			failed = &f.articles.updated[i]
		}
	}
	require.NotNil(t, failed)
	require.NotNil(t, failed.Message)
	assert.Contains(t, *failed.Message, "category does not exist")
	// The extracted body was recorded before the publish attempt.
	require.NotNil(t, failed.ScrapedText)
	assert.Equal(t, "Body three.", *failed.ScrapedText)
}

func TestRun_RecordsCarryScraperMetadata(t *testing.T) {
	t.Parallel()

	f := newFixture(pipeline.Options{})
	sc := testScraper()

	f.orch.Run(context.Background(), sc)

	require.NotEmpty(t, f.articles.created)
	for _, record := range f.articles.created {
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, "politics", record.Category)
		require.NotNil(t, record.ScraperID)
		assert.Equal(t, sc.ID, *record.ScraperID)
		assert.Equal(t, domain.DefaultMaxRetries, record.MaxRetries)
		assert.Equal(t, domain.StatusInProgress, record.Status)
	}
}
