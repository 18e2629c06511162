package pipeline

import (
	"context"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/publish"
)

// PageFetcher fetches raw HTML for section and article pages.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string, preferRenderer bool) (string, error)
	FetchWithFallback(ctx context.Context, pageURL string) (string, error)
}

// ScraperStore persists scraper health state.
type ScraperStore interface {
	Update(ctx context.Context, sc *domain.Scraper) error
}

// ScraperGetter loads scraper configurations.
type ScraperGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Scraper, error)
}

// ArticleStore persists scraped article records keyed by canonical URL
// uniqueness.
type ArticleStore interface {
	Exists(ctx context.Context, canonicalURL string) (bool, error)
	Create(ctx context.Context, a *domain.ScrapedArticle) error
	Update(ctx context.Context, a *domain.ScrapedArticle) error
}

// Rewriter rewrites extracted article text. Rewriting degrades to the
// original text rather than failing.
type Rewriter interface {
	Rewrite(ctx context.Context, title, body string) domain.RewrittenArticle
}

// Publisher posts rewritten articles downstream.
type Publisher interface {
	Publish(ctx context.Context, article publish.Article) error
}

// ArticlePipeline runs the extract, rewrite and publish stages for one
// article. The orchestrator implements it; the retry coordinator reuses it.
type ArticlePipeline interface {
	ProcessArticle(ctx context.Context, sc *domain.Scraper, record *domain.ScrapedArticle, articleURL string) error
}
