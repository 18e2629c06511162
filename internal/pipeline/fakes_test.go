package pipeline_test

import (
	"context"
	"errors"
	"sync"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/extract"
	"github.com/newsmill/newsmill/internal/publish"
)

// fakeFetcher serves canned pages keyed by URL.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	failures map[string]error
	fetched  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string, _ bool) (string, error) {
	return f.FetchWithFallback(ctx, pageURL)
}

func (f *fakeFetcher) FetchWithFallback(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, pageURL)
	if err, ok := f.failures[pageURL]; ok {
		return "", err
	}
	html, ok := f.pages[pageURL]
	if !ok {
		return "", errors.New("page not served: " + pageURL)
	}
	return html, nil
}

// fakeStrategy extracts canned fields keyed by article URL.
type fakeStrategy struct {
	articles map[string]*domain.ExtractedArticle
	failures map[string]error
}

func (s *fakeStrategy) Extract(_ context.Context, articleURL, _ string) (*domain.ExtractedArticle, error) {
	if err, ok := s.failures[articleURL]; ok {
		return nil, err
	}
	if a, ok := s.articles[articleURL]; ok {
		return a, nil
	}
	return nil, errors.New("no extraction configured for " + articleURL)
}

func (s *fakeStrategy) factory() extract.Factory {
	return func(*domain.Scraper) extract.Strategy { return s }
}

// passthroughRewriter returns the input unchanged.
type passthroughRewriter struct{}

func (passthroughRewriter) Rewrite(_ context.Context, title, body string) domain.RewrittenArticle {
	return domain.RewrittenArticle{Title: title, Body: body}
}

// fakePublisher records published articles and fails for configured titles.
type fakePublisher struct {
	mu        sync.Mutex
	published []publish.Article
	failFor   map[string]error
}

func (p *fakePublisher) Publish(_ context.Context, article publish.Article) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.failFor[article.Title]; ok {
		return err
	}
	p.published = append(p.published, article)
	return nil
}

// fakeArticleStore is an in-memory ArticleStore keyed by canonical URL.
type fakeArticleStore struct {
	mu        sync.Mutex
	existing  map[string]bool
	created   []*domain.ScrapedArticle
	updated   []domain.ScrapedArticle
	existsErr error
	createErr error
	updateErr error
	// concurrentDup simulates another worker inserting the URL between
	// the dedup check and the insert: Create fails but marks the URL as
	// existing.
	concurrentDup bool
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{existing: map[string]bool{}}
}

func (s *fakeArticleStore) Exists(_ context.Context, canonicalURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.existing[canonicalURL], nil
}

func (s *fakeArticleStore) Create(_ context.Context, a *domain.ScrapedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.concurrentDup {
		s.existing[a.URL] = true
		return errors.New("unique constraint violation")
	}
	if s.createErr != nil {
		return s.createErr
	}
	s.existing[a.URL] = true
	s.created = append(s.created, a)
	return nil
}

func (s *fakeArticleStore) Update(_ context.Context, a *domain.ScrapedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = append(s.updated, *a)
	return nil
}

// fakeScraperStore records health counter updates.
type fakeScraperStore struct {
	mu      sync.Mutex
	updated []domain.Scraper
	byID    map[int64]*domain.Scraper
	getErr  error
}

func (s *fakeScraperStore) Update(_ context.Context, sc *domain.Scraper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, *sc)
	return nil
}

func (s *fakeScraperStore) GetByID(_ context.Context, id int64) (*domain.Scraper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	sc, ok := s.byID[id]
	if !ok {
		return nil, errors.New("scraper not found")
	}
	return sc, nil
}

// fakeNotifier records run outcome notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	completed []int
	failed    []string
}

func (n *fakeNotifier) RunCompleted(_ string, discovered int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, discovered)
}

func (n *fakeNotifier) RunFailed(_ string, errorMessage string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, errorMessage)
}
