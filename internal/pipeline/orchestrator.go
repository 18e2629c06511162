// Package pipeline drives the end-to-end scrape pipeline per scraper
// configuration: discover article links, dedup, extract, rewrite, publish,
// record the outcome, and update scraper health counters.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/extract"
	"github.com/newsmill/newsmill/internal/logger"
	"github.com/newsmill/newsmill/internal/notify"
	"github.com/newsmill/newsmill/internal/publish"
	"github.com/newsmill/newsmill/internal/selector"
)

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Fetcher    PageFetcher
	Extractors extract.Factory
	Rewriter   Rewriter
	Publisher  Publisher
	Scrapers   ScraperStore
	Articles   ArticleStore
	Notifier   notify.Notifier
	Logger     logger.Interface
}

// Options tunes orchestrator behavior.
type Options struct {
	// StrictFailureAccounting counts every unsuccessful run as exactly one
	// failed run. The legacy accounting leaves degraded empty runs out of
	// failed_runs entirely.
	StrictFailureAccounting bool
}

// Orchestrator runs the scrape pipeline for one scraper configuration at a
// time. It holds no per-run state; a single instance may serve many workers.
type Orchestrator struct {
	fetcher    PageFetcher
	extractors extract.Factory
	rewriter   Rewriter
	publisher  Publisher
	scrapers   ScraperStore
	articles   ArticleStore
	notifier   notify.Notifier
	logger     logger.Interface
	opts       Options
	now        func() time.Time
}

// New creates an orchestrator.
func New(deps Deps, opts Options) *Orchestrator {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewNoOp()
	}
	return &Orchestrator{
		fetcher:    deps.Fetcher,
		extractors: deps.Extractors,
		rewriter:   deps.Rewriter,
		publisher:  deps.Publisher,
		scrapers:   deps.Scrapers,
		articles:   deps.Articles,
		notifier:   notifier,
		logger:     deps.Logger,
		opts:       opts,
		now:        time.Now,
	}
}

// Run executes one full scrape run for the scraper and persists its health
// counters unconditionally at the end. A run completing the per-article loop
// counts as successful even when individual articles failed: run success
// tracks infrastructure health, per-record status tracks content yield.
func (o *Orchestrator) Run(ctx context.Context, sc *domain.Scraper) {
	log := o.logger.WithScraper(sc.Name)

	started := o.now()
	sc.LastRun = &started
	sc.TotalRuns++

	succeeded := true
	critical := false
	errorMessage := ""

	urls, discoverErr := o.discover(ctx, sc)
	if discoverErr != nil {
		errorMessage = errorWithStack(discoverErr)
		sc.LastError = &errorMessage
		sc.FailedRuns++
		succeeded = false
		critical = true
		log.Error("critical error in scraper run", "error", discoverErr)
		o.notifier.RunFailed(sc.Name, discoverErr.Error())
	} else {
		if len(urls) == 0 {
			errorMessage = "no article URLs found, check selectors"
			succeeded = false
			log.Warn(errorMessage)
		} else {
			log.Info("discovered article URLs", "count", len(urls))
		}

		for _, articleURL := range urls {
			if procErr := o.processURL(ctx, sc, articleURL, log); procErr != nil {
				// Store-level failure outside the per-article guard.
				errorMessage = errorWithStack(procErr)
				sc.LastError = &errorMessage
				sc.FailedRuns++
				succeeded = false
				critical = true
				log.Error("critical error in scraper run", "error", procErr)
				o.notifier.RunFailed(sc.Name, procErr.Error())
				break
			}
		}

		if succeeded {
			sc.SuccessfulRuns++
			finished := o.now()
			sc.LastSuccess = &finished
			sc.LastError = nil
			o.notifier.RunCompleted(sc.Name, len(urls))
		}
	}

	switch {
	case !succeeded && errorMessage == "":
		// A failure that never recorded an error; count it so the health
		// stats cannot stay green.
		sc.FailedRuns++
	case o.opts.StrictFailureAccounting && !succeeded && !critical:
		// Degraded runs count as failures under strict accounting.
		sc.FailedRuns++
	}

	if err := o.scrapers.Update(ctx, sc); err != nil {
		log.Error("failed to persist scraper health", "error", err)
	}
}

// discover fetches the section page and resolves the article URL list.
func (o *Orchestrator) discover(ctx context.Context, sc *domain.Scraper) ([]string, error) {
	html, err := o.fetcher.FetchWithFallback(ctx, sc.BaseURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse section page: %w", err)
	}

	root := doc.Selection
	if sc.SectionContainer != nil && *sc.SectionContainer != "" {
		container := selector.Resolve(root, *sc.SectionContainer)
		if container == nil {
			return nil, &DiscoveryError{
				Scraper: sc.Name,
				Reason:  fmt.Sprintf("section container %q not found", *sc.SectionContainer),
			}
		}
		root = container
	}

	items := selector.ResolveAll(root, sc.ArticleItem)
	if items == nil {
		return nil, &DiscoveryError{
			Scraper: sc.Name,
			Reason:  fmt.Sprintf("no items found with selector %q", sc.ArticleItem),
		}
	}

	urls := make([]string, 0, items.Length())
	items.Each(func(_ int, item *goquery.Selection) {
		hrefNode := selector.Resolve(item, sc.HrefSelector)
		if hrefNode == nil {
			return
		}
		href, ok := hrefNode.Attr("href")
		if !ok || href == "" {
			return
		}
		absolute, resolveErr := domain.ResolveURL(sc.BaseURL, href)
		if resolveErr != nil {
			return
		}
		urls = append(urls, absolute)
	})

	if len(urls) == 0 {
		return nil, &DiscoveryError{
			Scraper: sc.Name,
			Reason:  "found items but could not extract any hrefs",
		}
	}

	return urls, nil
}

// processURL runs the per-article pipeline for one discovered URL. Pipeline
// failures are captured into the record and never returned: a single
// article's failure must not abort the loop. Only store-level failures
// (dedup check, record creation) are returned, ending the run.
func (o *Orchestrator) processURL(
	ctx context.Context,
	sc *domain.Scraper,
	articleURL string,
	log logger.Interface,
) error {
	canonical, queryParams, err := domain.CanonicalizeURL(articleURL)
	if err != nil {
		log.Warn("skipping malformed article URL", "url", articleURL, "error", err)
		return nil
	}

	known, err := o.articles.Exists(ctx, canonical)
	if err != nil {
		return fmt.Errorf("dedup check for %s: %w", canonical, err)
	}
	if known {
		log.Debug("skipping known article", "url", canonical)
		return nil
	}

	record := &domain.ScrapedArticle{
		ID:          uuid.New().String(),
		URL:         canonical,
		QueryParams: queryParams,
		Category:    sc.Category,
		ScrapedAt:   o.now(),
		Status:      domain.StatusInProgress,
		ScraperID:   &sc.ID,
		MaxRetries:  domain.DefaultMaxRetries,
	}
	if createErr := o.articles.Create(ctx, record); createErr != nil {
		// A concurrent run may have recorded the URL between the dedup
		// check and the insert; the unique constraint makes that a skip.
		if nowKnown, existsErr := o.articles.Exists(ctx, canonical); existsErr == nil && nowKnown {
			log.Debug("article recorded concurrently, skipping", "url", canonical)
			return nil
		}
		return fmt.Errorf("create record for %s: %w", canonical, createErr)
	}

	if pipeErr := o.ProcessArticle(ctx, sc, record, articleURL); pipeErr != nil {
		msg := errorWithStack(pipeErr)
		record.Status = domain.StatusFailed
		record.Message = &msg
		record.RetryCount = 0
		if updateErr := o.articles.Update(ctx, record); updateErr != nil {
			log.Error("failed to persist article failure", "url", canonical, "error", updateErr)
		}
		log.Error("error scraping article", "url", articleURL, "error", pipeErr)
		return nil
	}

	record.Status = domain.StatusSuccess
	if updateErr := o.articles.Update(ctx, record); updateErr != nil {
		log.Error("failed to persist article success", "url", canonical, "error", updateErr)
	}
	log.Info("successfully scraped article", "url", articleURL)
	return nil
}

// ProcessArticle runs the extract, rewrite and publish stages for one
// article, recording the raw extracted body on the record as it goes.
func (o *Orchestrator) ProcessArticle(
	ctx context.Context,
	sc *domain.Scraper,
	record *domain.ScrapedArticle,
	articleURL string,
) error {
	html, err := o.fetcher.FetchWithFallback(ctx, articleURL)
	if err != nil {
		return err
	}

	extracted, err := o.extractors(sc).Extract(ctx, articleURL, html)
	if err != nil {
		return err
	}
	record.ScrapedText = &extracted.Body

	rewritten := o.rewriter.Rewrite(ctx, extracted.Title, extracted.Body)

	return o.publisher.Publish(ctx, publish.Article{
		Title:       rewritten.Title,
		Body:        rewritten.Body,
		AuthorID:    sc.AuthorID,
		Category:    sc.Category,
		RegionID:    sc.RegionID,
		ImageCredit: extracted.ImageCredit,
		ImageURL:    extracted.ImageURL,
		Site:        sc.Site,
	})
}

// errorWithStack renders an error with the current stack for persisted
// failure messages.
func errorWithStack(err error) string {
	return fmt.Sprintf("%v\n\nStack:\n%s", err, debug.Stack())
}
