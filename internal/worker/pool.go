// Package worker provides a bounded pool for running scrapers in parallel.
// Work is partitioned at the granularity of one scraper configuration per
// worker, never finer: articles within a run stay in discovery order.
package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

// ScraperRunner executes one full scrape run.
type ScraperRunner interface {
	Run(ctx context.Context, sc *domain.Scraper)
}

// Pool runs scraper configurations across a bounded set of workers.
type Pool struct {
	size   int
	runner ScraperRunner
	logger logger.Interface

	processed atomic.Int64
}

// NewPool creates a pool with the given worker count.
func NewPool(size int, runner ScraperRunner, log logger.Interface) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{size: size, runner: runner, logger: log}
}

// RunAll processes every scraper, at most size at a time, and blocks until
// all runs finish. Context cancellation stops new submissions; runs already
// started are left to complete.
func (p *Pool) RunAll(ctx context.Context, scrapers []*domain.Scraper) {
	sem := make(chan struct{}, p.size)
	var wg sync.WaitGroup

	for _, sc := range scrapers {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			p.logger.Warn("context canceled, not submitting remaining scrapers")
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(sc *domain.Scraper) {
			defer func() {
				<-sem
				wg.Done()
			}()

			p.logger.Info("starting scraper", "scraper", sc.Name)
			p.runner.Run(ctx, sc)
			p.processed.Add(1)
			p.logger.Info("finished scraper", "scraper", sc.Name)
		}(sc)
	}

	wg.Wait()
}

// Processed returns how many scraper runs have completed.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}
