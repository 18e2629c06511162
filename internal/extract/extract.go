// Package extract turns fetched article HTML into structured fields. Two
// strategies coexist: selector-based extraction configured per scraper, and
// single-call LLM extraction over the raw HTML. A scraper selects its
// strategy through its configured variant.
package extract

import (
	"context"
	"fmt"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

// CompletionClient is the slice of the LLM client the extractor needs.
type CompletionClient interface {
	CompleteJSON(ctx context.Context, prompt string) (string, bool)
}

// Strategy extracts structured article fields from fetched HTML.
type Strategy interface {
	Extract(ctx context.Context, articleURL, html string) (*domain.ExtractedArticle, error)
}

// Factory builds the extraction strategy for a scraper configuration.
type Factory func(sc *domain.Scraper) Strategy

// NewFactory returns a factory that picks the strategy from the scraper's
// configured variant. Unknown variants default to LLM extraction.
func NewFactory(client CompletionClient, log logger.Interface) Factory {
	return func(sc *domain.Scraper) Strategy {
		if sc.Variant == domain.VariantSelector {
			return NewSelectorStrategy(sc, log)
		}
		return NewLLMStrategy(client, log)
	}
}

// ExtractionError describes a failed extraction. It aborts the per-article
// pipeline for that URL only, never the whole run.
type ExtractionError struct {
	URL    string
	Reason string
}

// Error returns the error message.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s", e.URL, e.Reason)
}
