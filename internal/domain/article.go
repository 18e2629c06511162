package domain

import "time"

// DefaultMaxRetries bounds how many times a failed record may be re-driven.
const DefaultMaxRetries = 3

// ScrapedArticle represents one discovered and deduplicated article URL.
// The canonical URL (query string stripped) is unique; that uniqueness IS the
// dedup mechanism.
type ScrapedArticle struct {
	ID string `db:"id" json:"id"`

	// URL is the canonical article URL, query string and fragment stripped.
	URL string `db:"url" json:"url"`
	// QueryParams retains the original query string, if any.
	QueryParams *string `db:"query_params" json:"query_params,omitempty"`

	Category  string     `db:"category" json:"category"`
	ScrapedAt time.Time  `db:"scraped_at" json:"scraped_at"`
	Status    TaskStatus `db:"status" json:"status"`

	// ScrapedText holds the raw extracted body before rewriting.
	ScrapedText *string `db:"scraped_text" json:"scraped_text,omitempty"`
	// Message holds the failure message and stack trace on FAILED records.
	Message *string `db:"message" json:"message,omitempty"`

	// ScraperID references the owning scraper. Nullable at the database
	// layer: records survive as orphaned-but-retained history.
	ScraperID *int64 `db:"scraper_id" json:"scraper_id,omitempty"`

	RetryCount  int        `db:"retry_count" json:"retry_count"`
	MaxRetries  int        `db:"max_retries" json:"max_retries"`
	LastRetryAt *time.Time `db:"last_retry_at" json:"last_retry_at,omitempty"`
}

// CanRetry reports whether the record is eligible for another retry attempt.
func (a *ScrapedArticle) CanRetry() bool {
	return a.Status == StatusFailed && a.RetryCount < a.MaxRetries
}
