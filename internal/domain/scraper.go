package domain

import "time"

// percentMultiplier converts a ratio to a percentage.
const percentMultiplier = 100

// Scraper represents one site/section crawl configuration, including its
// health counters. Counters are mutated by every pipeline run; rows are never
// hard-deleted by the pipeline (deactivation is a soft flag).
type Scraper struct {
	ID       int64  `db:"id" json:"id"`
	Site     Site   `db:"site" json:"site"`
	Active   bool   `db:"active" json:"active"`
	Name     string `db:"name" json:"name"`
	BaseURL  string `db:"base_url" json:"base_url"`
	Category string `db:"category" json:"category"`

	// Publishing identity on the downstream site.
	AuthorID int64  `db:"author_id" json:"author_id"`
	RegionID *int64 `db:"region_id" json:"region_id,omitempty"`

	// Variant selects the extraction strategy for article pages.
	Variant ExtractionVariant `db:"variant" json:"variant"`

	// Link discovery selectors. Each selector is a comma-separated list of
	// alternatives tried in order; site markup changes over time.
	SectionContainer *string `db:"section_container" json:"section_container,omitempty"`
	ArticleItem      string  `db:"article_item" json:"article_item"`
	HrefSelector     string  `db:"href_selector" json:"href_selector"`

	// Selector-variant extraction fields. Unused by the LLM variant.
	TitleSelector       *string `db:"title_selector" json:"title_selector,omitempty"`
	TextContainer       *string `db:"text_container" json:"text_container,omitempty"`
	TextSelector        *string `db:"text_selector" json:"text_selector,omitempty"`
	ImageSelector       *string `db:"image_selector" json:"image_selector,omitempty"`
	ImageCreditSelector *string `db:"image_credit_selector" json:"image_credit_selector,omitempty"`

	// Health tracking.
	LastRun        *time.Time `db:"last_run" json:"last_run,omitempty"`
	LastSuccess    *time.Time `db:"last_success" json:"last_success,omitempty"`
	LastError      *string    `db:"last_error" json:"last_error,omitempty"`
	TotalRuns      int        `db:"total_runs" json:"total_runs"`
	SuccessfulRuns int        `db:"successful_runs" json:"successful_runs"`
	FailedRuns     int        `db:"failed_runs" json:"failed_runs"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SuccessRate returns the percentage of successful runs, 0 when the scraper
// has never run.
func (s *Scraper) SuccessRate() float64 {
	if s.TotalRuns == 0 {
		return 0
	}
	return float64(s.SuccessfulRuns) / float64(s.TotalRuns) * percentMultiplier
}

// Deactivate soft-disables the scraper.
func (s *Scraper) Deactivate() {
	s.Active = false
}
