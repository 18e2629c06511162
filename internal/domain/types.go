// Package domain provides domain models used across the application.
package domain

// TaskStatus represents the lifecycle state of a scraped article record.
type TaskStatus string

const (
	// StatusNotStarted is the initial state for records created outside a run.
	StatusNotStarted TaskStatus = "Not Started"
	// StatusInProgress marks a record whose pipeline is currently running.
	StatusInProgress TaskStatus = "In Progress"
	// StatusSuccess marks a record whose pipeline completed and published.
	StatusSuccess TaskStatus = "Success"
	// StatusFailed marks a record whose pipeline failed.
	StatusFailed TaskStatus = "Failed"
)

// Site identifies a downstream publishing site.
type Site string

// Downstream sites the pipeline can publish to.
const (
	SiteGovExec         Site = "govexec.news"
	SiteDefenseOne      Site = "defenseone.news"
	SiteGlobalTimes     Site = "globaltimes.news"
	SiteKoreaHerald     Site = "koreaherald.news"
	SiteKyivIndependent Site = "kyivindependent.news"
)

// Sites lists all known downstream sites.
var Sites = []Site{
	SiteGovExec,
	SiteDefenseOne,
	SiteGlobalTimes,
	SiteKoreaHerald,
	SiteKyivIndependent,
}

// Valid reports whether the site is one of the known downstream sites.
func (s Site) Valid() bool {
	for _, known := range Sites {
		if s == known {
			return true
		}
	}
	return false
}

// ExtractionVariant selects how article fields are extracted from HTML.
type ExtractionVariant string

const (
	// VariantSelector extracts fields with per-scraper CSS selectors.
	VariantSelector ExtractionVariant = "selector"
	// VariantLLM extracts fields with a single structured-JSON LLM call.
	VariantLLM ExtractionVariant = "llm"
)
