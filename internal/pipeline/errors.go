package pipeline

import "fmt"

// DiscoveryError describes a failed link-discovery phase: a configured
// section container that no longer matches, an article selector matching
// nothing, or items without resolvable hrefs. Discovery errors abort the
// whole run and are recorded against the scraper's health counters rather
// than any article record.
type DiscoveryError struct {
	Scraper string
	Reason  string
}

// Error returns the error message.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed for scraper %q: %s", e.Scraper, e.Reason)
}
