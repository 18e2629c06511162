// Package selector resolves multi-candidate CSS selector expressions against
// parsed documents. Selector expressions are comma-separated lists of
// alternatives: site markup changes over time, and stacking fallback
// selectors keeps scrapers working across redesigns.
package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Resolve tries each candidate selector in left-to-right order and returns
// the first element matched. Candidates with invalid syntax are skipped.
// Returns nil when no candidate matches.
func Resolve(root *goquery.Selection, expr string) *goquery.Selection {
	return resolve(root, expr, false)
}

// ResolveAll is like Resolve but returns every element matched by the first
// non-empty candidate. Matches from different candidates are never merged.
func ResolveAll(root *goquery.Selection, expr string) *goquery.Selection {
	return resolve(root, expr, true)
}

func resolve(root *goquery.Selection, expr string, all bool) *goquery.Selection {
	if root == nil {
		return nil
	}

	for _, candidate := range strings.Split(expr, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}

		matcher, err := cascadia.Compile(candidate)
		if err != nil {
			// Invalid candidate, try the next one.
			continue
		}

		matched := root.FindMatcher(matcher)
		if matched.Length() == 0 {
			continue
		}
		if all {
			return matched
		}
		return matched.First()
	}

	return nil
}
