package domain

import (
	"fmt"
	"net/url"
)

// CanonicalizeURL strips the query string and fragment from a URL, returning
// the canonical form used as the dedup key plus the original query string (nil
// when absent). Two URLs differing only by tracking parameters collapse to
// the same canonical form; that is a deliberate content-identity policy.
func CanonicalizeURL(raw string) (canonical string, queryParams *string, err error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("parse url %q: %w", raw, err)
	}

	if parsed.RawQuery != "" {
		q := parsed.RawQuery
		queryParams = &q
	}

	parsed.RawQuery = ""
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String(), queryParams, nil
}

// ResolveURL joins a possibly relative reference against a base URL,
// returning an absolute URL.
func ResolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", ref, err)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
