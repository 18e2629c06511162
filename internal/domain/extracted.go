package domain

// ExtractedArticle holds the structured fields pulled from an article page.
// It is transient: produced by the extraction strategy, consumed by the
// rewriter and the publish step, never persisted as-is.
type ExtractedArticle struct {
	Title       string
	Body        string
	ImageURL    *string
	ImageCredit *string
}

// RewrittenArticle holds the rewritten title/body pair. The body is
// paragraph-tag HTML; the title fits the downstream 255-character limit.
type RewrittenArticle struct {
	Title string
	Body  string
}
