package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

// maxExtractHTMLBytes bounds how much page HTML is sent to the LLM. Article
// content sits near the top of the document on every target site.
const maxExtractHTMLBytes = 12000

const extractPromptFormat = `You are an expert at extracting structured content from news article HTML.

Extract the following fields from the HTML below and return ONLY valid JSON, no explanation:
- title: the article headline
- body: the full article body text (clean text only, no HTML tags)
- image_url: the URL of the main article image (absolute URL if possible, otherwise as-is). null if not found.
- image_credit: the image credit or caption text. null if not found.

HTML:
%s

Return format:
{
  "title": "...",
  "body": "...",
  "image_url": "...",
  "image_credit": "..."
}`

// LLMStrategy extracts article fields with a single structured-JSON LLM call.
type LLMStrategy struct {
	client CompletionClient
	logger logger.Interface
}

// NewLLMStrategy creates an LLM-backed extraction strategy.
func NewLLMStrategy(client CompletionClient, log logger.Interface) *LLMStrategy {
	return &LLMStrategy{client: client, logger: log}
}

type extractedFields struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ImageURL    string `json:"image_url"`
	ImageCredit string `json:"image_credit"`
}

// Extract sends the leading chunk of the page HTML to the LLM and parses the
// structured response. A response missing title or body is a hard failure.
func (s *LLMStrategy) Extract(ctx context.Context, articleURL, html string) (*domain.ExtractedArticle, error) {
	prompt := fmt.Sprintf(extractPromptFormat, truncateUTF8(html, maxExtractHTMLBytes))

	raw, ok := s.client.CompleteJSON(ctx, prompt)
	if !ok {
		return nil, &ExtractionError{URL: articleURL, Reason: "LLM returned no data"}
	}

	var fields extractedFields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, &ExtractionError{
			URL:    articleURL,
			Reason: fmt.Sprintf("unparseable LLM response: %v", err),
		}
	}

	if fields.Title == "" || fields.Body == "" {
		return nil, &ExtractionError{URL: articleURL, Reason: "LLM extraction missing title or body"}
	}

	article := &domain.ExtractedArticle{
		Title: fields.Title,
		Body:  fields.Body,
	}

	if fields.ImageURL != "" {
		resolved, err := domain.ResolveURL(articleURL, fields.ImageURL)
		if err != nil {
			s.logger.Warn("dropping unresolvable image URL",
				"url", fields.ImageURL, "article_url", articleURL)
		} else {
			article.ImageURL = &resolved
		}
	}
	if fields.ImageCredit != "" {
		credit := fields.ImageCredit
		article.ImageCredit = &credit
	}

	return article, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
