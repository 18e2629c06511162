// Package rewrite turns extracted article text into the publication voice via
// the LLM backend. A nil LLM result degrades gracefully to the original
// title/body; rewriting never fails an article.
package rewrite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

// MaxTitleLength is the downstream title column limit. Longer titles are
// hard-truncated with a logged warning.
const MaxTitleLength = 255

// DefaultStyleHint is the rewriting voice used when none is configured.
const DefaultStyleHint = "an unbiased journalist with a strong mix of tabloid / viral BuzzFeed style"

// Strategy selects how many LLM calls a rewrite costs.
type Strategy string

const (
	// StrategyUnified rewrites title and body in one LLM call.
	StrategyUnified Strategy = "unified"
	// StrategySplit rewrites title and body in separate calls.
	StrategySplit Strategy = "split"
)

// CompletionClient is the slice of the LLM client the rewriter needs.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, bool)
	CompleteJSON(ctx context.Context, prompt string) (string, bool)
}

// Rewriter rewrites extracted articles.
type Rewriter struct {
	client    CompletionClient
	strategy  Strategy
	styleHint string
	logger    logger.Interface
}

// New creates a rewriter. An empty style hint falls back to the default
// voice; an unknown strategy falls back to unified.
func New(client CompletionClient, strategy Strategy, styleHint string, log logger.Interface) *Rewriter {
	if styleHint == "" {
		styleHint = DefaultStyleHint
	}
	if strategy != StrategySplit {
		strategy = StrategyUnified
	}
	return &Rewriter{
		client:    client,
		strategy:  strategy,
		styleHint: styleHint,
		logger:    log,
	}
}

const unifiedPromptFormat = `Rephrase the following news article in two parts.

Writing style: %s

Rules:
- Title: short, punchy, do not explain, just respond with the rephrased title
- Body: HTML format using only <p> tags, minimum 5 paragraphs, first paragraph must be a huge cliffhanger

Return ONLY valid JSON, no explanation:
{
  "title": "...",
  "body": "<p>...</p><p>...</p>"
}

Original title: %s

Original body: %s`

const titlePromptFormat = `Rephrase the following news article title.

Writing style: %s

Rules: short, punchy, do not explain, respond with ONLY the rephrased title.

Original title: %s`

const bodyPromptFormat = `Rephrase the following news article body.

Writing style: %s

Rules: HTML format using only <p> tags, minimum 5 paragraphs, first paragraph must be a huge cliffhanger. Respond with ONLY the HTML.

Original body: %s`

// Rewrite produces the rewritten title/body pair. Fields the LLM could not
// produce fall back to the originals.
func (r *Rewriter) Rewrite(ctx context.Context, title, body string) domain.RewrittenArticle {
	var rewritten domain.RewrittenArticle
	if r.strategy == StrategySplit {
		rewritten = r.rewriteSplit(ctx, title, body)
	} else {
		rewritten = r.rewriteUnified(ctx, title, body)
	}

	rewritten.Title = r.truncateTitle(rewritten.Title)
	return rewritten
}

// rewriteUnified rewrites both fields in a single call to save on API usage.
func (r *Rewriter) rewriteUnified(ctx context.Context, title, body string) domain.RewrittenArticle {
	prompt := fmt.Sprintf(unifiedPromptFormat, r.styleHint, title, body)

	raw, ok := r.client.CompleteJSON(ctx, prompt)
	if !ok {
		r.logger.Info("rewrite returned no data, keeping original text")
		return domain.RewrittenArticle{Title: title, Body: body}
	}

	var fields struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		r.logger.Warn("unparseable rewrite response, keeping original text",
			"error", err)
		return domain.RewrittenArticle{Title: title, Body: body}
	}

	result := domain.RewrittenArticle{Title: fields.Title, Body: fields.Body}
	if result.Title == "" {
		result.Title = title
	}
	if result.Body == "" {
		result.Body = body
	}
	return result
}

func (r *Rewriter) rewriteSplit(ctx context.Context, title, body string) domain.RewrittenArticle {
	result := domain.RewrittenArticle{Title: title, Body: body}

	if newTitle, ok := r.client.Complete(ctx, fmt.Sprintf(titlePromptFormat, r.styleHint, title)); ok && newTitle != "" {
		result.Title = newTitle
	} else {
		r.logger.Info("title rewrite returned no data, keeping original title")
	}

	if newBody, ok := r.client.Complete(ctx, fmt.Sprintf(bodyPromptFormat, r.styleHint, body)); ok && newBody != "" {
		result.Body = newBody
	} else {
		r.logger.Info("body rewrite returned no data, keeping original body")
	}

	return result
}

// truncateTitle enforces the downstream title limit. Truncation loses data
// silently downstream, so it must at least be observable in the logs.
func (r *Rewriter) truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxTitleLength {
		return title
	}

	r.logger.Warn("title truncated", "title", string(runes[:60])+"...")
	return string(runes[:MaxTitleLength])
}
