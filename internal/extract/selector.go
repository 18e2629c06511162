package extract

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
	"github.com/newsmill/newsmill/internal/selector"
)

// dataURIPrefix identifies inline data URIs used by lazy-load placeholders.
const dataURIPrefix = "data:"

// SelectorStrategy extracts article fields with the scraper's configured CSS
// selectors. This is the legacy extraction variant, kept for sites with
// stable markup where an LLM call per article is wasted money.
type SelectorStrategy struct {
	scraper *domain.Scraper
	logger  logger.Interface
}

// NewSelectorStrategy creates a selector-driven extraction strategy for the
// scraper.
func NewSelectorStrategy(sc *domain.Scraper, log logger.Interface) *SelectorStrategy {
	return &SelectorStrategy{scraper: sc, logger: log}
}

// Extract pulls title, body text, image and image credit out of the parsed
// document. Title and body are required; image fields are best-effort.
func (s *SelectorStrategy) Extract(_ context.Context, articleURL, html string) (*domain.ExtractedArticle, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ExtractionError{URL: articleURL, Reason: "unparseable HTML: " + err.Error()}
	}
	root := doc.Selection

	title := s.extractTitle(root)
	if title == "" {
		return nil, &ExtractionError{URL: articleURL, Reason: "title not found"}
	}

	body := s.extractBody(root)
	if body == "" {
		return nil, &ExtractionError{URL: articleURL, Reason: "body text not found"}
	}

	article := &domain.ExtractedArticle{Title: title, Body: body}
	article.ImageURL = s.extractImage(root, articleURL)
	article.ImageCredit = s.extractImageCredit(root)

	return article, nil
}

func (s *SelectorStrategy) extractTitle(root *goquery.Selection) string {
	if s.scraper.TitleSelector == nil {
		return ""
	}
	node := selector.Resolve(root, *s.scraper.TitleSelector)
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.Text())
}

// extractBody concatenates the text of every matched paragraph node with
// single spaces, scoped to the configured text container when present.
func (s *SelectorStrategy) extractBody(root *goquery.Selection) string {
	if s.scraper.TextSelector == nil {
		return ""
	}

	scope := root
	if s.scraper.TextContainer != nil && *s.scraper.TextContainer != "" {
		container := selector.Resolve(root, *s.scraper.TextContainer)
		if container == nil {
			return ""
		}
		scope = container
	}

	nodes := selector.ResolveAll(scope, *s.scraper.TextSelector)
	if nodes == nil {
		return ""
	}

	var parts []string
	nodes.Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, " ")
}

// extractImage resolves the article image URL, preferring data-src over src
// (the lazy-load pattern) and skipping inline data-URI placeholders by
// scanning sibling images for a real URL.
func (s *SelectorStrategy) extractImage(root *goquery.Selection, articleURL string) *string {
	if s.scraper.ImageSelector == nil {
		return nil
	}
	img := selector.Resolve(root, *s.scraper.ImageSelector)
	if img == nil {
		return nil
	}

	src := imageSource(img)
	if src == "" {
		return nil
	}

	if strings.HasPrefix(src, dataURIPrefix) {
		src = s.findSiblingImage(img)
		if src == "" {
			return nil
		}
	}

	resolved, err := domain.ResolveURL(articleURL, src)
	if err != nil {
		s.logger.Warn("dropping unresolvable image URL",
			"url", src, "article_url", articleURL)
		return nil
	}
	return &resolved
}

// findSiblingImage looks for a non-data-URI source among the sibling <img>
// tags of a placeholder image.
func (s *SelectorStrategy) findSiblingImage(img *goquery.Selection) string {
	var found string
	img.Parent().Find("img").EachWithBreak(func(_ int, sibling *goquery.Selection) bool {
		src := imageSource(sibling)
		if src != "" && !strings.HasPrefix(src, dataURIPrefix) {
			found = src
			return false
		}
		return true
	})
	return found
}

func (s *SelectorStrategy) extractImageCredit(root *goquery.Selection) *string {
	if s.scraper.ImageCreditSelector == nil {
		return nil
	}
	node := selector.Resolve(root, *s.scraper.ImageCreditSelector)
	if node == nil {
		return nil
	}
	credit := strings.TrimSpace(node.Text())
	if credit == "" {
		return nil
	}
	return &credit
}

// imageSource returns the image URL, preferring the lazy-load data-src
// attribute over src.
func imageSource(img *goquery.Selection) string {
	if src, ok := img.Attr("data-src"); ok && src != "" {
		return src
	}
	if src, ok := img.Attr("src"); ok {
		return src
	}
	return ""
}
