// Package publish posts rewritten articles to the downstream site's internal
// creation API.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

const (
	// maxSnippetBytes bounds the response snippet kept on publish errors.
	maxSnippetBytes = 300
	// maxImageCreditLength is the downstream image credit column limit.
	maxImageCreditLength = 255
	// titleLogPreview bounds the title length in log lines.
	titleLogPreview = 60
)

// PublishError describes a rejected or failed publish call. The response
// snippet carries enough of the downstream error for diagnostics.
type PublishError struct {
	URL        string
	StatusCode int
	Snippet    string
	Err        error
}

// Error returns the error message.
func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error posting article to %s: HTTP %d: %s", e.URL, e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("request failed posting article to %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *PublishError) Unwrap() error {
	return e.Err
}

// Article is the payload for the downstream create-article endpoint.
type Article struct {
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	AuthorID    int64       `json:"author"`
	Category    string      `json:"category"`
	RegionID    *int64      `json:"region"`
	ImageCredit *string     `json:"image_credit"`
	ImageURL    *string     `json:"image_url"` // the receiving app downloads it
	Site        domain.Site `json:"site"`
}

// Config holds publisher configuration.
type Config struct {
	APIKey  string
	Timeout time.Duration
	// BaseURL overrides the https://{site} target; used in tests.
	BaseURL string
}

// Client posts articles to downstream sites. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     logger.Interface
}

// New creates a publish client.
func New(cfg Config, log logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		logger:     log,
	}
}

// Publish posts the article to the target site's internal creation API.
func (c *Client) Publish(ctx context.Context, article Article) error {
	apiURL := c.endpoint(article.Site)

	if credit := article.ImageCredit; credit != nil {
		truncated := truncateRunes(*credit, maxImageCreditLength)
		article.ImageCredit = &truncated
	}

	payload, err := json.Marshal(article)
	if err != nil {
		return &PublishError{URL: apiURL, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return &PublishError{URL: apiURL, Err: err}
	}
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PublishError{URL: apiURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxSnippetBytes))
		return &PublishError{URL: apiURL, StatusCode: resp.StatusCode, Snippet: string(snippet)}
	}

	c.logger.Info("article posted",
		"url", apiURL, "title", truncateRunes(article.Title, titleLogPreview))
	return nil
}

// endpoint builds the create-article URL for a site, honoring the test
// override when set.
func (c *Client) endpoint(site domain.Site) string {
	if c.baseURL != "" {
		return c.baseURL + "/api/internal/create-article/"
	}
	return fmt.Sprintf("https://%s/api/internal/create-article/", site)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
