// Package llm provides a chat-completion client for an OpenAI-compatible
// backend, with automatic fallback across an ordered model list on rate
// limits and other per-model failures.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newsmill/newsmill/internal/logger"
)

// errRateLimited marks an HTTP 429 from the backend, which drives the
// model fallthrough with backoff.
var errRateLimited = errors.New("rate limited")

// maxErrorBodyBytes bounds how much of an error response is kept for
// diagnostics.
const maxErrorBodyBytes = 512

// Config holds the chat-completion backend configuration.
type Config struct {
	BaseURL string
	APIKey  string
	// Models is the ordered fallback list; the first model that answers
	// wins.
	Models           []string
	Timeout          time.Duration
	RateLimitBackoff time.Duration
}

// Client calls the chat-completion endpoint. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	models     []string
	backoff    time.Duration
	logger     logger.Interface
}

// New creates a new chat-completion client.
func New(cfg Config, log logger.Interface) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		models:     cfg.Models,
		backoff:    cfg.RateLimitBackoff,
		logger:     log,
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt through the model fallback chain and returns the
// completion text. The second return value is false when every model failed;
// exhaustion is a first-class outcome, not an error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, bool) {
	return c.completeWithFallback(ctx, prompt, false)
}

// CompleteJSON is like Complete but requests a structured JSON object
// response from the backend.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (string, bool) {
	return c.completeWithFallback(ctx, prompt, true)
}

func (c *Client) completeWithFallback(ctx context.Context, prompt string, jsonMode bool) (string, bool) {
	var lastErr error

	for _, model := range c.models {
		c.logger.Debug("attempting LLM call", "model", model)

		content, err := c.chat(ctx, model, prompt, jsonMode)
		if err == nil {
			return content, true
		}
		lastErr = err

		if errors.Is(err, errRateLimited) {
			c.logger.Warn("rate limited, trying next model",
				"model", model, "error", err)
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				c.logger.Error("LLM call canceled", "error", ctx.Err())
				return "", false
			}
			continue
		}

		c.logger.Error("LLM call failed, trying next model",
			"model", model, "error", err)
	}

	c.logger.Error("all models exhausted", "error", lastErr)
	return "", false
}

// chat performs a single chat-completion request against one model.
func (c *Client) chat(ctx context.Context, model, prompt string, jsonMode bool) (string, error) {
	payload := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	if jsonMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w on model %s", errRateLimited, model)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("HTTP %d from model %s: %s", resp.StatusCode, model, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices from model %s", model)
	}

	return parsed.Choices[0].Message.Content, nil
}
