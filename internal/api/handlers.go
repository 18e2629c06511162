package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsmill/newsmill/internal/database"
	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

type handlers struct {
	scrapers ScraperLister
	articles ArticleReader
	retrier  Retrier
	logger   logger.Interface
}

// scraperView is the wire shape of a scraper in API responses.
type scraperView struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Site           domain.Site `json:"site"`
	BaseURL        string      `json:"base_url"`
	Variant        string      `json:"variant"`
	Active         bool        `json:"active"`
	TotalRuns      int         `json:"total_runs"`
	SuccessfulRuns int         `json:"successful_runs"`
	FailedRuns     int         `json:"failed_runs"`
	SuccessRate    float64     `json:"success_rate"`
	LastRun        *string     `json:"last_run"`
	LastSuccess    *string     `json:"last_success"`
	LastError      *string     `json:"last_error"`
}

func (h *handlers) listScrapers(c *gin.Context) {
	list, err := h.scrapers.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list scrapers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list scrapers"})
		return
	}

	views := make([]scraperView, 0, len(list))
	for _, sc := range list {
		views = append(views, scraperView{
			ID:             sc.ID,
			Name:           sc.Name,
			Site:           sc.Site,
			BaseURL:        sc.BaseURL,
			Variant:        string(sc.Variant),
			Active:         sc.Active,
			TotalRuns:      sc.TotalRuns,
			SuccessfulRuns: sc.SuccessfulRuns,
			FailedRuns:     sc.FailedRuns,
			SuccessRate:    sc.SuccessRate(),
			LastRun:        formatTimePtr(sc.LastRun),
			LastSuccess:    formatTimePtr(sc.LastSuccess),
			LastError:      sc.LastError,
		})
	}

	c.JSON(http.StatusOK, gin.H{"scrapers": views})
}

func (h *handlers) listArticles(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	ctx := c.Request.Context()
	status := domain.TaskStatus(c.Query("status"))

	var (
		records []*domain.ScrapedArticle
		err     error
	)
	switch status {
	case "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	case domain.StatusNotStarted, domain.StatusInProgress, domain.StatusSuccess, domain.StatusFailed:
		records, err = h.articles.ListByStatus(ctx, status, limit)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	if err != nil {
		h.logger.Error("failed to list articles", "status", status, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": records})
}

func (h *handlers) getArticle(c *gin.Context) {
	record, err := h.articles.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.logger.Error("failed to load article", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *handlers) retryArticle(c *gin.Context) {
	ctx := c.Request.Context()

	record, err := h.articles.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		h.logger.Error("failed to load article", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}

	if !record.CanRetry() {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "article is not retryable",
			"status":      record.Status,
			"retry_count": record.RetryCount,
			"max_retries": record.MaxRetries,
		})
		return
	}

	recovered := h.retrier.Retry(ctx, record)
	c.JSON(http.StatusOK, gin.H{
		"id":        record.ID,
		"recovered": recovered,
		"status":    record.Status,
	})
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
