// Package api implements the operational HTTP API. It exposes scraper health,
// scraped article records, and an on-demand retry endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsmill/newsmill/internal/domain"
	"github.com/newsmill/newsmill/internal/logger"
)

const defaultListLimit = 50

// ScraperLister reads scraper configurations.
type ScraperLister interface {
	List(ctx context.Context) ([]*domain.Scraper, error)
}

// ArticleReader reads scraped article records.
type ArticleReader interface {
	GetByID(ctx context.Context, id string) (*domain.ScrapedArticle, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus, limit int) ([]*domain.ScrapedArticle, error)
}

// Retrier re-runs a failed article record.
type Retrier interface {
	Retry(ctx context.Context, record *domain.ScrapedArticle) bool
}

// SetupRouter creates and configures the Gin router with all routes.
func SetupRouter(
	log logger.Interface,
	scrapers ScraperLister,
	articles ArticleReader,
	retrier Retrier,
) *gin.Engine {
	// Disable Gin's default logging
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handlers{
		scrapers: scrapers,
		articles: articles,
		retrier:  retrier,
		logger:   log,
	}

	v1 := router.Group("/api/v1")
	v1.GET("/scrapers", h.listScrapers)
	v1.GET("/articles", h.listArticles)
	v1.GET("/articles/:id", h.getArticle)
	v1.POST("/articles/:id/retry", h.retryArticle)

	return router
}

// loggingMiddleware creates a middleware that logs HTTP requests
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		log.Info("HTTP Request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", statusCode,
			"latency", latency,
		)
	}
}
