package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/newsmill/newsmill/internal/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const pqUniqueViolation = "23505"

// articleColumns lists the columns selected for scraped article rows.
const articleColumns = `id, url, query_params, category, scraped_at, status,
	scraped_text, message, scraper_id, retry_count, max_retries, last_retry_at`

// ArticleRepository handles database operations for scraped article records.
// Canonical-URL uniqueness on the url column is the dedup mechanism.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new article repository.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// Exists reports whether a record exists for the canonical URL.
func (r *ArticleRepository) Exists(ctx context.Context, canonicalURL string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM scraped_articles WHERE url = $1)`

	if err := r.db.GetContext(ctx, &exists, query, canonicalURL); err != nil {
		return false, fmt.Errorf("failed to check article existence: %w", err)
	}

	return exists, nil
}

// Create inserts a new scraped article record. Returns ErrDuplicateURL when a
// record with the same canonical URL already exists.
func (r *ArticleRepository) Create(ctx context.Context, a *domain.ScrapedArticle) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.ScrapedAt.IsZero() {
		a.ScrapedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = domain.StatusNotStarted
	}
	if a.MaxRetries == 0 {
		a.MaxRetries = domain.DefaultMaxRetries
	}

	query := `
		INSERT INTO scraped_articles (id, url, query_params, category, scraped_at, status,
			scraped_text, message, scraper_id, retry_count, max_retries, last_retry_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		a.ID,
		a.URL,
		a.QueryParams,
		a.Category,
		a.ScrapedAt,
		a.Status,
		a.ScrapedText,
		a.Message,
		a.ScraperID,
		a.RetryCount,
		a.MaxRetries,
		a.LastRetryAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateURL
		}
		return fmt.Errorf("failed to create scraped article: %w", err)
	}

	return nil
}

// GetByID retrieves a scraped article record by its ID.
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.ScrapedArticle, error) {
	var a domain.ScrapedArticle
	query := fmt.Sprintf("SELECT %s FROM scraped_articles WHERE id = $1", articleColumns)

	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scraped article %s: %w", id, err)
	}

	return &a, nil
}

// ListByStatus retrieves records with the given status, newest first.
func (r *ArticleRepository) ListByStatus(
	ctx context.Context,
	status domain.TaskStatus,
	limit int,
) ([]*domain.ScrapedArticle, error) {
	var articles []*domain.ScrapedArticle
	query := fmt.Sprintf(
		"SELECT %s FROM scraped_articles WHERE status = $1 ORDER BY scraped_at DESC LIMIT $2",
		articleColumns,
	)

	if err := r.db.SelectContext(ctx, &articles, query, status, limit); err != nil {
		return nil, fmt.Errorf("failed to list scraped articles: %w", err)
	}

	return articles, nil
}

// ListRetryable retrieves failed records that have retry attempts left,
// oldest first.
func (r *ArticleRepository) ListRetryable(ctx context.Context, limit int) ([]*domain.ScrapedArticle, error) {
	var articles []*domain.ScrapedArticle
	query := fmt.Sprintf(`
		SELECT %s FROM scraped_articles
		WHERE status = $1 AND retry_count < max_retries
		ORDER BY scraped_at ASC
		LIMIT $2`, articleColumns)

	if err := r.db.SelectContext(ctx, &articles, query, domain.StatusFailed, limit); err != nil {
		return nil, fmt.Errorf("failed to list retryable articles: %w", err)
	}

	return articles, nil
}

// Update persists the record's mutable pipeline fields.
func (r *ArticleRepository) Update(ctx context.Context, a *domain.ScrapedArticle) error {
	query := `
		UPDATE scraped_articles
		SET status = $2,
			scraped_text = $3,
			message = $4,
			retry_count = $5,
			last_retry_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		a.ID,
		a.Status,
		a.ScrapedText,
		a.Message,
		a.RetryCount,
		a.LastRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update scraped article %s: %w", a.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
