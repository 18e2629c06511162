package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/newsmill/newsmill/internal/domain"
)

// scraperColumns lists the columns selected for scraper rows.
const scraperColumns = `id, site, active, name, base_url, category, author_id, region_id,
	variant, section_container, article_item, href_selector,
	title_selector, text_container, text_selector, image_selector, image_credit_selector,
	last_run, last_success, last_error, total_runs, successful_runs, failed_runs,
	created_at, updated_at`

// ScraperRepository handles database operations for scraper configurations.
type ScraperRepository struct {
	db *sqlx.DB
}

// NewScraperRepository creates a new scraper repository.
func NewScraperRepository(db *sqlx.DB) *ScraperRepository {
	return &ScraperRepository{db: db}
}

// Create inserts a new scraper configuration.
func (r *ScraperRepository) Create(ctx context.Context, s *domain.Scraper) error {
	query := `
		INSERT INTO scrapers (site, active, name, base_url, category, author_id, region_id,
			variant, section_container, article_item, href_selector,
			title_selector, text_container, text_selector, image_selector, image_credit_selector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		s.Site,
		s.Active,
		s.Name,
		s.BaseURL,
		s.Category,
		s.AuthorID,
		s.RegionID,
		s.Variant,
		s.SectionContainer,
		s.ArticleItem,
		s.HrefSelector,
		s.TitleSelector,
		s.TextContainer,
		s.TextSelector,
		s.ImageSelector,
		s.ImageCreditSelector,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scraper: %w", err)
	}

	return nil
}

// GetByID retrieves a scraper by its ID.
func (r *ScraperRepository) GetByID(ctx context.Context, id int64) (*domain.Scraper, error) {
	var s domain.Scraper
	query := fmt.Sprintf("SELECT %s FROM scrapers WHERE id = $1", scraperColumns)

	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scraper %d: %w", id, err)
	}

	return &s, nil
}

// ListActive retrieves all active scrapers ordered by name.
func (r *ScraperRepository) ListActive(ctx context.Context) ([]*domain.Scraper, error) {
	var scrapers []*domain.Scraper
	query := fmt.Sprintf(
		"SELECT %s FROM scrapers WHERE active = TRUE ORDER BY name", scraperColumns)

	if err := r.db.SelectContext(ctx, &scrapers, query); err != nil {
		return nil, fmt.Errorf("failed to list active scrapers: %w", err)
	}

	return scrapers, nil
}

// List retrieves all scrapers ordered by name.
func (r *ScraperRepository) List(ctx context.Context) ([]*domain.Scraper, error) {
	var scrapers []*domain.Scraper
	query := fmt.Sprintf("SELECT %s FROM scrapers ORDER BY name", scraperColumns)

	if err := r.db.SelectContext(ctx, &scrapers, query); err != nil {
		return nil, fmt.Errorf("failed to list scrapers: %w", err)
	}

	return scrapers, nil
}

// Update persists the scraper's mutable fields, including health counters.
// The pipeline calls this unconditionally at the end of every run.
func (r *ScraperRepository) Update(ctx context.Context, s *domain.Scraper) error {
	query := `
		UPDATE scrapers
		SET active = $2,
			base_url = $3,
			category = $4,
			last_run = $5,
			last_success = $6,
			last_error = $7,
			total_runs = $8,
			successful_runs = $9,
			failed_runs = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.Active,
		s.BaseURL,
		s.Category,
		s.LastRun,
		s.LastSuccess,
		s.LastError,
		s.TotalRuns,
		s.SuccessfulRuns,
		s.FailedRuns,
	)
	if err != nil {
		return fmt.Errorf("failed to update scraper %d: %w", s.ID, err)
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
