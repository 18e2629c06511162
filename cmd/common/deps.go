// Package common wires the application dependencies shared by all commands.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/newsmill/newsmill/internal/config"
	"github.com/newsmill/newsmill/internal/database"
	"github.com/newsmill/newsmill/internal/extract"
	"github.com/newsmill/newsmill/internal/fetcher"
	"github.com/newsmill/newsmill/internal/llm"
	"github.com/newsmill/newsmill/internal/logger"
	"github.com/newsmill/newsmill/internal/notify"
	"github.com/newsmill/newsmill/internal/pipeline"
	"github.com/newsmill/newsmill/internal/publish"
	"github.com/newsmill/newsmill/internal/rewrite"
)

// Deps holds the fully wired application dependencies.
type Deps struct {
	Config       *config.Config
	Logger       logger.Interface
	DB           *sqlx.DB
	Scrapers     *database.ScraperRepository
	Articles     *database.ArticleRepository
	Orchestrator *pipeline.Orchestrator
	Retry        *pipeline.RetryCoordinator
}

// NewDeps loads configuration and builds the full dependency graph. Callers
// must Close the result when done.
func NewDeps(debug bool) (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if debug {
		cfg.Logger.Level = logger.DebugLevel
		cfg.Logger.Development = true
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewPostgresConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	scraperRepo := database.NewScraperRepository(db)
	articleRepo := database.NewArticleRepository(db)

	renderer := fetcher.NewChromeRenderer(cfg.Fetcher.UserAgent, cfg.Fetcher.RenderTimeout)
	pageFetcher := fetcher.New(fetcher.Config{
		UserAgent:    cfg.Fetcher.UserAgent,
		Timeout:      cfg.Fetcher.Timeout,
		MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
	}, renderer, log)

	llmClient := llm.New(llm.Config{
		BaseURL:          cfg.LLM.BaseURL,
		APIKey:           cfg.LLM.APIKey,
		Models:           cfg.LLM.Models,
		Timeout:          cfg.LLM.Timeout,
		RateLimitBackoff: cfg.LLM.RateLimitBackoff,
	}, log)

	rewriter := rewrite.New(
		llmClient,
		rewrite.Strategy(cfg.Rewrite.Strategy),
		cfg.Rewrite.StyleHint,
		log,
	)

	publisher := publish.New(publish.Config{
		APIKey:  cfg.Publisher.APIKey,
		Timeout: cfg.Publisher.Timeout,
		BaseURL: cfg.Publisher.BaseURL,
	}, log)

	notifier := notify.New(notify.Config{
		WebhookURL: cfg.Notify.WebhookURL,
		Timeout:    cfg.Notify.Timeout,
	}, log)

	orchestrator := pipeline.New(pipeline.Deps{
		Fetcher:    pageFetcher,
		Extractors: extract.NewFactory(llmClient, log),
		Rewriter:   rewriter,
		Publisher:  publisher,
		Scrapers:   scraperRepo,
		Articles:   articleRepo,
		Notifier:   notifier,
		Logger:     log,
	}, pipeline.Options{
		StrictFailureAccounting: cfg.Pipeline.StrictFailureAccounting,
	})

	retryCoordinator := pipeline.NewRetryCoordinator(orchestrator, scraperRepo, articleRepo, log)

	return &Deps{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		Scrapers:     scraperRepo,
		Articles:     articleRepo,
		Orchestrator: orchestrator,
		Retry:        retryCoordinator,
	}, nil
}

// Close releases held resources.
func (d *Deps) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
