package config

import "time"

// Default configuration values.
const (
	// DefaultWorkers is the default worker pool size for scraper runs.
	DefaultWorkers = 3
	// DefaultFetchTimeout is the HTTP fetch timeout.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultRenderTimeout is the headless-browser navigation timeout.
	DefaultRenderTimeout = 60 * time.Second
	// DefaultLLMTimeout is the chat-completion request timeout.
	DefaultLLMTimeout = 60 * time.Second
	// DefaultRateLimitBackoff is the pause before trying the next model
	// after a rate-limit response.
	DefaultRateLimitBackoff = 1 * time.Second
	// DefaultPublishTimeout is the downstream API request timeout.
	DefaultPublishTimeout = 30 * time.Second
	// DefaultNotifyTimeout is the webhook notification timeout.
	DefaultNotifyTimeout = 10 * time.Second
	// DefaultMaxBodyBytes limits the size of fetched page responses.
	DefaultMaxBodyBytes = 10 * 1024 * 1024 // 10 MB
	// DefaultCronSpec runs all active scrapers at the top of every hour.
	DefaultCronSpec = "0 * * * *"

	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 30 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// DefaultUserAgent is the realistic browser user agent sent on fetches.
// Several target sites block obvious bot user agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultLLMBaseURL is the OpenAI-compatible chat-completion endpoint.
const DefaultLLMBaseURL = "https://api.groq.com/openai/v1/chat/completions"

// DefaultModels is the ordered model fallback list.
var DefaultModels = []string{
	"llama-3.1-8b-instant",
	"qwen/qwen3-32b",
}

// applyDefaults fills zero-value fields with defaults.
func applyDefaults(cfg *Config) {
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMBaseURL
	}
	if len(cfg.LLM.Models) == 0 {
		cfg.LLM.Models = append([]string(nil), DefaultModels...)
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = DefaultLLMTimeout
	}
	if cfg.LLM.RateLimitBackoff <= 0 {
		cfg.LLM.RateLimitBackoff = DefaultRateLimitBackoff
	}

	if cfg.Publisher.Timeout <= 0 {
		cfg.Publisher.Timeout = DefaultPublishTimeout
	}

	if cfg.Fetcher.UserAgent == "" {
		cfg.Fetcher.UserAgent = DefaultUserAgent
	}
	if cfg.Fetcher.Timeout <= 0 {
		cfg.Fetcher.Timeout = DefaultFetchTimeout
	}
	if cfg.Fetcher.RenderTimeout <= 0 {
		cfg.Fetcher.RenderTimeout = DefaultRenderTimeout
	}
	if cfg.Fetcher.MaxBodyBytes <= 0 {
		cfg.Fetcher.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Rewrite.Strategy == "" {
		cfg.Rewrite.Strategy = "unified"
	}

	if cfg.Pipeline.Workers <= 0 {
		cfg.Pipeline.Workers = DefaultWorkers
	}

	if cfg.Scheduler.CronSpec == "" {
		cfg.Scheduler.CronSpec = DefaultCronSpec
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultServerAddress
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = defaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = defaultServerWriteTimeout
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = defaultServerIdleTimeout
	}

	if cfg.Notify.Timeout <= 0 {
		cfg.Notify.Timeout = DefaultNotifyTimeout
	}
}
