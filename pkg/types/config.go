package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Reddit
	// and most news sites reject the default Go client string.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SubredditSource configures one subreddit to poll.
type SubredditSource struct {
	// Name is the subreddit name without the r/ prefix (e.g. "netsec").
	Name string `json:"name" yaml:"name"`

	// Sort is the listing order: hot, new, top, or rising (default hot).
	Sort string `json:"sort,omitempty" yaml:"sort,omitempty"`

	// Time is the window for top listings: hour, day, week, month, year,
	// or all (default day).
	Time string `json:"time,omitempty" yaml:"time,omitempty"`

	// Limit is the maximum number of posts to fetch (default 10).
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// FetchConfig holds settings for the content acquisition stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Subreddits lists the subreddits to poll via the Reddit JSON API.
	Subreddits []SubredditSource `json:"subreddits" yaml:"subreddits"`

	// ArticleURLs lists news listing pages to scan for article links.
	ArticleURLs []string `json:"article_urls" yaml:"article_urls"`

	// MaxArticlesPerSource caps articles fetched per listing page
	// (default 5).
	MaxArticlesPerSource int `json:"max_articles_per_source" yaml:"max_articles_per_source"`

	// ContentDir is the directory where content snapshots are written.
	ContentDir string `json:"content_dir" yaml:"content_dir"`
}

// AIBackendKind selects the generative model backend.
type AIBackendKind string

const (
	BackendOllama AIBackendKind = "ollama"
	BackendClaude AIBackendKind = "claude"
	BackendGemini AIBackendKind = "gemini"
)

// AIConfig holds settings for the generative model backend. Sampling
// parameters are fixed per backend and are deliberately not exposed here:
// structured-output extraction always runs at low temperature.
type AIConfig struct {
	// Backend selects the model backend: ollama, claude, or gemini.
	Backend AIBackendKind `json:"backend" yaml:"backend"`

	// Model is the model identifier (e.g. "llama3.1").
	Model string `json:"model" yaml:"model"`

	// BaseURL is the backend endpoint for local backends
	// (default "http://localhost:11434" for Ollama).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey authenticates hosted backends (Claude, Gemini).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single generation call (default 2m). Model calls
	// routinely run tens of seconds.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// AnalyzeConfig holds settings for the analysis pipeline. The character
// budgets are a cost/latency control: classification sees only enough text
// to categorize, extraction sees enough to be useful.
type AnalyzeConfig struct {
	AIConfig `yaml:",inline"`

	// ClassifyBudget is the maximum content length, in characters,
	// submitted with the classification instruction (default 3000).
	ClassifyBudget int `json:"classify_budget" yaml:"classify_budget"`

	// ExtractBudget is the maximum content length, in characters,
	// submitted with an extraction instruction (default 8000).
	ExtractBudget int `json:"extract_budget" yaml:"extract_budget"`

	// ClassifyMaxTokens caps the classification reply (default 500).
	ClassifyMaxTokens int `json:"classify_max_tokens" yaml:"classify_max_tokens"`

	// ExtractMaxTokens caps the extraction reply (default 3000).
	ExtractMaxTokens int `json:"extract_max_tokens" yaml:"extract_max_tokens"`
}

// ReportConfig holds settings for report generation and persistence.
type ReportConfig struct {
	// OutputDir is the directory for rendered reports and raw data dumps
	// (default "reports").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Analyze AnalyzeConfig `json:"analyze" yaml:"analyze"`
	Report  ReportConfig  `json:"report" yaml:"report"`
}
