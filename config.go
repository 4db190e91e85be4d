package bookmarks

import "time"

// DefaultContainerTag files imported tweets when no project is selected.
const DefaultContainerTag = "sm_project_twitter_bookmarks"

// Config holds all configuration for the importer.
type Config struct {
	// Proxy is an optional proxy URL for requests to x.com.
	Proxy string

	// RateLimitWait is the first wait after a 429. Each further 429 doubles it.
	// Default: 60s.
	RateLimitWait time.Duration

	// RateLimitMaxWait caps the doubled wait. Zero means no ceiling.
	RateLimitMaxWait time.Duration

	// RateLimitMaxRetries caps consecutive 429 retries within one run.
	// Zero means retry indefinitely.
	RateLimitMaxRetries int

	// PageDelay is the pause between successive bookmark pages.
	// Default: 1s.
	PageDelay time.Duration

	// MaxPages stops a run after this many pages. Zero means no limit.
	MaxPages int

	// DefaultContainerTag is used when the run has no selected project.
	DefaultContainerTag string

	// OperationID overrides the compiled-in Bookmarks operation ID.
	// An ID observed in live traffic takes precedence over both.
	OperationID string
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *Config) defaults() {
	if cfg.RateLimitWait == 0 {
		cfg.RateLimitWait = 60 * time.Second
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = time.Second
	}
	if cfg.DefaultContainerTag == "" {
		cfg.DefaultContainerTag = DefaultContainerTag
	}
}
