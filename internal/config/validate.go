package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Credentials are not required
// here so commands that only read artifacts work without them; see
// ValidateIndexer.
func (c *Config) Validate() error {
	if err := c.validateIndexerSettings(); err != nil {
		return err
	}
	if err := c.validatePolling(); err != nil {
		return err
	}
	if err := c.validateVideoSource(); err != nil {
		return err
	}
	if c.Extraction.PageLimit > maxPageLimit {
		return fmt.Errorf("extraction.page_limit must be at most %d", maxPageLimit)
	}
	if topic := c.Notifications.NtfyTopic; topic != "" {
		parsed, err := url.Parse(topic)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("notifications.ntfy_topic %q must be a full URL such as https://ntfy.sh/my-topic", topic)
		}
	}
	return c.validateLogging()
}

// ValidateIndexer checks that indexing service credentials are present.
func (c *Config) ValidateIndexer() error {
	if c.Indexer.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/pcsteps/config.toml"
		}
		return fmt.Errorf("indexer.api_key is required. Set %s env var or edit %s (create with 'pcsteps config init')", indexerAPIKeyEnv, defaultPath)
	}
	return nil
}

func (c *Config) validateIndexerSettings() error {
	parsed, err := url.Parse(c.Indexer.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("indexer.base_url %q is not an absolute URL", c.Indexer.BaseURL)
	}
	if c.Indexer.RequestsPerSecond < 0 {
		return errors.New("indexer.requests_per_second must be zero (unlimited) or positive")
	}
	return nil
}

func (c *Config) validatePolling() error {
	if c.Polling.TimeoutSeconds > 0 && c.Polling.TimeoutSeconds < c.Polling.TaskIntervalSeconds {
		return errors.New("polling.timeout_seconds must be at least polling.task_interval_seconds")
	}
	return nil
}

func (c *Config) validateVideoSource() error {
	if c.VideoSource.CacheMaxGiB < 0 {
		return errors.New("video_source.cache_max_gib must be zero (unbounded) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
