package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIndexer()
	c.normalizePolling()
	c.normalizeVideoSource()
	if c.Extraction.PageLimit <= 0 {
		c.Extraction.PageLimit = defaultPageLimit
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.VideoCacheDir) == "" {
		c.Paths.VideoCacheDir = defaultVideoCacheDir()
	}
	if c.Paths.VideoCacheDir, err = expandPath(c.Paths.VideoCacheDir); err != nil {
		return fmt.Errorf("paths.video_cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.RegistryPath) == "" {
		c.Paths.RegistryPath = defaultRegistryPath
	}
	if c.Paths.RegistryPath, err = expandPath(c.Paths.RegistryPath); err != nil {
		return fmt.Errorf("paths.registry_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeIndexer() {
	c.Indexer.APIKey = strings.TrimSpace(c.Indexer.APIKey)
	if c.Indexer.APIKey == "" {
		if value, ok := os.LookupEnv(indexerAPIKeyEnv); ok {
			c.Indexer.APIKey = strings.TrimSpace(value)
		}
	}
	c.Indexer.IndexID = strings.TrimSpace(c.Indexer.IndexID)
	if c.Indexer.IndexID == "" {
		if value, ok := os.LookupEnv(indexerIndexIDEnv); ok {
			c.Indexer.IndexID = strings.TrimSpace(value)
		}
	}
	c.Indexer.BaseURL = strings.TrimRight(strings.TrimSpace(c.Indexer.BaseURL), "/")
	if c.Indexer.BaseURL == "" {
		c.Indexer.BaseURL = defaultIndexerBaseURL
	}
	c.Indexer.IndexName = strings.TrimSpace(c.Indexer.IndexName)
	if c.Indexer.IndexName == "" {
		c.Indexer.IndexName = defaultIndexName
	}
	c.Indexer.Model = strings.TrimSpace(c.Indexer.Model)
	if c.Indexer.Model == "" {
		c.Indexer.Model = defaultIndexModel
	}
	if c.Indexer.TimeoutSeconds <= 0 {
		c.Indexer.TimeoutSeconds = defaultIndexerTimeoutSeconds
	}
	if c.Indexer.Burst <= 0 {
		c.Indexer.Burst = defaultBurst
	}
}

func (c *Config) normalizePolling() {
	if c.Polling.TaskIntervalSeconds <= 0 {
		c.Polling.TaskIntervalSeconds = defaultTaskIntervalSeconds
	}
	if c.Polling.IndexIntervalSeconds <= 0 {
		c.Polling.IndexIntervalSeconds = defaultIndexIntervalSeconds
	}
	if c.Polling.TimeoutSeconds < 0 {
		c.Polling.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeVideoSource() {
	c.VideoSource.Binary = strings.TrimSpace(c.VideoSource.Binary)
	if c.VideoSource.Binary == "" {
		c.VideoSource.Binary = defaultYtdlpBinary
	}
	c.VideoSource.Format = strings.TrimSpace(c.VideoSource.Format)
	if c.VideoSource.Format == "" {
		c.VideoSource.Format = defaultVideoFormat
	}
	if c.VideoSource.MinCacheBytes < 0 {
		c.VideoSource.MinCacheBytes = 0
	}
	if c.VideoSource.DownloadTimeoutSeconds <= 0 {
		c.VideoSource.DownloadTimeoutSeconds = defaultDownloadTimeoutSeconds
	}
	if c.VideoSource.InfoTimeoutSeconds <= 0 {
		c.VideoSource.InfoTimeoutSeconds = defaultInfoTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
