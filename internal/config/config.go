package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir     string `toml:"output_dir"`
	LogDir        string `toml:"log_dir"`
	VideoCacheDir string `toml:"video_cache_dir"`
	RegistryPath  string `toml:"registry_path"`
}

// Indexer contains configuration for the video indexing service.
type Indexer struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	IndexID           string  `toml:"index_id"`
	IndexName         string  `toml:"index_name"`
	Model             string  `toml:"model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Polling controls how long and how often upload progress is checked.
type Polling struct {
	TaskIntervalSeconds  int `toml:"task_interval_seconds"`
	IndexIntervalSeconds int `toml:"index_interval_seconds"`
	TimeoutSeconds       int `toml:"timeout_seconds"`
}

// VideoSource contains configuration for the yt-dlp video source.
type VideoSource struct {
	Binary                 string `toml:"binary"`
	Format                 string `toml:"format"`
	MinCacheBytes          int64  `toml:"min_cache_bytes"`
	CacheMaxGiB            int    `toml:"cache_max_gib"`
	DownloadTimeoutSeconds int    `toml:"download_timeout_seconds"`
	InfoTimeoutSeconds     int    `toml:"info_timeout_seconds"`
}

// Extraction contains step extraction settings.
type Extraction struct {
	PageLimit int `toml:"page_limit"`
}

// Registry controls the local record of uploads and runs.
type Registry struct {
	Enabled bool `toml:"enabled"`
}

// Notifications configures ntfy push notices for finished runs.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for pcsteps.
//
// Configuration sections by subsystem:
//   - Paths: artifact, log, cache, and registry locations
//   - Indexer: indexing service credentials and index selection
//   - Polling: upload status polling cadence and deadline
//   - VideoSource: yt-dlp binary, download format, and cache size
//   - Extraction: semantic search page size
//   - Registry: upload/run registry toggle
//   - Notifications: optional ntfy endpoint for run outcomes
//   - Logging: log format, level, and log file retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Indexer       Indexer       `toml:"indexer"`
	Polling       Polling       `toml:"polling"`
	VideoSource   VideoSource   `toml:"video_source"`
	Extraction    Extraction    `toml:"extraction"`
	Registry      Registry      `toml:"registry"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pcsteps/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pcsteps.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a processing run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.VideoCacheDir}
	if c.Registry.Enabled && strings.TrimSpace(c.Paths.RegistryPath) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.RegistryPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// NotificationTimeout returns the per-request timeout for ntfy deliveries.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// IndexerTimeout returns the per-request HTTP timeout for the indexing service.
func (c *Config) IndexerTimeout() time.Duration {
	return time.Duration(c.Indexer.TimeoutSeconds) * time.Second
}

// TaskPollInterval returns the delay between upload task status checks.
func (c *Config) TaskPollInterval() time.Duration {
	return time.Duration(c.Polling.TaskIntervalSeconds) * time.Second
}

// IndexPollInterval returns the delay between indexing status checks.
func (c *Config) IndexPollInterval() time.Duration {
	return time.Duration(c.Polling.IndexIntervalSeconds) * time.Second
}

// PollingTimeout bounds the total time spent waiting for a video to become
// searchable. Zero disables the bound.
func (c *Config) PollingTimeout() time.Duration {
	return time.Duration(c.Polling.TimeoutSeconds) * time.Second
}

// DownloadTimeout bounds a single video download.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.VideoSource.DownloadTimeoutSeconds) * time.Second
}

// InfoTimeout bounds a single metadata fetch.
func (c *Config) InfoTimeout() time.Duration {
	return time.Duration(c.VideoSource.InfoTimeoutSeconds) * time.Second
}

// VideoCacheMaxBytes converts the configured cache ceiling to bytes.
func (c *Config) VideoCacheMaxBytes() int64 {
	return int64(c.VideoSource.CacheMaxGiB) * 1024 * 1024 * 1024
}

// YtdlpBinary returns the yt-dlp executable name.
func (c *Config) YtdlpBinary() string {
	if strings.TrimSpace(c.VideoSource.Binary) == "" {
		return defaultYtdlpBinary
	}
	return c.VideoSource.Binary
}

// ArtifactPath returns the default location for a processed video artifact.
func (c *Config) ArtifactPath(videoID string) string {
	return filepath.Join(c.Paths.OutputDir, "processed_"+videoID+".json")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultVideoCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "pcsteps", "videos")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/pcsteps/videos"
	}
	return filepath.Join(home, ".cache", "pcsteps", "videos")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
