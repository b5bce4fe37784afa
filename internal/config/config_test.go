package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"pcsteps/internal/config"
)

func TestLoadDefaultConfigUsesEnvAndExpandsPaths(t *testing.T) {
	t.Setenv("TWELVE_LABS_API_KEY", "test-key")
	t.Setenv("TWELVE_LABS_INDEX_ID", "idx-env")
	t.Setenv("XDG_CACHE_HOME", "")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "pcsteps", "processed")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if cfg.Paths.VideoCacheDir != filepath.Join(tempHome, ".cache", "pcsteps", "videos") {
		t.Fatalf("unexpected video cache dir: %q", cfg.Paths.VideoCacheDir)
	}
	if cfg.Indexer.APIKey != "test-key" {
		t.Fatalf("expected API key from env, got %q", cfg.Indexer.APIKey)
	}
	if cfg.Indexer.IndexID != "idx-env" {
		t.Fatalf("expected index id from env, got %q", cfg.Indexer.IndexID)
	}
	if cfg.Indexer.BaseURL != config.Default().Indexer.BaseURL {
		t.Fatalf("unexpected base url: %q", cfg.Indexer.BaseURL)
	}
	if cfg.Polling.TaskIntervalSeconds != 5 || cfg.Polling.IndexIntervalSeconds != 30 {
		t.Fatalf("unexpected polling intervals: %+v", cfg.Polling)
	}
	if cfg.Extraction.PageLimit != 10 {
		t.Fatalf("unexpected page limit: %d", cfg.Extraction.PageLimit)
	}
	if err := cfg.ValidateIndexer(); err != nil {
		t.Fatalf("ValidateIndexer: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, cfg.Paths.VideoCacheDir, filepath.Dir(cfg.Paths.RegistryPath)} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("TWELVE_LABS_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "pcsteps.toml")

	type payload struct {
		Indexer struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
			IndexID string `toml:"index_id"`
		} `toml:"indexer"`
		Polling struct {
			TaskIntervalSeconds int `toml:"task_interval_seconds"`
			TimeoutSeconds      int `toml:"timeout_seconds"`
		} `toml:"polling"`
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Indexer.APIKey = "abc123"
	custom.Indexer.BaseURL = "https://example.com/v1.3/"
	custom.Indexer.IndexID = "idx-1"
	custom.Polling.TaskIntervalSeconds = 2
	custom.Polling.TimeoutSeconds = 60
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Indexer.APIKey != "abc123" || cfg.Indexer.IndexID != "idx-1" {
		t.Fatalf("unexpected indexer: %+v", cfg.Indexer)
	}
	if cfg.Indexer.BaseURL != "https://example.com/v1.3" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Indexer.BaseURL)
	}
	if cfg.TaskPollInterval().Seconds() != 2 {
		t.Fatalf("unexpected task interval: %v", cfg.TaskPollInterval())
	}
	if cfg.PollingTimeout().Seconds() != 60 {
		t.Fatalf("unexpected polling timeout: %v", cfg.PollingTimeout())
	}
	if cfg.IndexPollInterval().Seconds() != 30 {
		t.Fatalf("expected default index interval, got %v", cfg.IndexPollInterval())
	}
	if got := cfg.ArtifactPath("abc"); got != filepath.Join(tempDir, "out", "processed_abc.json") {
		t.Fatalf("unexpected artifact path: %q", got)
	}
}

func TestValidateIndexerRequiresKey(t *testing.T) {
	t.Setenv("TWELVE_LABS_API_KEY", "")
	t.Setenv("HOME", t.TempDir())
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	err = cfg.ValidateIndexer()
	if err == nil || !strings.Contains(err.Error(), "TWELVE_LABS_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	cfg.Indexer.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected base url error")
	}

	cfg = config.Default()
	cfg.Polling.TimeoutSeconds = 1
	cfg.Polling.TaskIntervalSeconds = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected polling timeout error")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected logging level error")
	}

	cfg = config.Default()
	cfg.Extraction.PageLimit = 500
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected page limit error")
	}

	cfg = config.Default()
	cfg.Notifications.NtfyTopic = "my-topic"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ntfy_topic") {
		t.Fatalf("expected ntfy topic error, got %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.VideoSource.Format != config.Default().VideoSource.Format {
		t.Fatalf("unexpected format: %q", cfg.VideoSource.Format)
	}
	if cfg.Indexer.IndexName != "pc_building_videos" {
		t.Fatalf("unexpected index name: %q", cfg.Indexer.IndexName)
	}
	if cfg.Logging.RetentionDays != 14 || cfg.Notifications.RequestTimeoutSeconds != 10 || cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("unexpected sample defaults: %+v %+v", cfg.Logging, cfg.Notifications)
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/videos")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "videos") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}
