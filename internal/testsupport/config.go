package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"pcsteps/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Polling runs at millisecond cadence so upload loops finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "processed")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.VideoCacheDir = filepath.Join(base, "videos")
	cfgVal.Paths.RegistryPath = filepath.Join(base, "state", "registry.db")
	cfgVal.Indexer.APIKey = "test"
	cfgVal.Indexer.RequestsPerSecond = 0
	cfgVal.VideoSource.MinCacheBytes = 1
	cfgVal.Polling.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAPIKey sets the indexing service API key.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Indexer.APIKey = key
	}
}

// WithIndexerURL points the indexing service client at a test server.
func WithIndexerURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Indexer.BaseURL = url
	}
}

// WithRegistryDisabled turns the registry off.
func WithRegistryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Registry.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, yt-dlp is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\necho 2026.01.01\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
