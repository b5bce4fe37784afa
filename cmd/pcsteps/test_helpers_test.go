package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"pcsteps/internal/assembly"
	"pcsteps/internal/config"
	"pcsteps/internal/indexing"
	"pcsteps/internal/metadata"
	"pcsteps/internal/pipeline"
	"pcsteps/internal/registry"
	"pcsteps/internal/services/twelvelabs"
	"pcsteps/internal/services/ytdlp"
	"pcsteps/internal/steps"
	"pcsteps/internal/testsupport"
	"pcsteps/internal/videocache"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	fake       *testsupport.FakeIndexService
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("TWELVE_LABS_API_KEY", "")
	t.Setenv("TWELVE_LABS_INDEX_ID", "")
	fake := testsupport.NewFakeIndexService(t)
	cfg := testsupport.NewConfig(t, testsupport.WithIndexerURL(fake.BaseURL()))
	cfg.Logging.Level = "error"
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	queries := steps.DefaultQueries()
	fake.SetResults(queries[0].Text, twelvelabs.Clip{
		Score: 0.9, Confidence: "high", Start: 120, End: 130,
		Modules: []twelvelabs.Module{{Type: "visual", Visual: []twelvelabs.Evidence{{Value: "CPU seated in socket"}}}},
	})
	fake.SetResults(queries[1].Text, twelvelabs.Clip{Score: 0.5, Confidence: "low", Start: 40, End: 48})

	return &cliTestEnv{cfg: cfg, configPath: configPath, fake: fake}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

type stubFetcher struct{ info ytdlp.Info }

func (s stubFetcher) Info(context.Context, string) (ytdlp.Info, error) { return s.info, nil }

type stubDownloader struct{ t *testing.T }

func (s stubDownloader) Download(_ context.Context, _ string, videoID, destDir string, _ func(ytdlp.ProgressUpdate)) (string, error) {
	path := filepath.Join(destDir, videoID+".mp4")
	testsupport.WriteFile(s.t, path, 4096)
	return path, nil
}

// useFakePipeline routes the process command through the fake index service
// with stubbed yt-dlp collaborators.
func (env *cliTestEnv) useFakePipeline(t *testing.T, title string) {
	t.Helper()
	previous := defaultPipelineBuilder
	t.Cleanup(func() { defaultPipelineBuilder = previous })

	defaultPipelineBuilder = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, func() error, error) {
		fetcher := stubFetcher{info: ytdlp.Info{ID: "dQw4w9WgXcQ", Title: title, Channel: "Builds Weekly", Duration: 900}}
		cache := videocache.NewManager(cfg, stubDownloader{t: t}, logger)
		indexer := indexing.NewClient(cfg, env.fake.Client(t), cache, logger,
			indexing.WithPollIntervals(time.Millisecond, time.Millisecond),
		)
		store, err := registry.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		p, err := pipeline.New(ctx, cfg, metadata.NewExtractor(fetcher, logger), indexer,
			steps.NewExtractor(indexer, cfg.Extraction.PageLimit, logger), logger, pipeline.WithRegistry(store))
		if err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return p, store.Close, nil
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeArtifact(t *testing.T, path string) *assembly.ProcessedVideo {
	t.Helper()
	step := func(order int, component assembly.Component, action assembly.Action, start float64, confidence assembly.SourceConfidence) assembly.AssemblyStep {
		return assembly.AssemblyStep{
			Component:        component,
			Action:           action,
			Platform:         assembly.PlatformAM5,
			FormFactor:       assembly.FormFactorATX,
			StepOrder:        order,
			Description:      "Assembly step for " + string(component),
			VisualCues:       []string{},
			CommonErrors:     []string{},
			Timestamp:        assembly.Timestamp{Start: start, End: start + 8},
			VideoID:          "abc123",
			SourceConfidence: confidence,
		}
	}
	all := []assembly.AssemblyStep{
		step(1, assembly.ComponentRAM, assembly.ActionInsert, 40, assembly.ConfidenceInferred),
		step(2, assembly.ComponentCPU, assembly.ActionInsert, 120, assembly.ConfidenceExplicitlyShown),
		step(3, assembly.ComponentCooler, assembly.ActionMount, 300, assembly.ConfidenceVerballyExplained),
		step(4, assembly.ComponentGPU, assembly.ActionInsert, 900, assembly.ConfidenceExplicitlyShown),
	}
	result := &assembly.ProcessedVideo{
		Metadata: assembly.VideoMetadata{
			VideoID:         "abc123",
			Title:           "Budget AM5 gaming PC build",
			ChannelName:     "Builds Weekly",
			VideoType:       assembly.VideoTypeFullBuild,
			SkillLevel:      assembly.SkillBeginner,
			Platform:        assembly.PlatformAM5,
			FormFactor:      assembly.FormFactorATX,
			DurationSeconds: 1500,
		},
		AssemblySteps:       all,
		IndexedVideoID:      "remote-abc",
		ProcessingTimestamp: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		TotalStepsExtracted: len(all),
	}
	if err := pipeline.SaveResults(result, path); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}
	return result
}
