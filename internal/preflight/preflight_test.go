package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pcsteps/internal/services/twelvelabs"
	"pcsteps/internal/testsupport"
)

type stubLookup struct {
	index twelvelabs.Index
	found bool
	err   error
	names []string
}

func (s *stubLookup) FindIndex(_ context.Context, name string) (twelvelabs.Index, bool, error) {
	s.names = append(s.names, name)
	return s.index, s.found, s.err
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("test", dir); !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("test", filepath.Join(dir, "nope")); result.Passed || !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("expected missing dir failure, got %+v", result)
	}
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", file); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckIndexService(t *testing.T) {
	tests := []struct {
		name    string
		lookup  *stubLookup
		indexID string
		passed  bool
		detail  string
	}{
		{name: "existing", lookup: &stubLookup{index: twelvelabs.Index{ID: "idx-1"}, found: true}, passed: true, detail: "idx-1"},
		{name: "missing", lookup: &stubLookup{}, passed: true, detail: "will be created"},
		{name: "explicit id", lookup: &stubLookup{}, indexID: "idx-9", passed: true, detail: "idx-9"},
		{name: "bad key", lookup: &stubLookup{err: &twelvelabs.APIError{Op: "list indexes", StatusCode: 401}}, detail: "authentication failed"},
		{name: "timeout", lookup: &stubLookup{err: context.DeadlineExceeded}, detail: "timed out"},
		{name: "other", lookup: &stubLookup{err: errors.New("boom")}, detail: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckIndexService(context.Background(), tt.lookup, tt.indexID, "pc_building_videos")
			if result.Passed != tt.passed || !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("unexpected result %+v", result)
			}
			if len(tt.lookup.names) != 1 || tt.lookup.names[0] != "pc_building_videos" {
				t.Fatalf("unexpected lookups %v", tt.lookup.names)
			}
		})
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg, nil)
	if len(results) != 4 || len(Failed(results)) != 0 {
		t.Fatalf("expected 4 passing local checks, got %+v", results)
	}

	fake := testsupport.NewFakeIndexService(t)
	fake.AddIndex(cfg.Indexer.IndexName, "idx-live")
	results = RunAll(context.Background(), cfg, fake.Client(t))
	last := results[len(results)-1]
	if len(results) != 5 || !last.Passed || !strings.Contains(last.Detail, "idx-live") {
		t.Fatalf("unexpected remote check %+v", results)
	}

	cfg.Indexer.APIKey = ""
	results = RunAll(context.Background(), cfg, fake.Client(t))
	if len(results) != 4 || len(Failed(results)) != 1 {
		t.Fatalf("expected only the credentials check to fail, got %+v", results)
	}
}
