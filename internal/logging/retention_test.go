package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pcsteps/internal/logging"
)

func TestPruneLogsRemovesExpiredDailyFiles(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -30)
	write := func(name string, mod time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
		return path
	}
	expired := write("pcsteps-2026-01-01.log", old)
	kept := write("pcsteps-2026-01-02.log", old)
	fresh := write(filepath.Base(logging.LogFilePath(dir, time.Now())), time.Now())
	unrelated := write("notes.txt", old)

	removed := logging.PruneLogs(logging.NewNop(), dir, 14, kept)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Fatal("expired log should be removed")
	}
	for _, path := range []string{kept, fresh, unrelated} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should remain: %v", path, err)
		}
	}
}

func TestPruneLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pcsteps-2020-01-01.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(-1, 0, 0)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	if n := logging.PruneLogs(nil, dir, 0, ""); n != 0 {
		t.Fatalf("expected no pruning, got %d", n)
	}
}
