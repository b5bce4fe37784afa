package ytdlp_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pcsteps/internal/services/ytdlp"
)

type stubExecutor struct {
	lines []string
	err   error
	calls int
	args  [][]string
	// files are created under the -o directory before returning.
	files map[string]int
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	s.calls++
	s.args = append(s.args, append([]string(nil), args...))
	for _, line := range s.lines {
		onStdout(line)
	}
	if len(s.files) > 0 {
		dir := filepath.Dir(outputTemplate(args))
		for name, size := range s.files {
			if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
				return err
			}
		}
	}
	return s.err
}

func outputTemplate(args []string) string {
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestInfoDecodesJSON(t *testing.T) {
	exec := &stubExecutor{lines: []string{`{"id":"abc123","title":"AM5 Build","channel":"","uploader":"Builder","duration":612.4,"upload_date":"20240105","description":"desc"}`}}
	client, err := ytdlp.New("yt-dlp", "best", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	info, err := client.Info(context.Background(), "https://youtu.be/abc123")
	if err != nil {
		t.Fatalf("Info returned error: %v", err)
	}
	if info.ID != "abc123" || info.Title != "AM5 Build" || info.Duration != 612.4 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.ChannelName() != "Builder" {
		t.Fatalf("expected uploader fallback, got %q", info.ChannelName())
	}
	args := strings.Join(exec.args[0], " ")
	if !strings.Contains(args, "--dump-single-json") || !strings.Contains(args, "--skip-download") {
		t.Fatalf("unexpected args: %s", args)
	}
}

func TestInfoRejectsBadOutput(t *testing.T) {
	cases := map[string]*stubExecutor{
		"empty":      {},
		"not json":   {lines: []string{"ERROR: unavailable"}},
		"missing id": {lines: []string{`{"title":"x"}`}},
		"exec error": {err: errors.New("exit status 1")},
	}
	for name, exec := range cases {
		client, err := ytdlp.New("yt-dlp", "", ytdlp.WithExecutor(exec))
		if err != nil {
			t.Fatalf("%s: New: %v", name, err)
		}
		if _, err := client.Info(context.Background(), "https://youtu.be/x"); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ytdlp.New("  ", "best"); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestDownloadReportsProgressAndPicksMergedFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dl")
	exec := &stubExecutor{
		lines: []string{
			"[youtube] abc123: Downloading webpage",
			"[download]  12.5% of ~  80.00MiB at    1.50MiB/s ETA 00:45",
			"[download] 100% of   80.00MiB in 00:00:50",
		},
		files: map[string]int{
			"abc123.mp4":      2048,
			"abc123.f137.mp4": 1024,
			"abc123.mp4.part": 4096,
		},
	}
	client, err := ytdlp.New("yt-dlp", "bestvideo+bestaudio", ytdlp.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var updates []ytdlp.ProgressUpdate
	path, err := client.Download(context.Background(), "https://youtu.be/abc123", "abc123", dest, func(u ytdlp.ProgressUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if filepath.Base(path) != "abc123.mp4" {
		t.Fatalf("expected merged output, got %q", path)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	if updates[0].Percent != 12.5 || updates[0].ETA != "00:45" || updates[0].Speed != "1.50MiB/s" {
		t.Fatalf("unexpected first update: %+v", updates[0])
	}
	if updates[1].Percent != 100 {
		t.Fatalf("unexpected final update: %+v", updates[1])
	}

	args := strings.Join(exec.args[0], " ")
	if !strings.Contains(args, "-f bestvideo+bestaudio") {
		t.Fatalf("expected format flag, got %s", args)
	}
	if outputTemplate(exec.args[0]) != filepath.Join(dest, "abc123.%(ext)s") {
		t.Fatalf("unexpected output template %q", outputTemplate(exec.args[0]))
	}
}

func TestDownloadErrorsWhenNoOutputProduced(t *testing.T) {
	client, err := ytdlp.New("yt-dlp", "best", ytdlp.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Download(context.Background(), "https://youtu.be/abc", "abc", t.TempDir(), nil)
	if err == nil || !strings.Contains(err.Error(), "no output file") {
		t.Fatalf("expected no output error, got %v", err)
	}
}

func TestDownloadReturnsExecutorError(t *testing.T) {
	client, err := ytdlp.New("yt-dlp", "best", ytdlp.WithExecutor(&stubExecutor{err: errors.New("boom")}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Download(context.Background(), "https://youtu.be/abc", "abc", t.TempDir(), nil); err == nil {
		t.Fatal("expected executor error")
	}
}
