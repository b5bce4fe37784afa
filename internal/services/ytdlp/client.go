package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Info is the subset of yt-dlp's JSON metadata used downstream.
type Info struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Channel     string  `json:"channel"`
	Uploader    string  `json:"uploader"`
	Duration    float64 `json:"duration"`
	UploadDate  string  `json:"upload_date"`
	Description string  `json:"description"`
	WebpageURL  string  `json:"webpage_url"`
}

// ChannelName prefers the channel display name and falls back to the uploader.
func (i Info) ChannelName() string {
	if name := strings.TrimSpace(i.Channel); name != "" {
		return name
	}
	return strings.TrimSpace(i.Uploader)
}

// Fetcher resolves video metadata without downloading media.
type Fetcher interface {
	Info(ctx context.Context, url string) (Info, error)
}

// Downloader fetches a video into a directory and returns the file path.
type Downloader interface {
	Download(ctx context.Context, url, videoID, destDir string, progress func(ProgressUpdate)) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithInfoTimeout bounds metadata lookups.
func WithInfoTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.infoTimeout = timeout
	}
}

// WithDownloadTimeout bounds a single download.
func WithDownloadTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.downloadTimeout = timeout
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary          string
	format          string
	infoTimeout     time.Duration
	downloadTimeout time.Duration
	exec            Executor
}

var (
	_ Fetcher    = (*Client)(nil)
	_ Downloader = (*Client)(nil)
)

// New constructs a yt-dlp client. format is passed to -f verbatim.
func New(binary, format string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary: binary,
		format: strings.TrimSpace(format),
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Info runs yt-dlp in JSON dump mode and decodes the result.
func (c *Client) Info(ctx context.Context, url string) (Info, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Info{}, errors.New("video url required")
	}
	if c.infoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.infoTimeout)
		defer cancel()
	}

	var out strings.Builder
	args := []string{"--dump-single-json", "--skip-download", "--no-playlist", "--no-warnings", url}
	if err := c.exec.Run(ctx, c.binary, args, func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	}); err != nil {
		return Info{}, fmt.Errorf("yt-dlp info: %w", err)
	}

	payload := strings.TrimSpace(out.String())
	if payload == "" {
		return Info{}, errors.New("yt-dlp info: empty output")
	}
	var info Info
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return Info{}, fmt.Errorf("yt-dlp info: decode json: %w", err)
	}
	if strings.TrimSpace(info.ID) == "" {
		return Info{}, errors.New("yt-dlp info: response missing id")
	}
	return info, nil
}

// Download fetches url into destDir using the configured format and returns
// the path of the resulting media file, which is named after videoID.
func (c *Client) Download(ctx context.Context, url, videoID, destDir string, progress func(ProgressUpdate)) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("video url required")
	}
	if strings.TrimSpace(videoID) == "" {
		return "", errors.New("video id required")
	}
	if destDir == "" {
		return "", errors.New("destination directory required")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	args := []string{"--no-playlist", "--newline", "--no-part"}
	if c.format != "" {
		args = append(args, "-f", c.format)
	}
	args = append(args, "-o", filepath.Join(destDir, videoID+".%(ext)s"), url)

	if err := c.exec.Run(ctx, c.binary, args, func(line string) {
		if progress == nil {
			return
		}
		if update, ok := parseProgress(line); ok {
			progress(update)
		}
	}); err != nil {
		return "", fmt.Errorf("yt-dlp download: %w", err)
	}

	path, err := locateOutput(destDir, videoID)
	if err != nil {
		return "", fmt.Errorf("inspect download outputs: %w", err)
	}
	if path == "" {
		return "", errors.New("yt-dlp produced no output file")
	}
	return path, nil
}

var intermediateSuffixes = []string{".part", ".ytdl", ".temp", ".json"}

// locateOutput picks the largest finished file named after videoID. Format
// merges can leave per-stream files such as id.f137.mp4 behind.
func locateOutput(dir, videoID string) (string, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var (
		best     string
		bestSize int64 = -1
	)
	for _, item := range items {
		if item.IsDir() {
			continue
		}
		name := item.Name()
		if !strings.HasPrefix(name, videoID+".") || hasIntermediateSuffix(name) {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, name)
			bestSize = info.Size()
		}
	}
	return best, nil
}

func hasIntermediateSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range intermediateSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
