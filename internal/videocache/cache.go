package videocache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"pcsteps/internal/config"
	"pcsteps/internal/fileutil"
	"pcsteps/internal/logging"
	"pcsteps/internal/services"
	"pcsteps/internal/services/ytdlp"
	"pcsteps/internal/textutil"
)

const (
	// freeSpaceFloor is the minimum free-space ratio we allow before pruning (0.10 => 90% full).
	freeSpaceFloor = 0.10
	lockRetryDelay = 250 * time.Millisecond
	locksDirName   = ".locks"
	tempDirPrefix  = ".tmp-"
)

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// Manager stores downloaded videos and prunes old ones.
type Manager struct {
	root       string
	maxBytes   int64
	minBytes   int64
	downloader ytdlp.Downloader
	logger     *slog.Logger
	statfs     statfsFunc
}

// Entry is a cached video ready for upload.
type Entry struct {
	VideoID   string
	Path      string
	SizeBytes int64
	// Cached is true when the file was already present and no download ran.
	Cached bool
}

// Stats describes current cache usage.
type Stats struct {
	Root           string         `json:"root"`
	Entries        int            `json:"entries"`
	TotalBytes     int64          `json:"total_bytes"`
	MaxBytes       int64          `json:"max_bytes"`
	FreeBytes      uint64         `json:"free_bytes"`
	TotalFSBytes   uint64         `json:"total_fs_bytes"`
	FreeRatio      float64        `json:"free_ratio"`
	EntrySummaries []EntrySummary `json:"entry_summaries"`
}

// EntrySummary surfaces details about one cached video for the CLI.
type EntrySummary struct {
	VideoID     string    `json:"video_id"`
	Directory   string    `json:"directory"`
	SizeBytes   int64     `json:"size_bytes"`
	ModifiedAt  time.Time `json:"modified_at"`
	PrimaryFile string    `json:"primary_file"`
	SourceURL   string    `json:"source_url,omitempty"`
}

// NewManager builds a cache manager rooted at the configured video cache dir.
// downloader may be nil for read-only uses such as stats and pruning.
func NewManager(cfg *config.Config, downloader ytdlp.Downloader, logger *slog.Logger) *Manager {
	if cfg == nil {
		return nil
	}
	root := strings.TrimSpace(cfg.Paths.VideoCacheDir)
	if root == "" {
		return nil
	}
	manager := &Manager{
		root:       root,
		maxBytes:   cfg.VideoCacheMaxBytes(),
		minBytes:   cfg.VideoSource.MinCacheBytes,
		downloader: downloader,
		statfs:     realStatfs,
	}
	manager.SetLogger(logger)
	return manager
}

// SetLogger refreshes the manager's logging destination.
func (m *Manager) SetLogger(logger *slog.Logger) {
	if m == nil {
		return
	}
	m.logger = logging.NewComponentLogger(logger, "videocache")
}

// Root returns the cache directory.
func (m *Manager) Root() string {
	if m == nil {
		return ""
	}
	return m.root
}

// Fetch returns a local copy of the video, downloading it when no usable
// cached copy exists.
func (m *Manager) Fetch(ctx context.Context, url, videoID string, progress func(ytdlp.ProgressUpdate)) (Entry, error) {
	if m == nil {
		return Entry{}, services.Wrap(services.ErrConfiguration, "videocache", "fetch", "video cache not configured", nil)
	}
	id := textutil.SanitizeID(videoID)
	entryDir := filepath.Join(m.root, id)
	logger := logging.WithContext(ctx, m.logger)

	unlock, err := m.lock(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	defer unlock()

	if path, size := m.lookup(entryDir, id); path != "" {
		if size >= m.minBytes && size > 0 {
			now := time.Now()
			_ = os.Chtimes(entryDir, now, now)
			logger.Info("video cache hit",
				logging.String(logging.FieldEventType, "video_cache_hit"),
				logging.String("path", path),
				logging.Int64("size_bytes", size),
			)
			return Entry{VideoID: id, Path: path, SizeBytes: size, Cached: true}, nil
		}
		logging.WarnWithContext(logger, "cached video below size threshold; downloading again", "video_cache_stale",
			logging.String("path", path),
			logging.Int64("size_bytes", size),
			logging.Int64("min_bytes", m.minBytes),
			logging.String(logging.FieldErrorHint, "a previous download was probably interrupted"),
			logging.String(logging.FieldImpact, "video is downloaded again"),
		)
	}

	if m.downloader == nil {
		return Entry{}, services.Wrap(services.ErrConfiguration, "videocache", "fetch", "no downloader configured", nil)
	}

	tmpDir := filepath.Join(m.root, tempDirPrefix+uuid.NewString())
	defer os.RemoveAll(tmpDir)

	logger.Info("downloading video",
		logging.String(logging.FieldEventType, "video_download_started"),
		logging.String("url", url),
	)
	downloaded, err := m.downloader.Download(ctx, url, id, tmpDir, progress)
	if err != nil {
		return Entry{}, services.Wrap(services.ErrDownload, "videocache", "download", url, err)
	}
	size, ok := fileutil.FileSize(downloaded)
	if !ok || size == 0 {
		return Entry{}, services.Wrap(services.ErrDownload, "videocache", "download", "downloaded file is empty", nil)
	}

	if err := os.RemoveAll(entryDir); err != nil {
		return Entry{}, fmt.Errorf("videocache: clear stale entry: %w", err)
	}
	if err := os.MkdirAll(entryDir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("videocache: create entry: %w", err)
	}
	final := filepath.Join(entryDir, filepath.Base(downloaded))
	if err := os.Rename(downloaded, final); err != nil {
		return Entry{}, fmt.Errorf("videocache: move download into cache: %w", err)
	}
	if err := writeMetadata(entryDir, EntryMetadata{
		VideoID:      id,
		SourceURL:    url,
		FileName:     filepath.Base(final),
		SizeBytes:    size,
		DownloadedAt: time.Now().UTC(),
	}); err != nil {
		logging.WarnWithContext(logger, "video cache metadata not written", "video_cache_metadata_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache directory permissions"),
			logging.String(logging.FieldImpact, "cache stats omit the source URL"),
		)
	}

	logger.Info("video downloaded",
		logging.String(logging.FieldEventType, "video_download_completed"),
		logging.String("path", final),
		logging.Int64("size_bytes", size),
	)

	if err := m.prune(ctx, entryDir); err != nil {
		logging.WarnWithContext(logger, "video cache prune failed", "video_cache_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run pcsteps cache prune or raise video_source.cache_max_gib"),
			logging.String(logging.FieldImpact, "cache may exceed its size budget"),
		)
	}
	return Entry{VideoID: id, Path: final, SizeBytes: size}, nil
}

// Lookup returns the cached file for videoID, if any.
func (m *Manager) Lookup(videoID string) (string, int64, bool) {
	if m == nil {
		return "", 0, false
	}
	id := textutil.SanitizeID(videoID)
	path, size := m.lookup(filepath.Join(m.root, id), id)
	return path, size, path != ""
}

func (m *Manager) lock(ctx context.Context, id string) (func(), error) {
	dir := filepath.Join(m.root, locksDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("videocache: create lock dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, id+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("videocache: lock %s: %w", id, err)
	}
	if !locked {
		return nil, fmt.Errorf("videocache: lock %s: not acquired", id)
	}
	return func() { _ = lock.Unlock() }, nil
}

// Prune removes entries based on size and free-space thresholds.
// keepPath, when provided, is never deleted.
func (m *Manager) Prune(ctx context.Context, keepPath string) error {
	if m == nil {
		return nil
	}
	return m.prune(ctx, keepPath)
}

// Stats returns current cache usage and filesystem free-space info.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if m == nil {
		return s, nil
	}
	entries, totalSize, err := m.scan()
	if err != nil {
		return s, err
	}
	var totalFS, freeFS uint64
	if _, statErr := os.Stat(m.root); statErr == nil {
		totalFS, freeFS, err = m.statfs(m.root)
		if err != nil {
			return s, fmt.Errorf("videocache: statfs: %w", err)
		}
	}
	ratio := 1.0
	if totalFS > 0 {
		ratio = float64(freeFS) / float64(totalFS)
	}
	details := make([]EntrySummary, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		summary := EntrySummary{
			VideoID:     filepath.Base(entry.path),
			Directory:   entry.path,
			SizeBytes:   entry.sizeBytes,
			ModifiedAt:  entry.modTime,
			PrimaryFile: entry.primary,
		}
		if meta, ok, err := LoadMetadata(entry.path); err == nil && ok {
			summary.SourceURL = meta.SourceURL
		}
		details = append(details, summary)
	}
	s = Stats{
		Root:           m.root,
		Entries:        len(entries),
		TotalBytes:     totalSize,
		MaxBytes:       m.maxBytes,
		FreeBytes:      freeFS,
		TotalFSBytes:   totalFS,
		FreeRatio:      ratio,
		EntrySummaries: details,
	}
	if len(entries) == 0 {
		m.logger.DebugContext(ctx, "video cache empty")
	}
	return s, nil
}

// prune removes oldest cache entries until both size and free-space thresholds are satisfied.
func (m *Manager) prune(ctx context.Context, keepPath string) error {
	entries, totalSize, err := m.scan()
	if err != nil {
		return err
	}

	for len(entries) > 0 {
		freeOK, err := m.freeSpaceOK()
		if err != nil {
			return err
		}
		sizeOK := m.maxBytes <= 0 || totalSize <= m.maxBytes
		if sizeOK && freeOK {
			return nil
		}
		oldest := entries[0]
		entries = entries[1:]
		if samePath(oldest.path, keepPath) {
			if len(entries) == 0 {
				return fmt.Errorf("videocache: cache over limits and active entry %q cannot be pruned", keepPath)
			}
			continue
		}
		if err := os.RemoveAll(oldest.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("videocache: remove %q: %w", oldest.path, err)
		}
		m.logger.InfoContext(ctx, "pruned video cache entry",
			logging.String("cache_dir", oldest.path),
			logging.Int64("entry_size_bytes", oldest.sizeBytes),
		)
		totalSize -= oldest.sizeBytes
	}
	return nil
}

type cacheEntry struct {
	path      string
	sizeBytes int64
	modTime   time.Time
	primary   string
}

func (m *Manager) scan() ([]cacheEntry, int64, error) {
	entries := make([]cacheEntry, 0)
	var total int64
	rootEntries, err := os.ReadDir(m.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, 0, nil
		}
		return nil, 0, fmt.Errorf("videocache: list root: %w", err)
	}
	for _, entry := range rootEntries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(m.root, entry.Name())
		size, mtime, err := dirSizeAndTime(path)
		if err != nil {
			m.logger.Warn("video cache entry skipped; excluded from stats and pruning",
				logging.String("cache_dir", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, "video_cache_entry_skipped"),
				logging.String(logging.FieldErrorHint, "inspect cache directory permissions or remove the corrupted entry"),
			)
			continue
		}
		primary, _ := m.lookup(path, entry.Name())
		total += size
		entries = append(entries, cacheEntry{path: path, sizeBytes: size, modTime: mtime, primary: filepath.Base(primary)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})
	return entries, total, nil
}

var cacheVideoExtensions = map[string]struct{}{
	".mp4":  {},
	".mkv":  {},
	".webm": {},
	".m4v":  {},
	".mov":  {},
}

// lookup returns the largest video file in dir named after id.
func (m *Manager) lookup(dir, id string) (string, int64) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return "", 0
	}
	var (
		best     string
		bestSize int64 = -1
	)
	for _, item := range items {
		if item.IsDir() || !strings.HasPrefix(item.Name(), id+".") {
			continue
		}
		if _, ok := cacheVideoExtensions[strings.ToLower(filepath.Ext(item.Name()))]; !ok {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, item.Name())
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestSize
}

func (m *Manager) freeSpaceOK() (bool, error) {
	total, free, err := m.statfs(m.root)
	if err != nil {
		return false, fmt.Errorf("videocache: statfs: %w", err)
	}
	if total == 0 {
		return true, nil
	}
	ratio := float64(free) / float64(total)
	return ratio >= freeSpaceFloor, nil
}

func samePath(a, b string) bool {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	if errA == nil {
		a = ra
	}
	if errB == nil {
		b = rb
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

func dirSizeAndTime(path string) (int64, time.Time, error) {
	var (
		size   int64
		latest time.Time
	)
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	return size, latest, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
