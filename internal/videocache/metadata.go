package videocache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pcsteps/internal/fileutil"
)

const (
	metadataVersion  = 1
	metadataFileName = "pcsteps.cache.json"
)

// EntryMetadata records the provenance of a cached video.
type EntryMetadata struct {
	Version      int       `json:"version"`
	VideoID      string    `json:"video_id"`
	SourceURL    string    `json:"source_url"`
	FileName     string    `json:"file_name"`
	SizeBytes    int64     `json:"size_bytes"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

func writeMetadata(entryDir string, meta EntryMetadata) error {
	meta.Version = metadataVersion
	if err := fileutil.WriteJSONAtomic(metadataPath(entryDir), meta); err != nil {
		return fmt.Errorf("videocache: write metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads the sidecar for a cache entry directory. The boolean is
// false when the entry has no sidecar.
func LoadMetadata(entryDir string) (EntryMetadata, bool, error) {
	entryDir = strings.TrimSpace(entryDir)
	if entryDir == "" {
		return EntryMetadata{}, false, errors.New("videocache: metadata entry dir is empty")
	}
	payload, err := os.ReadFile(metadataPath(entryDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return EntryMetadata{}, false, nil
		}
		return EntryMetadata{}, false, fmt.Errorf("videocache: read metadata: %w", err)
	}
	var meta EntryMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return EntryMetadata{}, true, fmt.Errorf("videocache: decode metadata: %w", err)
	}
	if meta.Version != metadataVersion {
		return EntryMetadata{}, true, fmt.Errorf("videocache: unsupported metadata version %d", meta.Version)
	}
	return meta, true, nil
}

func metadataPath(entryDir string) string {
	return filepath.Join(entryDir, metadataFileName)
}
