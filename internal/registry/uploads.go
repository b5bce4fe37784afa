package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Upload records the remote state of one source video in one index.
type Upload struct {
	SourceID      string
	IndexID       string
	TaskID        string
	RemoteVideoID string
	State         string
	SourceURL     string
	UpdatedAt     time.Time
}

// RecordUpload inserts or replaces the upload row for (SourceID, IndexID).
func (s *Store) RecordUpload(ctx context.Context, upload Upload) error {
	if upload.SourceID == "" || upload.IndexID == "" {
		return errors.New("record upload: source id and index id required")
	}
	if upload.UpdatedAt.IsZero() {
		upload.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (source_id, index_id, task_id, remote_video_id, state, source_url, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(source_id, index_id) DO UPDATE SET
            task_id = excluded.task_id,
            remote_video_id = excluded.remote_video_id,
            state = excluded.state,
            source_url = excluded.source_url,
            updated_at = excluded.updated_at`,
		upload.SourceID,
		upload.IndexID,
		nullableString(upload.TaskID),
		nullableString(upload.RemoteVideoID),
		upload.State,
		nullableString(upload.SourceURL),
		formatTime(upload.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// FindUpload returns the upload for (sourceID, indexID), or nil when none is
// recorded.
func (s *Store) FindUpload(ctx context.Context, sourceID, indexID string) (*Upload, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT source_id, index_id, task_id, remote_video_id, state, source_url, updated_at
         FROM uploads WHERE source_id = ? AND index_id = ?`,
		sourceID, indexID,
	)
	var (
		upload                         Upload
		taskID, remoteID, url, updated sql.NullString
	)
	if err := row.Scan(&upload.SourceID, &upload.IndexID, &taskID, &remoteID, &upload.State, &url, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find upload: %w", err)
	}
	upload.TaskID = taskID.String
	upload.RemoteVideoID = remoteID.String
	upload.SourceURL = url.String
	upload.UpdatedAt = parseTime(updated)
	return &upload, nil
}

// ForgetUpload removes the upload row, e.g. after the remote video vanished.
func (s *Store) ForgetUpload(ctx context.Context, sourceID, indexID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM uploads WHERE source_id = ? AND index_id = ?", sourceID, indexID); err != nil {
		return fmt.Errorf("forget upload: %w", err)
	}
	return nil
}
