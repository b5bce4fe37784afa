package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run status values.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run is one pipeline invocation.
type Run struct {
	ID            string
	SourceURL     string
	SourceID      string
	RemoteVideoID string
	Status        string
	Steps         int
	ErrorStage    string
	ErrorCategory string
	ErrorMessage  string
	ArtifactPath  string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration is the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

const runColumns = "id, source_url, source_id, remote_video_id, status, steps, error_stage, error_category, error_message, artifact_path, started_at, finished_at"

// StartRun inserts a running row.
func (s *Store) StartRun(ctx context.Context, id, sourceURL string, startedAt time.Time) error {
	if id == "" {
		return errors.New("start run: id required")
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, source_url, status, started_at) VALUES (?, ?, ?, ?)",
		id, sourceURL, RunStatusRunning, formatTime(startedAt),
	)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run previously started with StartRun.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET source_id = ?, remote_video_id = ?, status = ?, steps = ?,
            error_stage = ?, error_category = ?, error_message = ?, artifact_path = ?, finished_at = ?
         WHERE id = ?`,
		nullableString(run.SourceID),
		nullableString(run.RemoteVideoID),
		run.Status,
		run.Steps,
		nullableString(run.ErrorStage),
		nullableString(run.ErrorCategory),
		nullableString(run.ErrorMessage),
		nullableString(run.ArtifactPath),
		formatTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: run %s not found", run.ID)
	}
	return nil
}

// SetArtifact records where a run's artifact was written.
func (s *Store) SetArtifact(ctx context.Context, id, path string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE runs SET artifact_path = ? WHERE id = ?", path, id); err != nil {
		return fmt.Errorf("set artifact: %w", err)
	}
	return nil
}

// GetRun fetches a run by id, or nil when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run                                          Run
		sourceID, remoteID, stage, category, message sql.NullString
		artifact, started, finished                  sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.SourceURL,
		&sourceID,
		&remoteID,
		&run.Status,
		&run.Steps,
		&stage,
		&category,
		&message,
		&artifact,
		&started,
		&finished,
	); err != nil {
		return nil, err
	}
	run.SourceID = sourceID.String
	run.RemoteVideoID = remoteID.String
	run.ErrorStage = stage.String
	run.ErrorCategory = category.String
	run.ErrorMessage = message.String
	run.ArtifactPath = artifact.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return &run, nil
}
