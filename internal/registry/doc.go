// Package registry keeps a small SQLite record of uploads and pipeline runs.
//
// Uploads are keyed by source video id and index id so a rerun against the
// same index can reuse the remote video instead of uploading again. Runs
// record one row per ProcessVideo call with its outcome, which the history
// command lists.
//
// The schema is embedded and versioned; a version mismatch is reported rather
// than migrated, matching how the database is treated as disposable cache.
package registry
