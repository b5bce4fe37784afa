// Package videocache keeps downloaded source videos on disk so repeated runs
// against the same URL skip the download. Each entry is a directory named
// after the source video ID holding the media file plus a small JSON sidecar
// describing where it came from.
//
// # Concurrency
//
// Fetch takes a per-video file lock and downloads into a private temporary
// directory before renaming the result into place, so concurrent runs never
// observe a partially written file and never download the same video twice.
//
// # Size Management
//
// The cache enforces two constraints: a configurable size budget
// (video_source.cache_max_gib) and a 10% free-space floor on the underlying
// volume. When either limit is exceeded the manager prunes the oldest entries
// first, never the one just fetched. Manual pruning is available via
// `pcsteps cache prune`.
package videocache
