// Package ytdlp mediates access to the yt-dlp CLI used to resolve video
// metadata and download source videos.
//
// It normalizes command invocation, parses download progress lines, and
// exposes a testable Executor seam so callers can exercise metadata and
// download flows without network access.
//
// Prefer this package over ad-hoc exec.Command usage when interacting with
// yt-dlp so progress reporting and timeout handling remain consistent.
package ytdlp
