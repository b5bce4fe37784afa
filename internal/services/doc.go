// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations beneath them.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and source video IDs
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (content mismatch, external service, conversion, download)
//     with errors.Is.
//
// Integrations live in subpackages: ytdlp drives the video source binary and
// twelvelabs talks to the indexing service.
package services
