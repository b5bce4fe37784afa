// Package twelvelabs is a thin HTTP client for the TwelveLabs video
// understanding API (v1.3): index management, upload tasks, indexing status,
// and semantic search.
//
// The client never retries on its own. Non-2xx responses surface as
// *APIError carrying the status code and response body so callers can report
// the service's diagnostic verbatim. A token-bucket limiter spaces requests
// and backs off after 429 responses.
package twelvelabs
