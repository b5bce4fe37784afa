// Package indexing uploads source videos to the video-understanding service
// and runs scoped semantic searches against the resulting index.
//
// Each upload is tracked as a Job moving through an explicit state machine
// (created, uploading, indexing, ready, searchable, with failed as the only
// terminal error state). Transitions outside the allowed table are rejected,
// so the job history always reflects a legal path.
//
// The Client owns the index identifier. It is set by CreateIndex (which
// reuses an existing index of the same name) or UseIndex, and is never stored
// in package state, so several pipelines can run side by side.
package indexing
