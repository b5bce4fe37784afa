// Package pipeline sequences one video through metadata extraction, the
// content gate, upload and indexing, step extraction and result assembly.
//
// A run either returns a complete, ordered ProcessedVideo or an error naming
// the stage that failed; nothing partial is returned. The local video cache
// and the registry's record of remote uploads survive failed runs, so a rerun
// skips work that already succeeded.
//
// SaveResults and LoadResults own the JSON artifact. Saving is atomic and
// loading validates the artifact invariants.
package pipeline
