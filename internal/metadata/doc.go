// Package metadata resolves a source video URL into VideoMetadata and decides
// whether the video is plausibly a PC-building video.
//
// Inference is keyword based over the lowercased title and description. Rule
// tables are evaluated in declaration order and the first match wins, so the
// order of each table is part of its behaviour.
package metadata
