// Package steps turns an indexed video into an ordered list of assembly
// steps.
//
// Extraction runs a fixed battery of semantic queries, one at a time in
// declared order, and converts every hit into an assembly.AssemblyStep. The
// step's component and action come from the query when it names them and
// from keyword tables over the hit's transcript otherwise. Hits that do not
// produce a valid step are logged and skipped. Once every query has run the
// steps are stable-sorted by start time and numbered from 1.
//
// Filter and the named presets let callers slice a saved artifact the same
// way the queries sliced the video.
package steps
