// Package preflight provides readiness checks for the filesystem paths and
// the indexing service pcsteps depends on.
//
// The CLI "pcsteps check" command runs them before a user commits to a long
// download and indexing run. Remote checks are skipped when no service
// client is supplied.
package preflight
