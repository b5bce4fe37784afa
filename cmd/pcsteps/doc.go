// Package main hosts the pcsteps CLI entrypoint and command graph.
//
// Commands resolve configuration once through commandContext, build the
// processing pipeline on demand, and render artifacts, run history and cache
// state for the terminal. Processing logic lives in internal/pipeline and its
// collaborators; this package only translates flags into calls and results
// into output.
package main
