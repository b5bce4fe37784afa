// Package notifications delivers run outcomes to an ntfy topic.
//
// NewService returns a no-op implementation when no topic is configured so
// the pipeline can notify unconditionally.
package notifications
