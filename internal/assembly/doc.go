// Package assembly holds the data model shared by every pipeline stage:
// the closed vocabularies (components, actions, platforms, form factors,
// video types, skill levels, confidence tiers) and the records that flow
// between stages and into the persisted artifact.
//
// JSON field names are part of the artifact format consumed downstream and
// must stay stable.
package assembly
