// Package tree provides arena-based syntax trees for structural merging.
//
// Each revision of a file owns one Tree. Nodes are addressed by NodeID,
// an index into the owning tree's arena, never by pointer, so matchings
// and edit scripts can reference nodes across independently owned trees
// without aliasing hazards. Spans index into the owning revision's text
// and are meaningless relative to any other revision.
package tree
