// Package lang describes grammars to the merge core.
//
// A Profile wraps a language parser together with a capability table:
// per node kind, whether the kind is an atomic leaf, whether its
// children commute, and which child carries the stable identity key.
// The core never special-cases languages; it only consults profiles.
package lang
