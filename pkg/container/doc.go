// Package container defines the read-only view of a hierarchical state file
// that the validators consume.
//
// A state file is an ordered tree of named nodes. A node is either a group,
// holding further named children, or a leaf, holding an n-dimensional array
// of a single primitive type. Scalars are 0-dimensional leaves.
//
// Backends implement [Group] and [Leaf]. The package ships [MemGroup], an
// in-memory tree that tests and the document backend build on.
package container
