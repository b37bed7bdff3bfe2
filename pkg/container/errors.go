package container

import "github.com/pkg/errors"

// Adapter errors. They describe access failures, never schema violations.
var (
	// ErrIO is the class of all failures to read the underlying resource.
	ErrIO = errors.New("container: i/o failure")
	// ErrNotFound is returned when opening a child that does not exist.
	ErrNotFound = errors.New("container: node not found")
	// ErrNotGroup is returned when opening a leaf as a group.
	ErrNotGroup = errors.New("container: node is not a group")
	// ErrNotLeaf is returned when opening a group as a leaf.
	ErrNotLeaf = errors.New("container: node is not a leaf")
	// ErrWrongElementType is returned when a payload is read with an accessor
	// that does not match the leaf type.
	ErrWrongElementType = errors.New("container: wrong element type")
	// ErrBadShape is returned when a payload length does not match its shape.
	ErrBadShape = errors.New("container: payload does not match shape")
	// ErrDuplicateChild is returned when building a tree with a repeated name.
	ErrDuplicateChild = errors.New("container: duplicate child name")
)
