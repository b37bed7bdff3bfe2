package container

import (
	"path"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// MemGroup is an in-memory group. The zero value is not usable, start from
// NewMemory.
//
// The builder methods are not safe for concurrent use; a finished tree may be
// read from several goroutines.
type MemGroup struct {
	path   string
	names  []string
	groups map[string]*MemGroup
	leaves map[string]*MemLeaf
}

// NewMemory returns an empty root group.
func NewMemory() *MemGroup {
	return newMemGroup("/")
}

func newMemGroup(p string) *MemGroup {
	return &MemGroup{
		path:   p,
		groups: make(map[string]*MemGroup),
		leaves: make(map[string]*MemLeaf),
	}
}

func (g *MemGroup) childPath(name string) string {
	return path.Join(g.path, name)
}

// Path implements Group.
func (g *MemGroup) Path() string { return g.path }

// ChildNames implements Group.
func (g *MemGroup) ChildNames() ([]string, error) {
	return slices.Clone(g.names), nil
}

// ChildCount implements Group.
func (g *MemGroup) ChildCount() (int, error) {
	return len(g.names), nil
}

// ChildKind implements Group.
func (g *MemGroup) ChildKind(name string) (Kind, error) {
	if _, ok := g.groups[name]; ok {
		return KindGroup, nil
	}
	if _, ok := g.leaves[name]; ok {
		return KindLeaf, nil
	}

	return KindAbsent, nil
}

// OpenGroup implements Group.
func (g *MemGroup) OpenGroup(name string) (Group, error) {
	if child, ok := g.groups[name]; ok {
		return child, nil
	}
	if _, ok := g.leaves[name]; ok {
		return nil, errors.Wrapf(ErrNotGroup, "'%s'", g.childPath(name))
	}

	return nil, errors.Wrapf(ErrNotFound, "'%s'", g.childPath(name))
}

// OpenLeaf implements Group.
func (g *MemGroup) OpenLeaf(name string) (Leaf, error) {
	if child, ok := g.leaves[name]; ok {
		return child, nil
	}
	if _, ok := g.groups[name]; ok {
		return nil, errors.Wrapf(ErrNotLeaf, "'%s'", g.childPath(name))
	}

	return nil, errors.Wrapf(ErrNotFound, "'%s'", g.childPath(name))
}

// AddGroup creates a child group, failing if the name is taken.
func (g *MemGroup) AddGroup(name string) (*MemGroup, error) {
	if kind, _ := g.ChildKind(name); kind != KindAbsent {
		return nil, errors.Wrapf(ErrDuplicateChild, "'%s'", g.childPath(name))
	}
	child := newMemGroup(g.childPath(name))
	g.groups[name] = child
	g.names = append(g.names, name)

	return child, nil
}

// AddLeaf attaches a copy of leaf under name, failing if the name is taken.
func (g *MemGroup) AddLeaf(name string, leaf *MemLeaf) error {
	if kind, _ := g.ChildKind(name); kind != KindAbsent {
		return errors.Wrapf(ErrDuplicateChild, "'%s'", g.childPath(name))
	}
	g.leaves[name] = leaf.at(g.childPath(name))
	g.names = append(g.names, name)

	return nil
}

// Child returns the child group called name, creating it when missing. A leaf
// of the same name is replaced.
func (g *MemGroup) Child(name string) *MemGroup {
	if child, ok := g.groups[name]; ok {
		return child
	}
	g.Remove(name)
	child, _ := g.AddGroup(name)

	return child
}

// Put stores a copy of leaf under name, replacing any existing child, and
// returns the stored leaf.
func (g *MemGroup) Put(name string, leaf *MemLeaf) *MemLeaf {
	g.Remove(name)
	_ = g.AddLeaf(name, leaf)

	return g.leaves[name]
}

// Remove deletes the child called name and reports whether it existed.
func (g *MemGroup) Remove(name string) bool {
	_, isGroup := g.groups[name]
	_, isLeaf := g.leaves[name]
	if !isGroup && !isLeaf {
		return false
	}
	delete(g.groups, name)
	delete(g.leaves, name)
	g.names = slices.DeleteFunc(g.names, func(n string) bool { return n == name })

	return true
}

// Walk follows a slash separated path of group names and returns the group at
// the end, or nil when any element is missing.
func (g *MemGroup) Walk(p string) *MemGroup {
	current := g
	for _, name := range splitPath(p) {
		next, ok := current.groups[name]
		if !ok {
			return nil
		}
		current = next
	}

	return current
}

// Leaf returns the leaf called name, or nil.
func (g *MemGroup) Leaf(name string) *MemLeaf {
	return g.leaves[name]
}

func splitPath(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

// MemLeaf is an in-memory leaf.
type MemLeaf struct {
	path    string
	dtype   DataType
	shape   []int
	ints    []int64
	floats  []float64
	strings []string
}

var _ Group = (*MemGroup)(nil)
var _ Leaf = (*MemLeaf)(nil)

// NewLeaf builds a leaf from a typed payload. payload must be []int64,
// []float64 or []string and hold exactly Size(shape) values.
func NewLeaf(shape []int, payload any) (*MemLeaf, error) {
	leaf := &MemLeaf{shape: slices.Clone(shape)}
	n := 0
	switch data := payload.(type) {
	case []int64:
		leaf.dtype, leaf.ints, n = Integer, slices.Clone(data), len(data)
	case []float64:
		leaf.dtype, leaf.floats, n = Float, slices.Clone(data), len(data)
	case []string:
		leaf.dtype, leaf.strings, n = String, slices.Clone(data), len(data)
	default:
		return nil, errors.Wrapf(ErrWrongElementType, "unsupported payload %T", payload)
	}
	size, err := Size(shape)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, errors.Wrapf(ErrBadShape, "%d values for shape %v", n, shape)
	}

	return leaf, nil
}

func mustLeaf(shape []int, payload any) *MemLeaf {
	leaf, err := NewLeaf(shape, payload)
	if err != nil {
		panic(err)
	}

	return leaf
}

// IntScalar returns a 0-dimensional integer leaf.
func IntScalar(v int64) *MemLeaf { return mustLeaf(nil, []int64{v}) }

// FloatScalar returns a 0-dimensional float leaf.
func FloatScalar(v float64) *MemLeaf { return mustLeaf(nil, []float64{v}) }

// StringScalar returns a 0-dimensional string leaf.
func StringScalar(v string) *MemLeaf { return mustLeaf(nil, []string{v}) }

// Ints returns a 1-dimensional integer leaf.
func Ints(data ...int64) *MemLeaf { return mustLeaf([]int{len(data)}, data) }

// Floats returns a 1-dimensional float leaf.
func Floats(data ...float64) *MemLeaf { return mustLeaf([]int{len(data)}, data) }

// Strings returns a 1-dimensional string leaf.
func Strings(data ...string) *MemLeaf { return mustLeaf([]int{len(data)}, data) }

// Zeros returns a leaf of the given type and shape filled with zero values.
func Zeros(dtype DataType, shape ...int) *MemLeaf {
	n, err := Size(shape)
	if err != nil {
		panic(err)
	}
	switch dtype {
	case Integer:
		return mustLeaf(shape, make([]int64, n))
	case String:
		return mustLeaf(shape, make([]string, n))
	default:
		return mustLeaf(shape, make([]float64, n))
	}
}

func (l *MemLeaf) at(p string) *MemLeaf {
	return &MemLeaf{
		path:    p,
		dtype:   l.dtype,
		shape:   slices.Clone(l.shape),
		ints:    slices.Clone(l.ints),
		floats:  slices.Clone(l.floats),
		strings: slices.Clone(l.strings),
	}
}

// Path implements Leaf.
func (l *MemLeaf) Path() string { return l.path }

// Type implements Leaf.
func (l *MemLeaf) Type() DataType { return l.dtype }

// Shape implements Leaf.
func (l *MemLeaf) Shape() []int { return slices.Clone(l.shape) }

// ReadInts implements Leaf.
func (l *MemLeaf) ReadInts() ([]int64, error) {
	if l.dtype != Integer {
		return nil, errors.Wrapf(ErrWrongElementType, "'%s' holds %s values", l.path, l.dtype)
	}

	return slices.Clone(l.ints), nil
}

// ReadFloats implements Leaf.
func (l *MemLeaf) ReadFloats() ([]float64, error) {
	if l.dtype != Float {
		return nil, errors.Wrapf(ErrWrongElementType, "'%s' holds %s values", l.path, l.dtype)
	}

	return slices.Clone(l.floats), nil
}

// ReadStrings implements Leaf.
func (l *MemLeaf) ReadStrings() ([]string, error) {
	if l.dtype != String {
		return nil, errors.Wrapf(ErrWrongElementType, "'%s' holds %s values", l.path, l.dtype)
	}

	return slices.Clone(l.strings), nil
}
