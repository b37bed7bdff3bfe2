package container

// Kind describes what, if anything, lives under a child name.
type Kind uint8

const (
	// KindAbsent means no child exists under the name.
	KindAbsent Kind = iota
	// KindGroup means the child is a group.
	KindGroup
	// KindLeaf means the child is a leaf array.
	KindLeaf
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindGroup:
		return "group"
	case KindLeaf:
		return "dataset"
	default:
		return "unknown"
	}
}

// DataType is the primitive element type of a leaf.
type DataType uint8

const (
	// Integer leaves hold signed integers.
	Integer DataType = iota + 1
	// Float leaves hold floating point numbers.
	Float
	// String leaves hold strings.
	String
)

// String returns the lowercase name of the primitive type.
func (t DataType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "other"
	}
}

// Group is a node with named children.
type Group interface {
	// Path returns the slash separated location of the group, "/" for the root.
	Path() string
	// ChildNames returns the names of the children in storage order.
	ChildNames() ([]string, error)
	// ChildCount returns the number of children.
	ChildCount() (int, error)
	// ChildKind reports whether name is a group, a leaf or absent.
	ChildKind(name string) (Kind, error)
	// OpenGroup opens the child group called name.
	OpenGroup(name string) (Group, error)
	// OpenLeaf opens the child leaf called name.
	OpenLeaf(name string) (Leaf, error)
}

// Leaf is an n-dimensional array of a single primitive type.
//
// Payloads are flat and row-major. Reading with the wrong accessor fails with
// ErrWrongElementType.
type Leaf interface {
	Path() string
	Type() DataType
	// Shape returns the extent of each axis. Scalars have an empty shape.
	Shape() []int
	ReadInts() ([]int64, error)
	ReadFloats() ([]float64, error)
	ReadStrings() ([]string, error)
}
