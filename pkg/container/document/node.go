package document

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/container"
)

type nodeKind uint8

const (
	scalarNode nodeKind = iota + 1
	listNode
	mappingNode
)

// node is a decoded document value, independent of the syntax it came from.
type node struct {
	kind nodeKind
	// keys keeps the document order of a mapping.
	keys   []string
	fields map[string]*node
	items  []*node
	// dtype and value describe a scalar. value is an int64, a float64 or a
	// string.
	dtype container.DataType
	value any
}

func newMapping() *node {
	return &node{kind: mappingNode, fields: make(map[string]*node)}
}

func (n *node) set(key string, child *node) error {
	if _, ok := n.fields[key]; ok {
		return errors.Wrapf(ErrMalformed, "duplicate key '%s'", key)
	}
	n.keys = append(n.keys, key)
	n.fields[key] = child

	return nil
}

func build(g *container.MemGroup, n *node) error {
	for _, key := range n.keys {
		child := n.fields[key]
		if child.kind == mappingNode {
			if _, isLeaf := child.fields["dtype"]; !isLeaf {
				sub, err := g.AddGroup(key)
				if err != nil {
					return err
				}
				if err := build(sub, child); err != nil {
					return err
				}
				continue
			}
		}

		var (
			leaf *container.MemLeaf
			err  error
		)
		if child.kind == mappingNode {
			leaf, err = explicitLeaf(child)
		} else {
			leaf, err = inferredLeaf(child)
		}
		if err != nil {
			return errors.WithMessagef(err, "'%s'", path(g, key))
		}
		if err := g.AddLeaf(key, leaf); err != nil {
			return err
		}
	}

	return nil
}

func path(g *container.MemGroup, key string) string {
	if g.Path() == "/" {
		return "/" + key
	}

	return g.Path() + "/" + key
}

// flatten walks nested lists in row-major order. dtype is zero when no value
// was found. Values of different types are rejected when mixed is false.
func flatten(n *node, mixed bool) (shape []int, values []*node, dtype container.DataType, err error) {
	switch n.kind {
	case scalarNode:
		return nil, []*node{n}, n.dtype, nil
	case mappingNode:
		return nil, nil, 0, errors.Wrap(ErrMalformed, "unexpected mapping in array data")
	}

	var inner []int
	for i, item := range n.items {
		itemShape, itemValues, itemType, err := flatten(item, mixed)
		if err != nil {
			return nil, nil, 0, err
		}
		if i == 0 {
			inner = itemShape
		} else if !slices.Equal(inner, itemShape) {
			return nil, nil, 0, errors.Wrap(ErrMalformed, "ragged array data")
		}
		if itemType != 0 {
			if !mixed && dtype != 0 && dtype != itemType {
				return nil, nil, 0, errors.Wrapf(ErrMalformed, "mixed %s and %s values", dtype, itemType)
			}
			dtype = itemType
		}
		values = append(values, itemValues...)
	}

	return append([]int{len(n.items)}, inner...), values, dtype, nil
}

func inferredLeaf(n *node) (*container.MemLeaf, error) {
	shape, values, dtype, err := flatten(n, false)
	if err != nil {
		return nil, err
	}
	if dtype == 0 {
		dtype = container.Float
	}

	return newLeaf(shape, values, dtype)
}

func explicitLeaf(n *node) (*container.MemLeaf, error) {
	for _, key := range n.keys {
		if key != "dtype" && key != "data" && key != "shape" {
			return nil, errors.Wrapf(ErrMalformed, "unexpected key '%s' in dataset", key)
		}
	}

	dtype, err := parseDataType(n.fields["dtype"])
	if err != nil {
		return nil, err
	}
	data, ok := n.fields["data"]
	if !ok {
		return nil, errors.Wrap(ErrMalformed, "dataset without 'data'")
	}
	shape, values, _, err := flatten(data, true)
	if err != nil {
		return nil, err
	}
	if declared, ok := n.fields["shape"]; ok {
		shape, err = parseShape(declared)
		if err != nil {
			return nil, err
		}
	}

	return newLeaf(shape, values, dtype)
}

func parseDataType(n *node) (container.DataType, error) {
	if n.kind == scalarNode && n.dtype == container.String {
		for _, dtype := range []container.DataType{container.Integer, container.Float, container.String} {
			if n.value == dtype.String() {
				return dtype, nil
			}
		}
	}

	return 0, errors.Wrap(ErrMalformed, "'dtype' must be one of integer, float or string")
}

func parseShape(n *node) ([]int, error) {
	if n.kind != listNode {
		return nil, errors.Wrap(ErrMalformed, "'shape' must be a list")
	}
	shape := make([]int, 0, len(n.items))
	for _, item := range n.items {
		if item.kind != scalarNode || item.dtype != container.Integer {
			return nil, errors.Wrap(ErrMalformed, "'shape' must hold integers")
		}
		shape = append(shape, int(item.value.(int64)))
	}

	return shape, nil
}

// newLeaf converts values to dtype. Integers are accepted where floats are
// declared, nothing else is converted.
func newLeaf(shape []int, values []*node, dtype container.DataType) (*container.MemLeaf, error) {
	var payload any
	switch dtype {
	case container.Integer:
		out := make([]int64, len(values))
		for i, v := range values {
			if v.dtype != container.Integer {
				return nil, errors.Wrapf(ErrMalformed, "%s value in integer data", v.dtype)
			}
			out[i] = v.value.(int64)
		}
		payload = out
	case container.Float:
		out := make([]float64, len(values))
		for i, v := range values {
			switch v.dtype {
			case container.Float:
				out[i] = v.value.(float64)
			case container.Integer:
				out[i] = float64(v.value.(int64))
			default:
				return nil, errors.Wrapf(ErrMalformed, "%s value in float data", v.dtype)
			}
		}
		payload = out
	default:
		out := make([]string, len(values))
		for i, v := range values {
			if v.dtype != container.String {
				return nil, errors.Wrapf(ErrMalformed, "%s value in string data", v.dtype)
			}
			out[i] = v.value.(string)
		}
		payload = out
	}

	leaf, err := container.NewLeaf(shape, payload)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}

	return leaf, nil
}
