package container

import (
	"math"

	"github.com/pkg/errors"
)

// Element is the set of Go types a leaf payload can be read into.
type Element interface {
	int64 | float64 | string
}

// NDArray is a row-major payload together with its shape.
type NDArray[T Element] struct {
	Data  []T
	Shape []int
}

// At returns the element at the given multi-dimensional index.
func (a *NDArray[T]) At(idx ...int) T {
	offset := 0
	for axis, i := range idx {
		offset = offset*a.Shape[axis] + i
	}

	return a.Data[offset]
}

// DataTypeOf returns the leaf type that holds elements of type T.
func DataTypeOf[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case int64:
		return Integer
	case float64:
		return Float
	default:
		return String
	}
}

func readAll[T Element](leaf Leaf) ([]T, error) {
	var (
		out any
		err error
	)
	switch DataTypeOf[T]() {
	case Integer:
		out, err = leaf.ReadInts()
	case Float:
		out, err = leaf.ReadFloats()
	default:
		out, err = leaf.ReadStrings()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read '%s'", leaf.Path())
	}

	return out.([]T), nil
}

// ReadScalar reads a 0-dimensional leaf.
func ReadScalar[T Element](leaf Leaf) (T, error) {
	var zero T
	if len(leaf.Shape()) != 0 {
		return zero, errors.Wrapf(ErrBadShape, "'%s' is not a scalar", leaf.Path())
	}
	data, err := readAll[T](leaf)
	if err != nil {
		return zero, err
	}
	if len(data) != 1 {
		return zero, errors.Wrapf(ErrBadShape, "'%s' holds %d values", leaf.Path(), len(data))
	}

	return data[0], nil
}

// ReadVector reads a 1-dimensional leaf.
func ReadVector[T Element](leaf Leaf) ([]T, error) {
	shape := leaf.Shape()
	if len(shape) != 1 {
		return nil, errors.Wrapf(ErrBadShape, "'%s' has %d dimensions", leaf.Path(), len(shape))
	}

	return readAll[T](leaf)
}

// ReadNDArray reads a leaf of any rank as a flat row-major buffer.
func ReadNDArray[T Element](leaf Leaf) (*NDArray[T], error) {
	data, err := readAll[T](leaf)
	if err != nil {
		return nil, err
	}
	shape := leaf.Shape()
	size, err := Size(shape)
	if err != nil {
		return nil, errors.WithMessagef(err, "'%s'", leaf.Path())
	}
	if len(data) != size {
		return nil, errors.Wrapf(ErrBadShape, "'%s' holds %d values for shape %v", leaf.Path(), len(data), shape)
	}

	return &NDArray[T]{Data: data, Shape: append([]int(nil), shape...)}, nil
}

// Size returns the number of elements described by shape. Negative extents
// and products that do not fit in an int are rejected with ErrBadShape.
func Size(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, errors.Wrapf(ErrBadShape, "negative extent in %v", shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, errors.Wrapf(ErrBadShape, "too many elements for shape %v", shape)
		}
		n *= d
	}

	return n, nil
}
