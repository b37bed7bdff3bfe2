package check

import (
	"cmp"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

func loadScalar[T container.Element](parent container.Group, name string) (T, error) {
	var zero T
	leaf, err := RequireScalar(parent, name, container.DataTypeOf[T]())
	if err != nil {
		return zero, err
	}
	v, err := container.ReadScalar[T](leaf)
	if err != nil {
		return zero, errors.Wrapf(err, "unable to load '%s'", name)
	}

	return v, nil
}

// LoadInt loads an integer scalar.
func LoadInt(parent container.Group, name string) (int64, error) {
	return loadScalar[int64](parent, name)
}

// LoadFloat loads a float scalar.
func LoadFloat(parent container.Group, name string) (float64, error) {
	return loadScalar[float64](parent, name)
}

// LoadString loads a string scalar.
func LoadString(parent container.Group, name string) (string, error) {
	return loadScalar[string](parent, name)
}

func loadVector[T container.Element](parent container.Group, name string) ([]T, error) {
	dtype := container.DataTypeOf[T]()
	leaf, err := RequireLeaf(parent, name, dtype)
	if err != nil {
		return nil, err
	}
	if len(leaf.Shape()) != 1 {
		cause := model.NewSchemaError(model.KindShapeMismatch, name, "expected a 1-dimensional %s dataset", dtype)
		return nil, model.Wrapf(cause, "failed to load %s vector from '%s'", dtype, name)
	}
	out, err := container.ReadVector[T](leaf)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load '%s'", name)
	}

	return out, nil
}

// LoadIntVector loads a 1-dimensional integer dataset.
func LoadIntVector(parent container.Group, name string) ([]int64, error) {
	return loadVector[int64](parent, name)
}

// LoadFloatVector loads a 1-dimensional float dataset.
func LoadFloatVector(parent container.Group, name string) ([]float64, error) {
	return loadVector[float64](parent, name)
}

// LoadStringVector loads a 1-dimensional string dataset.
func LoadStringVector(parent container.Group, name string) ([]string, error) {
	return loadVector[string](parent, name)
}

// IsUniqueAndSorted reports whether values are strictly increasing.
func IsUniqueAndSorted[T cmp.Ordered](values []T) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}

	return true
}
