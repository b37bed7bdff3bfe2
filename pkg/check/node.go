package check

import (
	"path"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

func childKind(parent container.Group, name string) (container.Kind, error) {
	kind, err := parent.ChildKind(name)
	if err != nil {
		return container.KindAbsent, errors.Wrapf(err, "unable to inspect '%s'", name)
	}

	return kind, nil
}

// Exists reports whether parent has a child called name, of any kind.
func Exists(parent container.Group, name string) (bool, error) {
	kind, err := childKind(parent, name)
	if err != nil {
		return false, err
	}

	return kind != container.KindAbsent, nil
}

// RequireGroup opens the child group called name.
func RequireGroup(parent container.Group, name string) (container.Group, error) {
	kind, err := childKind(parent, name)
	if err != nil {
		return nil, err
	}
	switch kind {
	case container.KindGroup:
	case container.KindAbsent:
		return nil, model.NewSchemaError(model.KindMissingNode, name, "'%s' group does not exist", name)
	default:
		return nil, model.NewSchemaError(model.KindWrongKind, name, "'%s' should be a group, found a %s", name, kind)
	}

	group, err := parent.OpenGroup(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open group '%s'", name)
	}

	return group, nil
}

// RequireLeaf opens the child dataset called name and checks its primitive type.
func RequireLeaf(parent container.Group, name string, dtype container.DataType) (container.Leaf, error) {
	kind, err := childKind(parent, name)
	if err != nil {
		return nil, err
	}
	switch kind {
	case container.KindLeaf:
	case container.KindAbsent:
		return nil, model.NewSchemaError(model.KindMissingNode, name, "'%s' dataset does not exist", name)
	default:
		return nil, model.NewSchemaError(model.KindWrongKind, name, "'%s' should be a dataset, found a %s", name, kind)
	}

	leaf, err := parent.OpenLeaf(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open dataset '%s'", name)
	}
	if leaf.Type() != dtype {
		return nil, model.NewSchemaError(model.KindTypeMismatch, name, "'%s' dataset should be of type %s", name, dtype)
	}

	return leaf, nil
}

// RequireShape checks the rank and every extent of leaf.
func RequireShape(leaf container.Leaf, dims ...int) (container.Leaf, error) {
	observed := leaf.Shape()
	mismatch := len(observed) != len(dims)
	for i := 0; !mismatch && i < len(dims); i++ {
		mismatch = observed[i] != dims[i]
	}
	if mismatch {
		name := path.Base(leaf.Path())
		return nil, model.NewSchemaError(model.KindShapeMismatch, name, "'%s' dataset does not have the expected dimensions", name)
	}

	return leaf, nil
}

// RequireDataset opens a dataset and checks its type and shape.
func RequireDataset(parent container.Group, name string, dtype container.DataType, dims ...int) (container.Leaf, error) {
	leaf, err := RequireLeaf(parent, name, dtype)
	if err != nil {
		return nil, err
	}

	return RequireShape(leaf, dims...)
}

// RequireScalar opens a 0-dimensional dataset of the given type.
func RequireScalar(parent container.Group, name string, dtype container.DataType) (container.Leaf, error) {
	leaf, err := RequireLeaf(parent, name, dtype)
	if err != nil {
		return nil, err
	}
	if len(leaf.Shape()) != 0 {
		return nil, model.NewSchemaError(model.KindNotScalar, name, "'%s' dataset should be a scalar", name)
	}

	return leaf, nil
}

// RequireChildCount checks that group holds exactly want children. noun names
// what the children stand for in the error message.
func RequireChildCount(group container.Group, name string, want int, noun string) error {
	got, err := group.ChildCount()
	if err != nil {
		return errors.Wrapf(err, "unable to count children of '%s'", name)
	}
	if got != want {
		return model.NewSchemaError(model.KindStructuralMismatch, name,
			"number of groups in '%s' is not consistent with the expected number of %s", name, noun)
	}

	return nil
}
