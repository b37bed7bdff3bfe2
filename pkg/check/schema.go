package check

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Dims computes the expected shape of a dataset from the context.
type Dims func(vctx *model.Context) []int

// Field describes one required child of a parameters or results group.
type Field struct {
	Name string
	Type container.DataType
	// Dims is nil for scalars.
	Dims Dims
	// Rule applies to scalars only.
	Rule Rule
	// Optional fields may be absent; when present they are fully checked.
	Optional bool
	// When gates the presence of the field on earlier values. A field whose
	// gate is closed is not checked at all.
	When func(vctx *model.Context) bool
}

// Entry scopes a field to the format versions [Since, Until). Until 0 means
// the field is still part of the latest format.
type Entry struct {
	Since int
	Until int
	Field Field
}

// Schema is the ordered, versioned list of fields of one group.
type Schema []Entry

// At returns the fields that apply to a format version, in declaration order.
func (s Schema) At(version int) []Field {
	var out []Field
	for _, e := range s {
		if version < e.Since || (e.Until != 0 && version >= e.Until) {
			continue
		}
		out = append(out, e.Field)
	}

	return out
}

// Values holds the scalars loaded while checking a schema.
type Values map[string]any

// Has reports whether the scalar name was loaded.
func (v Values) Has(name string) bool {
	_, ok := v[name]

	return ok
}

// Int returns a loaded integer scalar, 0 when absent.
func (v Values) Int(name string) int {
	i, _ := v[name].(int64)

	return int(i)
}

// Float returns a loaded float scalar, 0 when absent.
func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)

	return f
}

// String returns a loaded string scalar, "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)

	return s
}

// Check validates every field that applies to the context's format version and
// returns the loaded scalars. It stops at the first violation.
func (s Schema) Check(group container.Group, vctx *model.Context) (Values, error) {
	values := make(Values)
	for _, f := range s.At(vctx.FormatVersion()) {
		if f.When != nil && !f.When(vctx) {
			continue
		}
		if f.Optional {
			ok, err := Exists(group, f.Name)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		if f.Dims != nil {
			if _, err := RequireDataset(group, f.Name, f.Type, f.Dims(vctx)...); err != nil {
				return nil, err
			}
			continue
		}

		value, err := loadAny(group, f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		if f.Rule != nil {
			if err := f.Rule(f.Name, value); err != nil {
				return nil, err
			}
		}
		values[f.Name] = value
	}

	return values, nil
}

func loadAny(group container.Group, name string, dtype container.DataType) (any, error) {
	switch dtype {
	case container.Integer:
		return LoadInt(group, name)
	case container.Float:
		return LoadFloat(group, name)
	case container.String:
		return LoadString(group, name)
	default:
		return nil, errors.Errorf("unsupported type %s for '%s'", dtype, name)
	}
}

// Scalar returns the dims of a 0-dimensional dataset. It differs from a nil
// Dims in that the field is checked for shape only, its value is not loaded.
func Scalar() Dims {
	return func(*model.Context) []int { return []int{} }
}

// Fixed returns constant dims.
func Fixed(dims ...int) Dims {
	return func(*model.Context) []int { return dims }
}

// PerGene sizes a dataset by the number of genes.
func PerGene() Dims {
	return func(vctx *model.Context) []int { return []int{vctx.NumGenes()} }
}

// PerCell sizes a dataset by the number of retained cells.
func PerCell() Dims {
	return func(vctx *model.Context) []int { return []int{vctx.NumCells()} }
}

// PerLoadedCell sizes a dataset by the number of cells before filtering.
func PerLoadedCell() Dims {
	return func(vctx *model.Context) []int { return []int{vctx.NumLoadedCells()} }
}

// PerBlock sizes a dataset by the number of samples.
func PerBlock() Dims {
	return func(vctx *model.Context) []int { return []int{vctx.NumBlocks()} }
}
