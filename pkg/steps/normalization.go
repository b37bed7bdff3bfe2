package steps

import (
	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// NewNormalization checks the normalization step, which persists nothing but
// its two groups.
func NewNormalization() model.Step {
	return model.Step{
		Name:       Normalization,
		Parameters: noParameters,
		Results:    noResults,
	}
}

// NewFeatureSelection checks the per-gene variance model.
func NewFeatureSelection() model.Step {
	return model.Step{
		Name:     FeatureSelection,
		Requires: model.FieldNumGenes,
		Parameters: checkParameters(check.Schema{
			always(check.Field{Name: "span", Type: container.Float, Rule: check.Between(0, 1)}),
		}),
		Results: checkResults(check.Schema{
			always(check.Field{Name: "means", Type: container.Float, Dims: check.PerGene()}),
			always(check.Field{Name: "vars", Type: container.Float, Dims: check.PerGene()}),
			always(check.Field{Name: "fitted", Type: container.Float, Dims: check.PerGene()}),
			always(check.Field{Name: "resids", Type: container.Float, Dims: check.PerGene()}),
		}),
	}
}
