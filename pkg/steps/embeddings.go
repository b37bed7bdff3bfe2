package steps

import (
	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

var coordinates = check.Schema{
	always(check.Field{Name: "x", Type: container.Float, Dims: check.PerCell()}),
	always(check.Field{Name: "y", Type: container.Float, Dims: check.PerCell()}),
}

var tsneParameters = check.Schema{
	always(check.Field{Name: "perplexity", Type: container.Float, Rule: check.Positive("")}),
	always(check.Field{Name: "iterations", Type: container.Integer, Rule: check.Positive("number of iterations")}),
	always(check.Field{Name: "animate", Type: container.Integer, Rule: check.Flag()}),
}

var umapParameters = check.Schema{
	always(check.Field{Name: "num_epochs", Type: container.Integer, Rule: check.Positive("number of epochs")}),
	always(check.Field{Name: "num_neighbors", Type: container.Integer, Rule: check.Positive("number of neighbors")}),
	always(check.Field{Name: "min_dist", Type: container.Float, Rule: check.NonNegative("minimum distance")}),
	always(check.Field{Name: "animate", Type: container.Integer, Rule: check.Flag()}),
}

// NewNeighborIndex checks the nearest neighbor index settings. The index itself
// is not persisted.
func NewNeighborIndex() model.Step {
	return model.Step{
		Name: NeighborIndex,
		Parameters: checkParameters(check.Schema{
			always(check.Field{Name: "approximate", Type: container.Integer, Rule: check.Flag()}),
		}),
		Results: noResults,
	}
}

// NewTSNE checks the t-SNE embedding.
func NewTSNE() model.Step {
	return model.Step{
		Name:       TSNE,
		Requires:   model.FieldNumCells,
		Parameters: checkParameters(tsneParameters),
		Results:    checkResults(coordinates),
	}
}

// NewUMAP checks the UMAP embedding.
func NewUMAP() model.Step {
	return model.Step{
		Name:       UMAP,
		Requires:   model.FieldNumCells,
		Parameters: checkParameters(umapParameters),
		Results:    checkResults(coordinates),
	}
}
