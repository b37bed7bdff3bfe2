package steps

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// NewChooseClustering checks which clustering feeds the marker detection.
func NewChooseClustering() model.Step {
	schema := check.Schema{
		always(check.Field{Name: "method", Type: container.String, Rule: check.OneOf(MethodKmeans, MethodSNNGraph)}),
	}

	return model.Step{
		Name:     ChooseClustering,
		Produces: model.FieldClusteringMethod,
		Parameters: func(params container.Group, vctx *model.Context) (model.Delta, error) {
			var delta model.Delta
			values, err := schema.Check(params, vctx)
			if err != nil {
				return delta, err
			}
			delta.SetClusteringMethod(values.String("method"))

			return delta, nil
		},
		Results: noResults,
	}
}

// NewKmeansCluster checks the k-means clustering.
func NewKmeansCluster() model.Step {
	return model.Step{
		Name:     KmeansCluster,
		Requires: model.FieldNumCells | model.FieldClusteringMethod,
		Produces: model.FieldNumClusters,
		Selects:  MethodKmeans,
		Parameters: checkParameters(check.Schema{
			always(check.Field{Name: "k", Type: container.Integer, Rule: check.Positive("number of clusters")}),
		}),
		Results: clusterResults,
	}
}

// NewSNNGraphCluster checks the shared nearest neighbor graph clustering.
func NewSNNGraphCluster() model.Step {
	return model.Step{
		Name:     SNNGraphCluster,
		Requires: model.FieldNumCells | model.FieldClusteringMethod,
		Produces: model.FieldNumClusters,
		Selects:  MethodSNNGraph,
		Parameters: checkParameters(check.Schema{
			always(check.Field{Name: "k", Type: container.Integer, Rule: check.Positive("number of neighbors")}),
			always(check.Field{Name: "scheme", Type: container.String, Rule: check.OneOf("rank", "jaccard", "number")}),
			always(check.Field{Name: "resolution", Type: container.Float, Rule: check.NonNegative("")}),
		}),
		Results: clusterResults,
	}
}

// clusterResults reads the labels when they are present or needed downstream.
// The number of clusters is only published when the step is in use.
func clusterResults(results container.Group, vctx *model.Context, opts model.StepOptions) (model.Delta, error) {
	var delta model.Delta

	present, err := check.Exists(results, "clusters")
	if err != nil {
		return delta, err
	}
	if !present && !opts.InUse {
		return delta, nil
	}

	leaf, err := check.RequireDataset(results, "clusters", container.Integer, vctx.NumCells())
	if err != nil {
		return delta, err
	}
	labels, err := container.ReadVector[int64](leaf)
	if err != nil {
		return delta, errors.Wrap(err, "unable to load 'clusters'")
	}
	count, err := CountClusters(labels)
	if err != nil {
		return delta, err
	}
	if opts.InUse {
		delta.SetNumClusters(count)
	}

	return delta, nil
}

// CountClusters returns the number of clusters described by labels, the
// largest label plus one. Labels must be non-negative and every cluster below
// the largest label must have at least one cell.
func CountClusters(labels []int64) (int, error) {
	if len(labels) == 0 {
		return 0, nil
	}
	if slices.Min(labels) < 0 {
		return 0, model.NewSchemaError(model.KindConstraintViolation, "clusters", "entries in 'clusters' should be non-negative")
	}

	unrepresented := model.NewSchemaError(model.KindConstraintViolation, "clusters", "each cluster must be represented at least once in 'clusters'")
	largest := slices.Max(labels)
	if largest >= int64(len(labels)) {
		return 0, unrepresented
	}
	seen := make([]bool, largest+1)
	for _, l := range labels {
		seen[l] = true
	}
	if slices.Contains(seen, false) {
		return 0, unrepresented
	}

	return int(largest) + 1, nil
}
