package steps

import (
	"slices"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Step names, which are also the names of the top-level groups.
const (
	Inputs           = "inputs"
	QualityControl   = "quality_control"
	Normalization    = "normalization"
	FeatureSelection = "feature_selection"
	PCA              = "pca"
	NeighborIndex    = "neighbor_index"
	TSNE             = "tsne"
	UMAP             = "umap"
	ChooseClustering = "choose_clustering"
	KmeansCluster    = "kmeans_cluster"
	SNNGraphCluster  = "snn_graph_cluster"
	MarkerDetection  = "marker_detection"
	CustomSelections = "custom_selections"
)

// Clustering methods selectable in choose_clustering.
const (
	MethodKmeans   = "kmeans"
	MethodSNNGraph = "snn_graph"
)

var effects = [...]string{"lfc", "delta_detected", "cohen", "auc"}

// Effects returns the effect size families reported for every marker
// statistic block.
func Effects() []string {
	return slices.Clone(effects[:])
}

// Default returns every step in pipeline order.
func Default() []model.Step {
	return []model.Step{
		NewInputs(),
		NewQualityControl(),
		NewNormalization(),
		NewFeatureSelection(),
		NewPCA(),
		NewNeighborIndex(),
		NewTSNE(),
		NewUMAP(),
		NewChooseClustering(),
		NewKmeansCluster(),
		NewSNNGraphCluster(),
		NewMarkerDetection(),
		NewCustomSelections(),
	}
}

// Names returns the names of the default steps in pipeline order.
func Names() []string {
	all := Default()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}

	return names
}

func noParameters(container.Group, *model.Context) (model.Delta, error) {
	return model.Delta{}, nil
}

func noResults(container.Group, *model.Context, model.StepOptions) (model.Delta, error) {
	return model.Delta{}, nil
}

func checkParameters(schema check.Schema) model.ParametersFunc {
	return func(params container.Group, vctx *model.Context) (model.Delta, error) {
		_, err := schema.Check(params, vctx)

		return model.Delta{}, err
	}
}

func checkResults(schema check.Schema) model.ResultsFunc {
	return func(results container.Group, vctx *model.Context, _ model.StepOptions) (model.Delta, error) {
		_, err := schema.Check(results, vctx)

		return model.Delta{}, err
	}
}

func since(version int, f check.Field) check.Entry {
	return check.Entry{Since: version, Field: f}
}

func always(f check.Field) check.Entry {
	return since(model.Version100, f)
}

func before(version int, f check.Field) check.Entry {
	return check.Entry{Since: model.Version100, Until: version, Field: f}
}
