package steps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
	"github.com/askiada/go-kanaval/pkg/steps"
	"github.com/askiada/go-kanaval/pkg/steps/stepstest"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"inputs", "quality_control", "normalization", "feature_selection", "pca",
		"neighbor_index", "tsne", "umap", "choose_clustering", "kmeans_cluster",
		"snn_graph_cluster", "marker_detection", "custom_selections",
	}, steps.Names())
}

func TestEffects(t *testing.T) {
	effects := steps.Effects()
	assert.Equal(t, []string{"lfc", "delta_detected", "cohen", "auc"}, effects)

	effects[0] = "changed"
	assert.Equal(t, "lfc", steps.Effects()[0])
}

func TestConformant(t *testing.T) {
	tcs := map[string]struct {
		version   int
		numBlocks int
	}{
		"1.0.0": {version: model.Version100, numBlocks: 1},
		"1.1.0": {version: model.Version110, numBlocks: stepstest.NumSamples},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			root := stepstest.Build(tc.version)
			vctx := contextBefore(t, root, tc.version, "")

			assert.Equal(t, stepstest.NumGenes, vctx.NumGenes())
			assert.Equal(t, stepstest.NumLoadedCells, vctx.NumLoadedCells())
			assert.Equal(t, tc.numBlocks, vctx.NumBlocks())
			assert.Equal(t, stepstest.NumCells, vctx.NumCells())
			assert.Equal(t, stepstest.NumHVGs, vctx.NumHVGs())
			assert.Equal(t, stepstest.NumPCs, vctx.NumPCs())
			assert.Equal(t, steps.BlockNone, vctx.BlockMethod())
			assert.Equal(t, steps.MethodSNNGraph, vctx.ClusteringMethod())
			assert.Equal(t, stepstest.NumClusters, vctx.NumClusters())
		})
	}
}

func TestViolations(t *testing.T) {
	tcs := map[string]struct {
		version int
		step    string
		mutate  func(root *container.MemGroup)
		kind    model.Kind
		message string
	}{
		"unknown input format": {
			step: steps.Inputs,
			mutate: func(root *container.MemGroup) {
				root.Walk("inputs/parameters").Put("format", container.StringScalar("CSV"))
			},
			kind:    model.KindConstraintViolation,
			message: "unrecognized value 'CSV' for 'format', must be one of 'MatrixMarket', '10X' or 'H5AD'",
		},
		"no input file": {
			step: steps.Inputs,
			mutate: func(root *container.MemGroup) {
				root.Walk("inputs/parameters/files").Remove("0")
			},
			kind:    model.KindConstraintViolation,
			message: "'files' should contain at least one file",
		},
		"input file with negative offset": {
			step: steps.Inputs,
			mutate: func(root *container.MemGroup) {
				root.Walk("inputs/parameters/files/0").Put("offset", container.IntScalar(-1))
			},
			kind:    model.KindConstraintViolation,
			message: "failed to retrieve file 0 in 'files'\n  - 'offset' must be non-negative",
		},
		"input files not indexed from zero": {
			step: steps.Inputs,
			mutate: func(root *container.MemGroup) {
				files := root.Walk("inputs/parameters/files")
				files.Remove("0")
				files.Child("1")
			},
			kind:    model.KindMissingNode,
			message: "failed to retrieve file 0 in 'files'\n  - '0' group does not exist",
		},
		"dimensions with wrong rank": {
			step: steps.Inputs,
			mutate: func(root *container.MemGroup) {
				root.Walk("inputs/results").Put("dimensions", container.Ints(5, 8, 1))
			},
			kind:    model.KindShapeMismatch,
			message: "'dimensions' dataset does not have the expected dimensions",
		},
		"missing num_samples": {
			version: model.Version110,
			step:    steps.Inputs,
			mutate: func(root *container.MemGroup) {
				root.Walk("inputs/results").Remove("num_samples")
			},
			kind:    model.KindMissingNode,
			message: "'num_samples' dataset does not exist",
		},
		"zero num_samples": {
			version: model.Version110,
			step:    steps.Inputs,
			mutate: func(root *container.MemGroup) {
				root.Walk("inputs/results").Put("num_samples", container.IntScalar(0))
			},
			kind:    model.KindConstraintViolation,
			message: "number of samples must be positive in 'num_samples'",
		},
		"qc flag out of range": {
			step: steps.QualityControl,
			mutate: func(root *container.MemGroup) {
				root.Walk("quality_control/parameters").Put("use_mito_default", container.IntScalar(2))
			},
			kind:    model.KindConstraintViolation,
			message: "'use_mito_default' must be 0 or 1",
		},
		"qc metrics of the wrong type": {
			step: steps.QualityControl,
			mutate: func(root *container.MemGroup) {
				root.Walk("quality_control/results/metrics").Put("detected", container.Zeros(container.Float, stepstest.NumLoadedCells))
			},
			kind:    model.KindTypeMismatch,
			message: "failed to retrieve metrics from 'results/metrics'\n  - 'detected' dataset should be of type integer",
		},
		"qc thresholds not per block": {
			version: model.Version110,
			step:    steps.QualityControl,
			mutate: func(root *container.MemGroup) {
				root.Walk("quality_control/results/thresholds").Put("sums", container.FloatScalar(1))
			},
			kind:    model.KindShapeMismatch,
			message: "failed to retrieve thresholds from 'results/thresholds'\n  - 'sums' dataset does not have the expected dimensions",
		},
		"qc discards not boolean": {
			step: steps.QualityControl,
			mutate: func(root *container.MemGroup) {
				root.Walk("quality_control/results").Put("discards", container.Ints(0, 2, 0, 0, 0, 0, 0, 0))
			},
			kind:    model.KindConstraintViolation,
			message: "entries in 'discards' should be 0 or 1",
		},
		"span above one": {
			step: steps.FeatureSelection,
			mutate: func(root *container.MemGroup) {
				root.Walk("feature_selection/parameters").Put("span", container.FloatScalar(1.5))
			},
			kind:    model.KindConstraintViolation,
			message: "'span' must lie in [0, 1]",
		},
		"resids per cell": {
			step: steps.FeatureSelection,
			mutate: func(root *container.MemGroup) {
				root.Walk("feature_selection/results").Put("resids", container.Zeros(container.Float, stepstest.NumCells))
			},
			kind:    model.KindShapeMismatch,
			message: "'resids' dataset does not have the expected dimensions",
		},
		"pca without components": {
			step: steps.PCA,
			mutate: func(root *container.MemGroup) {
				root.Walk("pca/parameters").Put("num_pcs", container.IntScalar(0))
			},
			kind:    model.KindConstraintViolation,
			message: "number of PCs must be positive in 'num_pcs'",
		},
		"pcs transposed": {
			step: steps.PCA,
			mutate: func(root *container.MemGroup) {
				root.Walk("pca/results").Put("pcs", container.Zeros(container.Float, stepstest.NumPCs, stepstest.NumCells))
			},
			kind:    model.KindShapeMismatch,
			message: "'pcs' dataset does not have the expected dimensions",
		},
		"pcs stored as integers": {
			step: steps.PCA,
			mutate: func(root *container.MemGroup) {
				root.Walk("pca/results").Put("pcs", container.Zeros(container.Integer, stepstest.NumCells, stepstest.NumPCs))
			},
			kind:    model.KindTypeMismatch,
			message: "'pcs' dataset should be of type float",
		},
		"approximate is a vector": {
			step: steps.NeighborIndex,
			mutate: func(root *container.MemGroup) {
				root.Walk("neighbor_index/parameters").Put("approximate", container.Ints(1))
			},
			kind:    model.KindNotScalar,
			message: "'approximate' dataset should be a scalar",
		},
		"tsne without perplexity": {
			step: steps.TSNE,
			mutate: func(root *container.MemGroup) {
				root.Walk("tsne/parameters").Remove("perplexity")
			},
			kind:    model.KindMissingNode,
			message: "'perplexity' dataset does not exist",
		},
		"umap coordinates missing": {
			step: steps.UMAP,
			mutate: func(root *container.MemGroup) {
				root.Walk("umap/results").Remove("y")
			},
			kind:    model.KindMissingNode,
			message: "'y' dataset does not exist",
		},
		"umap negative distance": {
			step: steps.UMAP,
			mutate: func(root *container.MemGroup) {
				root.Walk("umap/parameters").Put("min_dist", container.FloatScalar(-1))
			},
			kind:    model.KindConstraintViolation,
			message: "minimum distance must be non-negative",
		},
		"unknown clustering": {
			step: steps.ChooseClustering,
			mutate: func(root *container.MemGroup) {
				root.Walk("choose_clustering/parameters").Put("method", container.StringScalar("leiden"))
			},
			kind:    model.KindConstraintViolation,
			message: "unrecognized value 'leiden' for 'method', must be one of 'kmeans' or 'snn_graph'",
		},
		"cosine scheme": {
			step: steps.SNNGraphCluster,
			mutate: func(root *container.MemGroup) {
				root.Walk("snn_graph_cluster/parameters").Put("scheme", container.StringScalar("cosine"))
			},
			kind:    model.KindConstraintViolation,
			message: "unrecognized value 'cosine' for 'scheme', must be one of 'rank', 'jaccard' or 'number'",
		},
		"negative resolution": {
			step: steps.SNNGraphCluster,
			mutate: func(root *container.MemGroup) {
				root.Walk("snn_graph_cluster/parameters").Put("resolution", container.FloatScalar(-0.5))
			},
			kind:    model.KindConstraintViolation,
			message: "'resolution' must be non-negative",
		},
		"kmeans k is zero": {
			step: steps.KmeansCluster,
			mutate: func(root *container.MemGroup) {
				root.Walk("kmeans_cluster/parameters").Put("k", container.IntScalar(0))
			},
			kind:    model.KindConstraintViolation,
			message: "number of clusters must be positive in 'k'",
		},
		"cluster labels with a gap": {
			step: steps.SNNGraphCluster,
			mutate: func(root *container.MemGroup) {
				root.Walk("snn_graph_cluster/results").Put("clusters", container.Ints(0, 1, 1, 4, 0, 4))
			},
			kind:    model.KindConstraintViolation,
			message: "each cluster must be represented at least once in 'clusters'",
		},
		"negative cluster label": {
			step: steps.SNNGraphCluster,
			mutate: func(root *container.MemGroup) {
				root.Walk("snn_graph_cluster/results").Put("clusters", container.Ints(0, 1, 1, -1, 0, 2))
			},
			kind:    model.KindConstraintViolation,
			message: "entries in 'clusters' should be non-negative",
		},
		"missing cluster labels": {
			step: steps.SNNGraphCluster,
			mutate: func(root *container.MemGroup) {
				root.Walk("snn_graph_cluster/results").Remove("clusters")
			},
			kind:    model.KindMissingNode,
			message: "'clusters' dataset does not exist",
		},
		"too few marker groups": {
			step: steps.MarkerDetection,
			mutate: func(root *container.MemGroup) {
				root.Walk("marker_detection/results/clusters").Remove("2")
			},
			kind:    model.KindStructuralMismatch,
			message: "number of groups in 'clusters' is not consistent with the expected number of clusters",
		},
		"marker groups not indexed from zero": {
			step: steps.MarkerDetection,
			mutate: func(root *container.MemGroup) {
				clusters := root.Walk("marker_detection/results/clusters")
				clusters.Remove("0")
				clusters.Child("3")
			},
			kind:    model.KindMissingNode,
			message: "failed to retrieve statistics for cluster 0 in 'results/clusters'\n  - '0' group does not exist",
		},
		"effect summary with wrong extent": {
			step: steps.MarkerDetection,
			mutate: func(root *container.MemGroup) {
				root.Walk("marker_detection/results/clusters/2/cohen").Put("mean", container.Zeros(container.Float, 2))
			},
			kind: model.KindShapeMismatch,
			message: "failed to retrieve statistics for cluster 2 in 'results/clusters'\n" +
				"  - failed to retrieve summary statistic for 'cohen'\n" +
				"  - 'mean' dataset does not have the expected dimensions",
		},
		"selection not sorted": {
			step: steps.CustomSelections,
			mutate: func(root *container.MemGroup) {
				root.Walk("custom_selections/parameters/selections").Put(stepstest.Selection, container.Ints(2, 0))
			},
			kind:    model.KindConstraintViolation,
			message: "failed to retrieve selection 'chosen' in 'selections'\n  - indices in 'chosen' should be unique and sorted",
		},
		"selection out of range": {
			step: steps.CustomSelections,
			mutate: func(root *container.MemGroup) {
				root.Walk("custom_selections/parameters/selections").Put(stepstest.Selection, container.Ints(0, stepstest.NumCells))
			},
			kind:    model.KindConstraintViolation,
			message: "failed to retrieve selection 'chosen' in 'selections'\n  - indices in 'chosen' should lie in [0, 6)",
		},
		"selection without markers": {
			step: steps.CustomSelections,
			mutate: func(root *container.MemGroup) {
				root.Walk("custom_selections/parameters/selections").Put("other", container.Ints(1))
			},
			kind:    model.KindStructuralMismatch,
			message: "number of groups in 'markers' is not consistent with the expected number of selections",
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			version := tc.version
			if version == 0 {
				version = model.Version100
			}
			root := stepstest.Build(version)
			vctx := contextBefore(t, root, version, tc.step)
			before := *vctx
			tc.mutate(root)

			step := stepByName(t, tc.step)
			inUse := step.Selects == "" || step.Selects == vctx.ClusteringMethod()
			_, err := runStep(t, step, root, vctx, inUse)
			require.Error(t, err)
			assert.Equal(t, tc.kind, model.KindOf(err))
			assert.Equal(t, tc.message, err.Error())
			assert.Equal(t, before, *vctx)
		})
	}
}

func TestInputsSeededGenes(t *testing.T) {
	root := stepstest.Build(model.Version110)
	step := stepByName(t, steps.Inputs)

	d, err := runStep(t, step, root, model.NewContext(model.Version110, model.WithNumGenes(stepstest.NumGenes)), true)
	require.NoError(t, err)
	assert.False(t, d.Has(model.FieldNumGenes))
	assert.Equal(t, stepstest.NumLoadedCells, d.NumLoadedCells())

	_, err = runStep(t, step, root, model.NewContext(model.Version110, model.WithNumGenes(7)), true)
	require.Error(t, err)
	assert.Equal(t, model.KindConstraintViolation, model.KindOf(err))
}

func TestInputsNumSamples(t *testing.T) {
	tcs := map[string]struct {
		version int
		samples int64
		want    int
	}{
		"read at 1.1.0":          {version: model.Version110, samples: 3, want: 3},
		"ignored before 1.1.0":   {version: model.Version100, samples: 0, want: 1},
		"single sample at 1.1.0": {version: model.Version110, samples: 1, want: 1},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			root := stepstest.Build(tc.version)
			root.Walk("inputs/results").Put("num_samples", container.IntScalar(tc.samples))

			d, err := runStep(t, stepByName(t, steps.Inputs), root, model.NewContext(tc.version), true)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.NumBlocks())
		})
	}
}

func TestPCABlockMethod(t *testing.T) {
	tcs := map[string]struct {
		version int
		method  string
		mutate  func(results *container.MemGroup)
		want    string
		kind    model.Kind
	}{
		"absent before 1.1.0": {
			version: model.Version100,
			want:    steps.BlockNone,
		},
		"absent at 1.1.0": {
			version: model.Version110,
			kind:    model.KindMissingNode,
		},
		"unknown method": {
			version: model.Version110,
			method:  "combat",
			kind:    model.KindConstraintViolation,
		},
		"regress without corrected": {
			version: model.Version110,
			method:  steps.BlockRegress,
			want:    steps.BlockRegress,
		},
		"mnn without corrected": {
			version: model.Version110,
			method:  steps.BlockMNN,
			kind:    model.KindMissingNode,
		},
		"mnn with corrected": {
			version: model.Version110,
			method:  steps.BlockMNN,
			mutate: func(results *container.MemGroup) {
				results.Put("corrected", container.Zeros(container.Float, stepstest.NumCells, stepstest.NumPCs))
			},
			want: steps.BlockMNN,
		},
		"mnn with corrected of the wrong extent": {
			version: model.Version110,
			method:  steps.BlockMNN,
			mutate: func(results *container.MemGroup) {
				results.Put("corrected", container.Zeros(container.Float, stepstest.NumCells, 1))
			},
			kind: model.KindShapeMismatch,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			root := stepstest.Build(tc.version)
			vctx := contextBefore(t, root, tc.version, steps.PCA)
			params := root.Walk("pca/parameters")
			params.Remove("block_method")
			if tc.method != "" {
				params.Put("block_method", container.StringScalar(tc.method))
			}
			if tc.mutate != nil {
				tc.mutate(root.Walk("pca/results"))
			}

			d, err := runStep(t, stepByName(t, steps.PCA), root, vctx, true)
			if tc.kind != 0 {
				assert.Equal(t, tc.kind, model.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.BlockMethod())
			assert.Equal(t, stepstest.NumPCs, d.NumPCs())
			assert.Equal(t, stepstest.NumHVGs, d.NumHVGs())
		})
	}
}

func TestClusterResultsInUse(t *testing.T) {
	tcs := map[string]struct {
		labels  []int64
		inUse   bool
		want    int
		emitted bool
		kind    model.Kind
	}{
		"absent and unused":     {},
		"absent and in use":     {inUse: true, kind: model.KindMissingNode},
		"present and unused":    {labels: stepstest.Labels()},
		"present and in use":    {labels: stepstest.Labels(), inUse: true, want: 3, emitted: true},
		"bad labels and unused": {labels: []int64{0, 1, 1, 4, 0, 4}, kind: model.KindConstraintViolation},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			root := stepstest.Build(model.Version110)
			vctx := contextBefore(t, root, model.Version110, steps.KmeansCluster)
			results := root.Walk("kmeans_cluster/results")
			if tc.labels != nil {
				results.Put("clusters", container.Ints(tc.labels...))
			}

			d, err := runStep(t, stepByName(t, steps.KmeansCluster), root, vctx, tc.inUse)
			if tc.kind != 0 {
				assert.Equal(t, tc.kind, model.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.emitted, d.Has(model.FieldNumClusters))
			if tc.emitted {
				assert.Equal(t, tc.want, d.NumClusters())
			}
		})
	}
}

func TestCountClusters(t *testing.T) {
	tcs := map[string]struct {
		labels []int64
		want   int
		kind   model.Kind
	}{
		"empty":        {labels: []int64{}, want: 0},
		"single":       {labels: []int64{0}, want: 1},
		"partition":    {labels: []int64{0, 1, 1, 2, 0, 2}, want: 3},
		"gap":          {labels: []int64{0, 1, 1, 4, 0, 4}, kind: model.KindConstraintViolation},
		"negative":     {labels: []int64{0, -1}, kind: model.KindConstraintViolation},
		"huge label":   {labels: []int64{0, 1 << 40}, kind: model.KindConstraintViolation},
		"missing zero": {labels: []int64{1, 1}, kind: model.KindConstraintViolation},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := steps.CountClusters(tc.labels)
			if tc.kind != 0 {
				assert.Equal(t, tc.kind, model.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeterministic(t *testing.T) {
	root := stepstest.Build(model.Version110)
	root.Walk("marker_detection/results/clusters/1/auc").Remove("min_rank")
	vctx := contextBefore(t, root, model.Version110, steps.MarkerDetection)
	step := stepByName(t, steps.MarkerDetection)

	_, first := runStep(t, step, root, vctx, true)
	_, second := runStep(t, step, root, vctx, true)
	require.Error(t, first)
	assert.Equal(t, first.Error(), second.Error())
	assert.Equal(t, model.KindMissingNode, model.KindOf(second))
}
