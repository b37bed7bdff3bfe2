// Package stepstest builds conformant state trees for tests.
package stepstest

import (
	"strconv"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
	"github.com/askiada/go-kanaval/pkg/steps"
)

// Sizes of the trees returned by Build.
const (
	NumGenes       = 5
	NumLoadedCells = 8
	NumCells       = 6
	NumHVGs        = 4
	NumPCs         = 3
	NumClusters    = 3
	// NumSamples is the number of blocks from 1.1.0, there is a single block
	// before.
	NumSamples = 2
	// Selection is the name of the only custom selection.
	Selection = "chosen"
)

// Labels returns the snn_graph_cluster labels of the trees returned by Build.
func Labels() []int64 {
	return []int64{0, 1, 1, 2, 0, 2}
}

// Build returns a tree that passes every step for the given format version.
// The chosen clustering is snn_graph and PCA uses no block correction.
func Build(version int) *container.MemGroup {
	root := container.NewMemory()
	root.Put("format_version", container.IntScalar(int64(version)))

	numBlocks := 1
	if version >= model.Version110 {
		numBlocks = NumSamples
	}

	inputs(root.Child("inputs"), version)
	qualityControl(root.Child("quality_control"), version, numBlocks)
	normalization := root.Child("normalization")
	normalization.Child("parameters")
	normalization.Child("results")
	featureSelection(root.Child("feature_selection"))
	pca(root.Child("pca"), version)
	neighbors := root.Child("neighbor_index")
	neighbors.Child("parameters").Put("approximate", container.IntScalar(1))
	neighbors.Child("results")
	embeddings(root)
	clustering(root)
	markers(root)
	selections(root)

	return root
}

func inputs(g *container.MemGroup, version int) {
	params := g.Child("parameters")
	params.Put("format", container.StringScalar("MatrixMarket"))
	file := params.Child("files").Child("0")
	file.Put("type", container.StringScalar("mtx"))
	file.Put("name", container.StringScalar("matrix.mtx.gz"))
	file.Put("offset", container.IntScalar(0))
	file.Put("size", container.IntScalar(1024))

	results := g.Child("results")
	results.Put("dimensions", container.Ints(NumGenes, NumLoadedCells))
	if version >= model.Version110 {
		params.Put("sample_factor", container.StringScalar("batch"))
		results.Put("num_samples", container.IntScalar(NumSamples))
	}
}

func qualityControl(g *container.MemGroup, version, numBlocks int) {
	params := g.Child("parameters")
	params.Put("use_mito_default", container.IntScalar(1))
	params.Put("mito_prefix", container.StringScalar("mt-"))
	params.Put("nmads", container.FloatScalar(3))

	results := g.Child("results")
	metrics := results.Child("metrics")
	metrics.Put("sums", container.Zeros(container.Float, NumLoadedCells))
	metrics.Put("detected", container.Zeros(container.Integer, NumLoadedCells))
	metrics.Put("proportion", container.Zeros(container.Float, NumLoadedCells))

	thresholds := results.Child("thresholds")
	for _, name := range []string{"sums", "detected", "proportion"} {
		if version >= model.Version110 {
			thresholds.Put(name, container.Zeros(container.Float, numBlocks))
			continue
		}
		thresholds.Put(name, container.FloatScalar(0))
	}
	results.Put("discards", container.Ints(0, 1, 0, 0, 1, 0, 0, 0))
}

func featureSelection(g *container.MemGroup) {
	g.Child("parameters").Put("span", container.FloatScalar(0.3))
	results := g.Child("results")
	for _, name := range []string{"means", "vars", "fitted", "resids"} {
		results.Put(name, container.Zeros(container.Float, NumGenes))
	}
}

func pca(g *container.MemGroup, version int) {
	params := g.Child("parameters")
	params.Put("num_hvgs", container.IntScalar(NumHVGs))
	params.Put("num_pcs", container.IntScalar(NumPCs))
	if version >= model.Version110 {
		params.Put("block_method", container.StringScalar("none"))
	}

	results := g.Child("results")
	results.Put("pcs", container.Zeros(container.Float, NumCells, NumPCs))
	results.Put("var_exp", container.Zeros(container.Float, NumPCs))
}

func embeddings(root *container.MemGroup) {
	tsne := root.Child("tsne")
	tparams := tsne.Child("parameters")
	tparams.Put("perplexity", container.FloatScalar(30))
	tparams.Put("iterations", container.IntScalar(500))
	tparams.Put("animate", container.IntScalar(0))

	umap := root.Child("umap")
	uparams := umap.Child("parameters")
	uparams.Put("num_epochs", container.IntScalar(500))
	uparams.Put("num_neighbors", container.IntScalar(15))
	uparams.Put("min_dist", container.FloatScalar(0.1))
	uparams.Put("animate", container.IntScalar(0))

	for _, g := range []*container.MemGroup{tsne, umap} {
		results := g.Child("results")
		results.Put("x", container.Zeros(container.Float, NumCells))
		results.Put("y", container.Zeros(container.Float, NumCells))
	}
}

func clustering(root *container.MemGroup) {
	choose := root.Child("choose_clustering")
	choose.Child("parameters").Put("method", container.StringScalar("snn_graph"))
	choose.Child("results")

	kmeans := root.Child("kmeans_cluster")
	kmeans.Child("parameters").Put("k", container.IntScalar(2))
	kmeans.Child("results")

	snn := root.Child("snn_graph_cluster")
	params := snn.Child("parameters")
	params.Put("k", container.IntScalar(10))
	params.Put("scheme", container.StringScalar("rank"))
	params.Put("resolution", container.FloatScalar(0.5))
	snn.Child("results").Put("clusters", container.Ints(Labels()...))
}

func markers(root *container.MemGroup) {
	md := root.Child("marker_detection")
	md.Child("parameters")
	clusters := md.Child("results").Child("clusters")
	for i := range NumClusters {
		Statistics(clusters.Child(strconv.Itoa(i)), NumGenes)
	}
}

func selections(root *container.MemGroup) {
	cs := root.Child("custom_selections")
	cs.Child("parameters").Child("selections").Put(Selection, container.Ints(0, 2, 5))
	Statistics(cs.Child("results").Child("markers").Child(Selection), NumGenes)
}

// Statistics fills g with a marker statistic block for numGenes genes.
func Statistics(g *container.MemGroup, numGenes int) {
	g.Put("means", container.Zeros(container.Float, numGenes))
	g.Put("detected", container.Zeros(container.Float, numGenes))
	for _, eff := range steps.Effects() {
		summary := g.Child(eff)
		for _, name := range []string{"mean", "min", "min_rank"} {
			summary.Put(name, container.Zeros(container.Float, numGenes))
		}
	}
}
