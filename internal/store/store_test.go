package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-kanaval/internal/store"
)

func newGraph(t *testing.T, vertices ...string) (graph.Graph[string, string], *store.OrderedStore[string, string]) {
	t.Helper()
	st := store.NewOrdered[string, string]()
	g := graph.NewWithStore(graph.StringHash, st, graph.Directed(), graph.PreventCycles())
	for _, v := range vertices {
		require.NoError(t, g.AddVertex(v))
	}

	return g, st
}

func TestInsertionOrder(t *testing.T) {
	g, st := newGraph(t, "inputs", "quality_control", "pca", "tsne", "umap")
	require.NoError(t, g.AddEdge("quality_control", "umap"))
	require.NoError(t, g.AddEdge("quality_control", "tsne"))
	require.NoError(t, g.AddEdge("inputs", "quality_control"))
	require.NoError(t, g.AddEdge("quality_control", "pca"))

	vertices, err := st.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"inputs", "quality_control", "pca", "tsne", "umap"}, vertices)

	edges, err := st.ListEdges()
	require.NoError(t, err)
	var pairs [][2]string
	for _, e := range edges {
		pairs = append(pairs, [2]string{e.Source, e.Target})
	}
	assert.Equal(t, [][2]string{
		{"inputs", "quality_control"},
		{"quality_control", "umap"},
		{"quality_control", "tsne"},
		{"quality_control", "pca"},
	}, pairs)

	assert.Equal(t, []string{"umap", "tsne", "pca"}, st.Successors("quality_control"))
	assert.Equal(t, []string{"inputs"}, st.Predecessors("quality_control"))
	assert.Empty(t, st.Predecessors("inputs"))
}

func TestPreventCycles(t *testing.T) {
	tcs := map[string]struct {
		source, target string
		err            error
	}{
		"forward":   {source: "a", target: "c"},
		"backward":  {source: "c", target: "a", err: graph.ErrEdgeCreatesCycle},
		"self loop": {source: "b", target: "b", err: graph.ErrEdgeCreatesCycle},
		"duplicate": {source: "a", target: "b", err: graph.ErrEdgeAlreadyExists},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			g, _ := newGraph(t, "a", "b", "c")
			require.NoError(t, g.AddEdge("a", "b"))
			require.NoError(t, g.AddEdge("b", "c"))

			err := g.AddEdge(tc.source, tc.target)
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUpdateVertex(t *testing.T) {
	g, st := newGraph(t, "pca")

	require.NoError(t, st.UpdateVertex("pca", graph.VertexAttribute("color", "#00ff00")))
	_, props, err := g.VertexWithProperties("pca")
	require.NoError(t, err)
	assert.Equal(t, "#00ff00", props.Attributes["color"])

	assert.ErrorIs(t, st.UpdateVertex("umap"), graph.ErrVertexNotFound)
}

func TestRemove(t *testing.T) {
	g, st := newGraph(t, "a", "b", "c")
	require.NoError(t, g.AddEdge("a", "b"))

	assert.ErrorIs(t, g.RemoveVertex("a"), graph.ErrVertexHasEdges)
	require.NoError(t, g.RemoveEdge("a", "b"))
	require.NoError(t, g.RemoveVertex("a"))

	vertices, err := st.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, vertices)
	assert.Empty(t, st.Predecessors("b"))
}
