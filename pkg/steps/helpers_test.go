package steps_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
	"github.com/askiada/go-kanaval/pkg/steps"
)

func stepByName(t *testing.T, name string) model.Step {
	t.Helper()
	for _, s := range steps.Default() {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no step called %s", name)

	return model.Step{}
}

// runStep validates both phases of one step the way the orchestrator does,
// without touching vctx.
func runStep(t *testing.T, step model.Step, root *container.MemGroup, vctx *model.Context, inUse bool) (model.Delta, error) {
	t.Helper()
	g := root.Walk(step.Name)
	require.NotNil(t, g, "missing group %s", step.Name)
	params := g.Walk("parameters")
	require.NotNil(t, params, "missing parameters of %s", step.Name)
	results := g.Walk("results")
	require.NotNil(t, results, "missing results of %s", step.Name)

	pd, err := step.Parameters(params, vctx)
	if err != nil {
		return model.Delta{}, err
	}
	scratch := vctx.Clone()
	require.NoError(t, scratch.Merge(pd))
	rd, err := step.Results(results, scratch, model.StepOptions{InUse: inUse, Parameters: params})
	if err != nil {
		return model.Delta{}, err
	}

	return pd.Merge(rd)
}

// contextBefore runs every step placed before name and returns the resulting
// context.
func contextBefore(t *testing.T, root *container.MemGroup, version int, name string) *model.Context {
	t.Helper()
	vctx := model.NewContext(version)
	for _, s := range steps.Default() {
		if s.Name == name {
			return vctx
		}
		inUse := s.Selects == "" || s.Selects == vctx.ClusteringMethod()
		d, err := runStep(t, s, root, vctx, inUse)
		require.NoError(t, err, "step %s", s.Name)
		require.NoError(t, vctx.Merge(d))
	}

	return vctx
}
