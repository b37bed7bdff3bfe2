package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-kanaval/pkg/pipeline/model"
	"github.com/askiada/go-kanaval/pkg/steps"
)

func TestDependencies(t *testing.T) {
	t.Parallel()

	deps, err := newDependencies(steps.Default())
	require.NoError(t, err)

	tcs := map[string]struct {
		step      string
		producers []string
		consumers []string
	}{
		"inputs": {
			step:      steps.Inputs,
			consumers: []string{steps.QualityControl, steps.FeatureSelection, steps.MarkerDetection, steps.CustomSelections},
		},
		"quality control": {
			step:      steps.QualityControl,
			producers: []string{steps.Inputs},
			consumers: []string{steps.PCA, steps.TSNE, steps.UMAP, steps.KmeansCluster, steps.SNNGraphCluster, steps.CustomSelections},
		},
		"choose clustering": {
			step:      steps.ChooseClustering,
			consumers: []string{steps.KmeansCluster, steps.SNNGraphCluster},
		},
		"marker detection": {
			step:      steps.MarkerDetection,
			producers: []string{steps.Inputs, steps.KmeansCluster, steps.SNNGraphCluster},
		},
		"normalization": {
			step: steps.Normalization,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.producers, emptyAsNil(deps.producers(tc.step)))
			assert.Equal(t, tc.consumers, emptyAsNil(deps.consumers(tc.step)))
		})
	}
}

func emptyAsNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}

	return s
}

func TestClosure(t *testing.T) {
	t.Parallel()

	deps, err := newDependencies(steps.Default())
	require.NoError(t, err)

	got, err := deps.closure([]string{steps.MarkerDetection})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		steps.MarkerDetection:  true,
		steps.Inputs:           true,
		steps.QualityControl:   true,
		steps.ChooseClustering: true,
		steps.KmeansCluster:    true,
		steps.SNNGraphCluster:  true,
	}, got)

	_, err = deps.closure([]string{"harmony"})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestDependenciesErrors(t *testing.T) {
	t.Parallel()

	_, err := newDependencies(append(steps.Default(), steps.NewPCA()))
	require.ErrorIs(t, err, ErrDuplicateStep)

	_, err = newDependencies([]model.Step{steps.NewTSNE(), steps.NewQualityControl()})
	require.ErrorIs(t, err, ErrStepOrder)
	assert.Contains(t, err.Error(), "'tsne' reads num_cells from 'quality_control'")
}
