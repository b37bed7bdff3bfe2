package steps

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// NewMarkerDetection checks the marker statistics of every cluster of the
// chosen clustering.
func NewMarkerDetection() model.Step {
	return model.Step{
		Name:       MarkerDetection,
		Requires:   model.FieldNumClusters | model.FieldNumGenes,
		Parameters: noParameters,
		Results:    markerResults,
	}
}

func markerResults(results container.Group, vctx *model.Context, _ model.StepOptions) (model.Delta, error) {
	clusters, err := check.RequireGroup(results, "clusters")
	if err != nil {
		return model.Delta{}, err
	}
	n := vctx.NumClusters()
	if err := check.RequireChildCount(clusters, "clusters", n, "clusters"); err != nil {
		return model.Delta{}, err
	}

	for i := range n {
		group, err := check.RequireGroup(clusters, strconv.Itoa(i))
		if err == nil {
			err = checkStatistics(group, vctx.NumGenes())
		}
		if err != nil {
			return model.Delta{}, model.Wrapf(err, "failed to retrieve statistics for cluster %d in 'results/clusters'", i)
		}
	}

	return model.Delta{}, nil
}

// checkStatistics checks one marker statistic block: the per-gene means and
// detection rates, then a summary of each effect size.
func checkStatistics(group container.Group, numGenes int) error {
	for _, name := range []string{"means", "detected"} {
		if _, err := check.RequireDataset(group, name, container.Float, numGenes); err != nil {
			return err
		}
	}

	for _, eff := range effects {
		if err := checkEffect(group, eff, numGenes); err != nil {
			return model.Wrapf(err, "failed to retrieve summary statistic for '%s'", eff)
		}
	}

	return nil
}

func checkEffect(group container.Group, eff string, numGenes int) error {
	summary, err := check.RequireGroup(group, eff)
	if err != nil {
		return err
	}
	for _, name := range []string{"mean", "min", "min_rank"} {
		if _, err := check.RequireDataset(summary, name, container.Float, numGenes); err != nil {
			return err
		}
	}

	return nil
}

// NewCustomSelections checks user-defined cell selections and their markers.
func NewCustomSelections() model.Step {
	return model.Step{
		Name:       CustomSelections,
		Requires:   model.FieldNumCells | model.FieldNumGenes,
		Parameters: selectionParams,
		Results:    selectionResults,
	}
}

func selectionParams(params container.Group, vctx *model.Context) (model.Delta, error) {
	selections, err := check.RequireGroup(params, "selections")
	if err != nil {
		return model.Delta{}, err
	}
	names, err := selections.ChildNames()
	if err != nil {
		return model.Delta{}, errors.Wrap(err, "unable to list 'selections'")
	}

	for _, name := range names {
		if err := checkSelection(selections, name, vctx.NumCells()); err != nil {
			return model.Delta{}, model.Wrapf(err, "failed to retrieve selection '%s' in 'selections'", name)
		}
	}

	return model.Delta{}, nil
}

func checkSelection(selections container.Group, name string, numCells int) error {
	indices, err := check.LoadIntVector(selections, name)
	if err != nil {
		return err
	}
	if !check.IsUniqueAndSorted(indices) {
		return model.NewSchemaError(model.KindConstraintViolation, name, "indices in '%s' should be unique and sorted", name)
	}
	if len(indices) > 0 && (indices[0] < 0 || indices[len(indices)-1] >= int64(numCells)) {
		return model.NewSchemaError(model.KindConstraintViolation, name, "indices in '%s' should lie in [0, %d)", name, numCells)
	}

	return nil
}

func selectionResults(results container.Group, vctx *model.Context, opts model.StepOptions) (model.Delta, error) {
	if opts.Parameters == nil {
		return model.Delta{}, errors.New("custom selections need their parameters group")
	}
	selections, err := opts.Parameters.OpenGroup("selections")
	if err != nil {
		return model.Delta{}, errors.Wrap(err, "unable to reopen 'selections'")
	}
	names, err := selections.ChildNames()
	if err != nil {
		return model.Delta{}, errors.Wrap(err, "unable to list 'selections'")
	}

	markers, err := check.RequireGroup(results, "markers")
	if err != nil {
		return model.Delta{}, err
	}
	if err := check.RequireChildCount(markers, "markers", len(names), "selections"); err != nil {
		return model.Delta{}, err
	}

	for _, name := range names {
		group, err := check.RequireGroup(markers, name)
		if err == nil {
			err = checkStatistics(group, vctx.NumGenes())
		}
		if err != nil {
			return model.Delta{}, model.Wrapf(err, "failed to retrieve statistics for selection '%s' in 'results/markers'", name)
		}
	}

	return model.Delta{}, nil
}
