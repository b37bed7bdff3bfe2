package pipeline

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// runStep validates one step against root. vctx is read, never written: the
// returned delta holds what both phases produced.
func runStep(root container.Group, step model.Step, vctx *model.Context, inUse bool) (model.Delta, error) {
	group, err := check.RequireGroup(root, step.Name)
	if err != nil {
		return model.Delta{}, err
	}

	params, err := check.RequireGroup(group, "parameters")
	var delta model.Delta
	if err == nil {
		delta, err = step.Parameters(params, vctx)
	}
	if err != nil {
		return model.Delta{}, model.Wrapf(err, "failed to retrieve parameters from '%s'", step.Name)
	}

	scratch := vctx.Clone()
	if err := scratch.Merge(delta); err != nil {
		return model.Delta{}, errors.Wrapf(err, "parameters of '%s'", step.Name)
	}

	results, err := check.RequireGroup(group, "results")
	var resDelta model.Delta
	if err == nil {
		resDelta, err = step.Results(results, scratch, model.StepOptions{InUse: inUse, Parameters: params})
	}
	if err != nil {
		return model.Delta{}, model.Wrapf(err, "failed to retrieve results from '%s'", step.Name)
	}

	delta, err = delta.Merge(resDelta)
	if err != nil {
		return model.Delta{}, errors.Wrapf(err, "results of '%s'", step.Name)
	}

	return delta, nil
}
