package steps

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

var qcParameters = check.Schema{
	always(check.Field{Name: "use_mito_default", Type: container.Integer, Rule: check.Flag()}),
	always(check.Field{Name: "mito_prefix", Type: container.String}),
	always(check.Field{Name: "nmads", Type: container.Float, Rule: check.NonNegative("number of MADs")}),
}

var qcMetrics = check.Schema{
	always(check.Field{Name: "sums", Type: container.Float, Dims: check.PerLoadedCell()}),
	always(check.Field{Name: "detected", Type: container.Integer, Dims: check.PerLoadedCell()}),
	always(check.Field{Name: "proportion", Type: container.Float, Dims: check.PerLoadedCell()}),
}

// Thresholds are computed per sample from 1.1.0.
var qcThresholds = check.Schema{
	before(model.Version110, check.Field{Name: "sums", Type: container.Float, Dims: check.Scalar()}),
	before(model.Version110, check.Field{Name: "detected", Type: container.Float, Dims: check.Scalar()}),
	before(model.Version110, check.Field{Name: "proportion", Type: container.Float, Dims: check.Scalar()}),
	since(model.Version110, check.Field{Name: "sums", Type: container.Float, Dims: check.PerBlock()}),
	since(model.Version110, check.Field{Name: "detected", Type: container.Float, Dims: check.PerBlock()}),
	since(model.Version110, check.Field{Name: "proportion", Type: container.Float, Dims: check.PerBlock()}),
}

// NewQualityControl checks the per-cell metrics and the discard filter.
func NewQualityControl() model.Step {
	return model.Step{
		Name:       QualityControl,
		Requires:   model.FieldNumLoadedCells | model.FieldNumBlocks,
		Produces:   model.FieldNumCells,
		Parameters: checkParameters(qcParameters),
		Results:    qcResults,
	}
}

func qcResults(results container.Group, vctx *model.Context, _ model.StepOptions) (model.Delta, error) {
	var delta model.Delta

	subgroups := []struct {
		name   string
		schema check.Schema
	}{
		{name: "metrics", schema: qcMetrics},
		{name: "thresholds", schema: qcThresholds},
	}
	for _, sub := range subgroups {
		group, err := check.RequireGroup(results, sub.name)
		if err == nil {
			_, err = sub.schema.Check(group, vctx)
		}
		if err != nil {
			return delta, model.Wrapf(err, "failed to retrieve %s from 'results/%s'", sub.name, sub.name)
		}
	}

	leaf, err := check.RequireDataset(results, "discards", container.Integer, vctx.NumLoadedCells())
	if err != nil {
		return delta, err
	}
	discards, err := container.ReadVector[int64](leaf)
	if err != nil {
		return delta, errors.Wrap(err, "unable to load 'discards'")
	}

	discarded := 0
	for _, d := range discards {
		if d != 0 && d != 1 {
			return delta, model.NewSchemaError(model.KindConstraintViolation, "discards", "entries in 'discards' should be 0 or 1")
		}
		discarded += int(d)
	}
	delta.SetNumCells(vctx.NumLoadedCells() - discarded)

	return delta, nil
}
