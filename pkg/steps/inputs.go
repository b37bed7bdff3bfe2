package steps

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

var inputsParameters = check.Schema{
	always(check.Field{Name: "format", Type: container.String, Rule: check.OneOf("MatrixMarket", "10X", "H5AD")}),
	since(model.Version110, check.Field{Name: "sample_factor", Type: container.String, Optional: true}),
}

var inputFile = check.Schema{
	always(check.Field{Name: "type", Type: container.String}),
	always(check.Field{Name: "name", Type: container.String}),
	always(check.Field{Name: "offset", Type: container.Integer, Rule: check.NonNegative("")}),
	always(check.Field{Name: "size", Type: container.Integer, Rule: check.NonNegative("")}),
}

var inputsResultsSchema = check.Schema{
	since(model.Version110, check.Field{Name: "num_samples", Type: container.Integer, Rule: check.Positive("number of samples")}),
}

// NewInputs checks the description of the loaded count matrix.
func NewInputs() model.Step {
	return model.Step{
		Name:       Inputs,
		Produces:   model.FieldNumGenes | model.FieldNumLoadedCells | model.FieldNumBlocks,
		Parameters: inputsParams,
		Results:    inputsResults,
	}
}

func inputsParams(params container.Group, vctx *model.Context) (model.Delta, error) {
	if _, err := inputsParameters.Check(params, vctx); err != nil {
		return model.Delta{}, err
	}

	files, err := check.RequireGroup(params, "files")
	if err != nil {
		return model.Delta{}, err
	}
	n, err := files.ChildCount()
	if err != nil {
		return model.Delta{}, errors.Wrap(err, "unable to count children of 'files'")
	}
	if n == 0 {
		return model.Delta{}, model.NewSchemaError(model.KindConstraintViolation, "files", "'files' should contain at least one file")
	}
	for i := range n {
		file, err := check.RequireGroup(files, strconv.Itoa(i))
		if err == nil {
			_, err = inputFile.Check(file, vctx)
		}
		if err != nil {
			return model.Delta{}, model.Wrapf(err, "failed to retrieve file %d in 'files'", i)
		}
	}

	return model.Delta{}, nil
}

func inputsResults(results container.Group, vctx *model.Context, _ model.StepOptions) (model.Delta, error) {
	var delta model.Delta

	leaf, err := check.RequireDataset(results, "dimensions", container.Integer, 2)
	if err != nil {
		return delta, err
	}
	dims, err := container.ReadVector[int64](leaf)
	if err != nil {
		return delta, errors.Wrap(err, "unable to load 'dimensions'")
	}
	if dims[0] < 0 || dims[1] < 0 {
		return delta, model.NewSchemaError(model.KindConstraintViolation, "dimensions", "entries in 'dimensions' should be non-negative")
	}

	numGenes := int(dims[0])
	if vctx.Has(model.FieldNumGenes) {
		if vctx.NumGenes() != numGenes {
			return delta, model.NewSchemaError(model.KindConstraintViolation, "dimensions",
				"number of genes in 'dimensions' (%d) is not consistent with the expected %d", numGenes, vctx.NumGenes())
		}
	} else {
		delta.SetNumGenes(numGenes)
	}
	delta.SetNumLoadedCells(int(dims[1]))

	values, err := inputsResultsSchema.Check(results, vctx)
	if err != nil {
		return delta, err
	}
	numBlocks := 1
	if values.Has("num_samples") {
		numBlocks = values.Int("num_samples")
	}
	delta.SetNumBlocks(numBlocks)

	return delta, nil
}
