package steps

import (
	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Block correction methods.
const (
	BlockNone    = "none"
	BlockRegress = "regress"
	BlockMNN     = "mnn"
)

var pcaParameters = check.Schema{
	always(check.Field{Name: "num_hvgs", Type: container.Integer, Rule: check.Positive("number of HVGs")}),
	always(check.Field{Name: "num_pcs", Type: container.Integer, Rule: check.Positive("number of PCs")}),
	since(model.Version110, check.Field{Name: "block_method", Type: container.String, Rule: check.OneOf(BlockNone, BlockRegress, BlockMNN)}),
}

// pcs are stored with cells as rows.
func pcDims(vctx *model.Context) []int {
	return []int{vctx.NumCells(), vctx.NumPCs()}
}

var pcaResults = check.Schema{
	always(check.Field{Name: "pcs", Type: container.Float, Dims: pcDims}),
	always(check.Field{Name: "var_exp", Type: container.Float, Dims: func(vctx *model.Context) []int { return []int{vctx.NumPCs()} }}),
	since(model.Version110, check.Field{
		Name: "corrected",
		Type: container.Float,
		Dims: pcDims,
		When: func(vctx *model.Context) bool { return vctx.BlockMethod() == BlockMNN },
	}),
}

// NewPCA checks the principal components.
func NewPCA() model.Step {
	return model.Step{
		Name:       PCA,
		Requires:   model.FieldNumCells,
		Produces:   model.FieldNumHVGs | model.FieldNumPCs | model.FieldBlockMethod,
		Parameters: pcaParams,
		Results:    checkResults(pcaResults),
	}
}

func pcaParams(params container.Group, vctx *model.Context) (model.Delta, error) {
	var delta model.Delta
	values, err := pcaParameters.Check(params, vctx)
	if err != nil {
		return delta, err
	}

	delta.SetNumHVGs(values.Int("num_hvgs"))
	delta.SetNumPCs(values.Int("num_pcs"))
	method := BlockNone
	if values.Has("block_method") {
		method = values.String("block_method")
	}
	delta.SetBlockMethod(method)

	return delta, nil
}
