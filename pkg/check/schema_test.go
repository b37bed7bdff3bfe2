package check_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

var testSchema = check.Schema{
	{Since: model.Version100, Field: check.Field{Name: "num_pcs", Type: container.Integer, Rule: check.Positive("number of PCs")}},
	{Since: model.Version110, Field: check.Field{Name: "block_method", Type: container.String, Rule: check.OneOf("none", "regress", "mnn")}},
	{Since: model.Version110, Field: check.Field{Name: "sample_factor", Type: container.String, Optional: true}},
	{Since: model.Version100, Until: model.Version110, Field: check.Field{Name: "legacy", Type: container.Float, Dims: check.Scalar()}},
}

func TestSchemaAt(t *testing.T) {
	names := func(fields []check.Field) []string {
		var out []string
		for _, f := range fields {
			out = append(out, f.Name)
		}
		return out
	}

	assert.Equal(t, []string{"num_pcs", "legacy"}, names(testSchema.At(model.Version100)))
	assert.Equal(t, []string{"num_pcs", "block_method", "sample_factor"}, names(testSchema.At(model.Version110)))
}

func TestSchemaCheck(t *testing.T) {
	tcs := map[string]struct {
		version int
		build   func(g *container.MemGroup)
		kind    model.Kind
	}{
		"v1.0 valid": {
			version: model.Version100,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
				g.Put("legacy", container.FloatScalar(1))
			},
		},
		"v1.0 ignores newer fields": {
			version: model.Version100,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
				g.Put("legacy", container.FloatScalar(1))
				g.Put("block_method", container.StringScalar("bogus"))
			},
		},
		"v1.1 valid without optional": {
			version: model.Version110,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
				g.Put("block_method", container.StringScalar("mnn"))
			},
		},
		"v1.1 missing": {
			version: model.Version110,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
			},
			kind: model.KindMissingNode,
		},
		"v1.1 bad enum": {
			version: model.Version110,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
				g.Put("block_method", container.StringScalar("combat"))
			},
			kind: model.KindConstraintViolation,
		},
		"v1.1 optional present with wrong type": {
			version: model.Version110,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
				g.Put("block_method", container.StringScalar("none"))
				g.Put("sample_factor", container.IntScalar(1))
			},
			kind: model.KindTypeMismatch,
		},
		"non-positive": {
			version: model.Version110,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(0))
			},
			kind: model.KindConstraintViolation,
		},
		"legacy not scalar": {
			version: model.Version100,
			build: func(g *container.MemGroup) {
				g.Put("num_pcs", container.IntScalar(5))
				g.Put("legacy", container.Floats(1))
			},
			kind: model.KindShapeMismatch,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			g := container.NewMemory()
			tc.build(g)
			values, err := testSchema.Check(g, model.NewContext(tc.version))
			if tc.kind == 0 {
				require.NoError(t, err)
				assert.Equal(t, 5, values.Int("num_pcs"))
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.kind, model.KindOf(err))
		})
	}
}

func TestSchemaGate(t *testing.T) {
	gated := check.Schema{{Since: model.Version100, Field: check.Field{
		Name: "corrected",
		Type: container.Float,
		Dims: check.Fixed(2),
		When: func(vctx *model.Context) bool { return vctx.Has(model.FieldNumPCs) },
	}}}

	g := container.NewMemory()
	_, err := gated.Check(g, model.NewContext(model.Version110))
	require.NoError(t, err)

	vctx := model.NewContext(model.Version110)
	var d model.Delta
	d.SetNumPCs(2)
	require.NoError(t, vctx.Merge(d))
	_, err = gated.Check(g, vctx)
	assert.True(t, errors.Is(err, model.ErrMissingNode))
}

func TestValues(t *testing.T) {
	v := check.Values{"k": int64(3), "res": 0.5, "scheme": "rank"}
	assert.True(t, v.Has("k"))
	assert.False(t, v.Has("x"))
	assert.Equal(t, 3, v.Int("k"))
	assert.InDelta(t, 0.5, v.Float("res"), 1e-12)
	assert.Equal(t, "rank", v.String("scheme"))
	assert.Equal(t, 0, v.Int("scheme"))
}
