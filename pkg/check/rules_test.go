package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

func TestRules(t *testing.T) {
	tcs := map[string]struct {
		rule    check.Rule
		name    string
		value   any
		message string
	}{
		"positive ok":          {rule: check.Positive(""), name: "k", value: int64(1)},
		"positive zero":        {rule: check.Positive(""), name: "k", value: int64(0), message: "'k' must be positive"},
		"positive described":   {rule: check.Positive("number of PCs"), name: "num_pcs", value: int64(-1), message: "number of PCs must be positive in 'num_pcs'"},
		"positive float":       {rule: check.Positive(""), name: "perplexity", value: 0.0, message: "'perplexity' must be positive"},
		"non-negative ok":      {rule: check.NonNegative(""), name: "resolution", value: 0.0},
		"non-negative fails":   {rule: check.NonNegative(""), name: "resolution", value: -0.1, message: "'resolution' must be non-negative"},
		"between ok":           {rule: check.Between(0, 1), name: "span", value: 1.0},
		"between fails":        {rule: check.Between(0, 1), name: "span", value: 1.5, message: "'span' must lie in [0, 1]"},
		"flag ok":              {rule: check.Flag(), name: "animate", value: int64(1)},
		"flag fails":           {rule: check.Flag(), name: "animate", value: int64(2), message: "'animate' must be 0 or 1"},
		"one of ok":            {rule: check.OneOf("rank", "jaccard", "number"), name: "scheme", value: "jaccard"},
		"one of fails":         {rule: check.OneOf("rank", "jaccard", "number"), name: "scheme", value: "cosine", message: "unrecognized value 'cosine' for 'scheme', must be one of 'rank', 'jaccard' or 'number'"},
		"one of single choice": {rule: check.OneOf("none"), name: "m", value: "x", message: "unrecognized value 'x' for 'm', must be one of 'none'"},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			err := tc.rule(tc.name, tc.value)
			if tc.message == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.message)
			assert.Equal(t, model.KindConstraintViolation, model.KindOf(err))
		})
	}
}
