package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-kanaval/pkg/pipeline/drawer"
	"github.com/askiada/go-kanaval/pkg/pipeline/measure"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

func run(t *testing.T, opt model.PipelineOption) {
	t.Helper()
	inputs := &model.StepInfo{Name: "inputs", Status: model.StatusPassed}
	qc := &model.StepInfo{Name: "quality_control", Status: model.StatusFailed}
	tsne := &model.StepInfo{Name: "tsne", Status: model.StatusSkipped}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareStep([]*model.StepInfo{model.StartStep}, inputs))
	require.NoError(t, opt.OnStepResult(inputs, time.Millisecond))
	require.NoError(t, opt.PrepareStep([]*model.StepInfo{inputs}, qc))
	require.NoError(t, opt.OnStepResult(qc, 2*time.Millisecond))
	require.NoError(t, opt.PrepareStep([]*model.StepInfo{qc}, tsne))
	require.NoError(t, opt.OnStepResult(tsne, 0))
	require.NoError(t, opt.Finish(5*time.Millisecond))
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	run(t, drawer.PipelineDrawer(drawer.NewDOTWriter(&buf), nil))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph {"))
	for _, edge := range []string{
		`"start" -> "inputs"`,
		`"inputs" -> "quality_control"`,
		`"quality_control" -> "tsne"`,
		`"tsne" -> "end"`,
	} {
		assert.Contains(t, out, edge)
	}
	assert.NotContains(t, out, `"inputs" -> "end"`)
	lower := strings.ToLower(out)
	assert.Contains(t, lower, `fillcolor="#90ee90"`)
	assert.Contains(t, lower, `fillcolor="#f08080"`)
	assert.Contains(t, lower, `fillcolor="#d3d3d3"`)
	assert.Contains(t, out, "failed, 2ms")

	// Lines follow pipeline order.
	assert.Less(t, strings.Index(out, `"inputs" [`), strings.Index(out, `"quality_control" [`))
}

func TestPipelineDrawerIsStable(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	run(t, drawer.PipelineDrawer(drawer.NewDOTWriter(&first), nil))

	opt := drawer.PipelineDrawer(drawer.NewDOTWriter(&second), nil)
	run(t, opt)
	second.Reset()
	run(t, opt)

	assert.Equal(t, first.String(), second.String())
}

func TestPipelineDrawerWithMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	fileName := filepath.Join(t.TempDir(), "steps.dot")
	d := drawer.PipelineDrawer(drawer.NewDOTDrawer(fileName), msr)

	mt := msr.AddMetric("inputs")
	mt.AddDuration(time.Millisecond)
	mt = msr.AddMetric("quality_control")
	mt.AddDuration(3 * time.Millisecond)
	run(t, d)

	content, err := os.ReadFile(fileName)
	require.NoError(t, err)
	lower := strings.ToLower(string(content))
	assert.Contains(t, lower, `color="#0000f0"`)
	assert.Contains(t, lower, `color="#f00000"`)
}
