package measure

import (
	"time"

	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStep.Name)
	pm.AddMetric(model.EndStep.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareStep(_ []*model.StepInfo, step *model.StepInfo) error {
	pm.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) OnStepResult(step *model.StepInfo, elapsed time.Duration) error {
	mt := pm.AddMetric(step.Name)
	mt.AddOutcome(step.Status)
	if step.Status != model.StatusSkipped {
		mt.AddDuration(elapsed)
	}

	return nil
}

func (pm *pipelineMeasure) Finish(total time.Duration) error {
	end := pm.AddMetric(model.EndStep.Name)
	end.AddDuration(total)
	end.SetTotalDuration(total)

	return nil
}

// PipelineMeasure records per-step durations and outcomes into measure. The
// same measure may be shared by concurrent runs.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
