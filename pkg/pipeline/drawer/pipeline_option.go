package drawer

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/pipeline/measure"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
	// leaves are the steps nothing has consumed yet, linked to the end step
	// once the run is over.
	leaves []string
}

func (pd *pipelineDrawer) New() error {
	pd.Reset()
	pd.leaves = pd.leaves[:0]

	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}
	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parents []*model.StepInfo, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		err := pd.AddLink(parent.Name, step.Name)
		if err != nil {
			return err
		}
		pd.consume(parent.Name)
	}
	pd.leaves = append(pd.leaves, step.Name)

	return nil
}

func (pd *pipelineDrawer) consume(name string) {
	for i, leaf := range pd.leaves {
		if leaf == name {
			pd.leaves = append(pd.leaves[:i], pd.leaves[i+1:]...)
			return
		}
	}
}

func (pd *pipelineDrawer) OnStepResult(step *model.StepInfo, elapsed time.Duration) error {
	caption := string(step.Status)
	if step.Status != model.StatusSkipped {
		caption = fmt.Sprintf("%s, %s", step.Status, elapsed.Round(time.Microsecond))
	}
	if step.InUse {
		caption += ", in use"
	}

	return pd.SetStatus(step.Name, step.Status, caption)
}

func (pd *pipelineDrawer) Finish(total time.Duration) error {
	for _, leaf := range pd.leaves {
		err := pd.AddLink(leaf, model.EndStep.Name)
		if err != nil {
			return err
		}
	}

	err := pd.SetStatus(model.EndStep.Name, model.StatusPending, total.Round(time.Microsecond).String())
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the steps of a run, linked by their dependencies and
// coloured by outcome. When measure is set, step borders also reflect their
// average duration. A drawer describes a single run at a time and must not be
// shared by concurrent runs.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
