package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option at the start of a run.
	New() error
	// PrepareStep runs before the step is validated. parents are the earlier
	// steps whose output the step consumes.
	PrepareStep(parents []*StepInfo, step *StepInfo) error
	// OnStepResult runs once the step passed, failed or was skipped.
	OnStepResult(step *StepInfo, elapsed time.Duration) error
	// Finish runs after the pipeline is finished.
	Finish(total time.Duration) error
}
