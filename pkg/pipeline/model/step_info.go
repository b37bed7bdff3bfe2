package model

import "github.com/askiada/go-kanaval/pkg/container"

// Status is the outcome of a step in one validation run.
type Status string

const (
	StatusPending Status = "pending"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepInfo describes a step as seen by pipeline options.
type StepInfo struct {
	Name     string
	Index    int
	Requires Field
	Produces Field
	InUse    bool
	Status   Status
	Err      error
}

var (
	StartStep = &StepInfo{Name: "start", Index: -1}
	EndStep   = &StepInfo{Name: "end", Index: -1}
)

// StepOptions carries the orchestrator's view of a step into its results phase.
type StepOptions struct {
	// InUse is set when a requested downstream step consumes this step's
	// output, so optional outputs become mandatory.
	InUse bool
	// Parameters is the step's already validated "parameters" group.
	Parameters container.Group
}

// ParametersFunc validates the opened "parameters" group of a step.
type ParametersFunc func(params container.Group, vctx *Context) (Delta, error)

// ResultsFunc validates the opened "results" group of a step. vctx already
// holds the delta of the parameters phase.
type ResultsFunc func(results container.Group, vctx *Context, opts StepOptions) (Delta, error)

// Step is the fixed schema of one pipeline step.
type Step struct {
	// Name is also the name of the step's top-level group.
	Name string
	// Requires lists the context fields the step reads.
	Requires Field
	// Produces lists the context fields the step may write.
	Produces Field
	// Selects, when not empty, is the clustering method under which the
	// step's output is consumed downstream.
	Selects    string
	Parameters ParametersFunc
	Results    ResultsFunc
}

// Info returns a fresh StepInfo for the step at position index.
func (s Step) Info(index int) *StepInfo {
	return &StepInfo{
		Name:     s.Name,
		Index:    index,
		Requires: s.Requires,
		Produces: s.Produces,
		Status:   StatusPending,
	}
}
