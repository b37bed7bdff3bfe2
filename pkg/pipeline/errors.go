package pipeline

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet  = errors.New("pipeline must be set")
	ErrRootMustBeSet      = errors.New("root group must be set")
	ErrUnknownStep        = errors.New("unknown step")
	ErrDuplicateStep      = errors.New("duplicate step")
	ErrStepOrder          = errors.New("step reads a field produced by a later step")
	ErrRequirementUnset   = errors.New("required context field is not set")
	ErrUnsupportedVersion = errors.New("unsupported format version")
)

// Failure is the error of one step in a best-effort run.
type Failure struct {
	Step string
	Err  error
}

// Report collects the failures of a best-effort run, in step order.
type Report struct {
	Failures []Failure
	// Skipped lists the steps that did not run because a producer failed.
	Skipped []string
}

func (r *Report) Error() string {
	lines := make([]string, 0, len(r.Failures)+1)
	for _, f := range r.Failures {
		lines = append(lines, f.Err.Error())
	}
	if len(r.Skipped) > 0 {
		lines = append(lines, "skipped for lack of inputs: '"+strings.Join(r.Skipped, "', '")+"'")
	}

	return strings.Join(lines, "\n")
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (r *Report) Unwrap() []error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f.Err
	}

	return errs
}
