package pipeline

import (
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/check"
	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
	"github.com/askiada/go-kanaval/pkg/steps"
)

// Pipeline validates state files against an ordered list of steps. It holds
// no per-run state and may be shared by concurrent runs, provided its hooks
// are safe for concurrent use.
type Pipeline struct {
	all        []model.Step
	only       []string
	run        []model.Step
	requested  map[string]bool
	deps       *dependencies
	bestEffort bool
	logger     *slog.Logger
	hooks      []model.PipelineOption
	version    int
	seed       []model.ContextOption
}

// New creates a pipeline running the default steps.
func New(opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		all:    steps.Default(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(pipe)
	}

	deps, err := newDependencies(pipe.all)
	if err != nil {
		return nil, errors.Wrap(err, "unable to build step graph")
	}
	pipe.deps = deps

	pipe.requested = make(map[string]bool, len(pipe.all))
	for _, s := range pipe.all {
		pipe.requested[s.Name] = len(pipe.only) == 0
	}
	selected := pipe.requested
	if len(pipe.only) > 0 {
		for _, name := range pipe.only {
			if _, ok := deps.index[name]; !ok {
				return nil, errors.Wrapf(ErrUnknownStep, "'%s'", name)
			}
			pipe.requested[name] = true
		}
		selected, err = deps.closure(pipe.only)
		if err != nil {
			return nil, err
		}
	}
	for _, s := range pipe.all {
		if selected[s.Name] {
			pipe.run = append(pipe.run, s)
		}
	}

	if pipe.version != 0 && !model.SupportedVersion(pipe.version) {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%s", model.FormatVersion(pipe.version))
	}

	return pipe, nil
}

// Steps returns the steps a run validates, in order.
func (p *Pipeline) Steps() []model.Step {
	out := make([]model.Step, len(p.run))
	copy(out, p.run)

	return out
}

// Producers returns the earlier steps whose output the named step reads.
func (p *Pipeline) Producers(name string) []string {
	return p.deps.producers(name)
}

// inUse reports whether a requested step consumes the output of step. A step
// that serves a single clustering method is only in use when that method was
// chosen.
func (p *Pipeline) inUse(step model.Step, vctx *model.Context) bool {
	if step.Selects != "" {
		if !vctx.Has(model.FieldClusteringMethod) || vctx.ClusteringMethod() != step.Selects {
			return false
		}
	}
	for _, consumer := range p.deps.consumers(step.Name) {
		if p.requested[consumer] {
			return true
		}
	}

	return false
}

func (p *Pipeline) checkVersion(vctx *model.Context) error {
	if !model.SupportedVersion(vctx.FormatVersion()) {
		return errors.Wrapf(ErrUnsupportedVersion, "%s", model.FormatVersion(vctx.FormatVersion()))
	}

	return nil
}

// ValidateStep validates a single step against a context holding everything
// the step requires. The step is treated as in use. vctx is not modified, the
// caller merges the returned delta to move on.
func (p *Pipeline) ValidateStep(root container.Group, name string, vctx *model.Context) (model.Delta, error) {
	if p == nil {
		return model.Delta{}, ErrPipelineMustBeSet
	}
	if root == nil {
		return model.Delta{}, ErrRootMustBeSet
	}
	if err := p.checkVersion(vctx); err != nil {
		return model.Delta{}, err
	}
	i, ok := p.deps.index[name]
	if !ok {
		return model.Delta{}, errors.Wrapf(ErrUnknownStep, "'%s'", name)
	}
	step := p.all[i]
	if missing := step.Requires &^ vctx.Set(); missing != 0 {
		return model.Delta{}, errors.Wrapf(ErrRequirementUnset, "'%s' needs %s", name, missing)
	}

	return runStep(root, step, vctx, true)
}

// Validate runs every step against root and returns the resulting context.
// The caller's context is left as is.
func (p *Pipeline) Validate(root container.Group, vctx model.Context) (model.Context, error) {
	if p == nil {
		return vctx, ErrPipelineMustBeSet
	}
	if root == nil {
		return vctx, ErrRootMustBeSet
	}
	if err := p.checkVersion(&vctx); err != nil {
		return vctx, err
	}

	start := time.Now()
	for _, hook := range p.hooks {
		if err := hook.New(); err != nil {
			return vctx, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	scratch := vctx.Clone()
	report, err := p.validate(root, scratch)
	if finishErr := p.finish(time.Since(start)); err == nil {
		err = finishErr
	}
	if err == nil && report != nil {
		err = report
	}
	if err != nil {
		p.logger.Info("validation failed", slog.Duration("elapsed", time.Since(start)))
		return vctx, err
	}

	p.logger.Info("validation passed", slog.Duration("elapsed", time.Since(start)), slog.Any("context", scratch))

	return *scratch, nil
}

// validate runs the steps on scratch. A non-nil error stops the run, a
// non-nil report lists the failures of a best-effort run.
func (p *Pipeline) validate(root container.Group, scratch *model.Context) (*Report, error) {
	var report Report
	infos := make(map[string]*model.StepInfo, len(p.run))

	for i, step := range p.run {
		info := step.Info(i)
		info.InUse = p.inUse(step, scratch)
		infos[step.Name] = info
		if err := p.prepare(infos, info); err != nil {
			return nil, err
		}

		logger := p.logger.With(slog.String("step", step.Name))
		stepStart := time.Now()

		if missing := step.Requires &^ scratch.Set(); missing != 0 {
			if !p.bestEffort {
				return nil, errors.Wrapf(ErrRequirementUnset, "'%s' needs %s", step.Name, missing)
			}
			info.Status = model.StatusSkipped
			report.Skipped = append(report.Skipped, step.Name)
			logger.Warn("step skipped", slog.String("missing", missing.String()))
			if err := p.onResult(info, time.Since(stepStart)); err != nil {
				return nil, err
			}
			continue
		}

		delta, err := runStep(root, step, scratch, info.InUse)
		if err == nil {
			err = scratch.Merge(delta)
		}
		elapsed := time.Since(stepStart)

		if err != nil {
			info.Status, info.Err = model.StatusFailed, err
			if hookErr := p.onResult(info, elapsed); hookErr != nil {
				return nil, hookErr
			}
			if !p.bestEffort || !model.IsSchemaError(err) {
				return nil, err
			}
			logger.Warn("step failed", slog.String("kind", model.KindOf(err).String()), slog.Any("error", err))
			report.Failures = append(report.Failures, Failure{Step: step.Name, Err: err})
			continue
		}

		info.Status = model.StatusPassed
		logger.Debug("step passed", slog.Bool("in_use", info.InUse), slog.Any("delta", delta), slog.Duration("elapsed", elapsed))
		if err := p.onResult(info, elapsed); err != nil {
			return nil, err
		}
	}

	if len(report.Failures) == 0 && len(report.Skipped) == 0 {
		return nil, nil
	}

	return &report, nil
}

func (p *Pipeline) prepare(infos map[string]*model.StepInfo, info *model.StepInfo) error {
	if len(p.hooks) == 0 {
		return nil
	}
	var parents []*model.StepInfo
	for _, name := range p.deps.producers(info.Name) {
		if parent, ok := infos[name]; ok {
			parents = append(parents, parent)
		}
	}
	if len(parents) == 0 {
		parents = []*model.StepInfo{model.StartStep}
	}
	for _, hook := range p.hooks {
		if err := hook.PrepareStep(parents, info); err != nil {
			return errors.Wrapf(err, "unable to prepare step '%s'", info.Name)
		}
	}

	return nil
}

func (p *Pipeline) onResult(info *model.StepInfo, elapsed time.Duration) error {
	for _, hook := range p.hooks {
		if err := hook.OnStepResult(info, elapsed); err != nil {
			return errors.Wrapf(err, "unable to record result of step '%s'", info.Name)
		}
	}

	return nil
}

func (p *Pipeline) finish(total time.Duration) error {
	for _, hook := range p.hooks {
		if err := hook.Finish(total); err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

// DetectVersion reads the optional root "format_version" scalar. ok is false
// when the file does not record its version.
func DetectVersion(root container.Group) (version int, ok bool, err error) {
	present, err := check.Exists(root, "format_version")
	if err != nil || !present {
		return 0, false, err
	}
	v, err := check.LoadInt(root, "format_version")
	if err != nil {
		return 0, false, err
	}

	return int(v), true, nil
}

// ContextFor returns a fresh context for root: the forced format version if
// any, else the one recorded in the file, else the latest.
func (p *Pipeline) ContextFor(root container.Group) (*model.Context, error) {
	version := p.version
	if version == 0 {
		detected, ok, err := DetectVersion(root)
		if err != nil {
			return nil, err
		}
		version = model.LatestVersion
		if ok {
			version = detected
		}
	}
	vctx := model.NewContext(version, p.seed...)
	if err := p.checkVersion(vctx); err != nil {
		return nil, err
	}

	return vctx, nil
}
