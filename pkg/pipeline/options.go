package pipeline

import (
	"log/slog"

	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithSteps replaces the default steps.
func WithSteps(steps ...model.Step) Option {
	return func(p *Pipeline) {
		p.all = steps
	}
}

// Only restricts a run to the named steps and the earlier steps they depend
// on.
func Only(names ...string) Option {
	return func(p *Pipeline) {
		p.only = append(p.only, names...)
	}
}

// BestEffort keeps validating after a step fails.
func BestEffort() Option {
	return func(p *Pipeline) {
		p.bestEffort = true
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithHooks registers pipeline options notified around every step.
func WithHooks(hooks ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.hooks = append(p.hooks, hooks...)
	}
}

// WithFormatVersion forces the format version used by ContextFor instead of
// the one recorded in the file.
func WithFormatVersion(version int) Option {
	return func(p *Pipeline) {
		p.version = version
	}
}

// WithContextOptions seeds every context built by ContextFor.
func WithContextOptions(opts ...model.ContextOption) Option {
	return func(p *Pipeline) {
		p.seed = append(p.seed, opts...)
	}
}
