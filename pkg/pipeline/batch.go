package pipeline

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-kanaval/pkg/container"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// OpenFunc opens the root group of a state file.
type OpenFunc func(path string) (container.Group, error)

// FileResult is the outcome of validating one file.
type FileResult struct {
	Path    string
	Context model.Context
	Err     error
}

// ValidateFiles validates independent files with at most limit of them in
// flight. Every file gets its own root and context. Validation errors are
// reported per file; the returned error is only set when ctx is cancelled.
// Results follow the order of paths.
func ValidateFiles(ctx context.Context, p *Pipeline, open OpenFunc, paths []string, limit int) ([]FileResult, error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	results := make([]FileResult, len(paths))
	errGrp, dCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		errGrp.SetLimit(limit)
	}

	for i, path := range paths {
		results[i].Path = path
		errGrp.Go(func() error {
			select {
			case <-dCtx.Done():
				results[i].Err = errors.Wrapf(dCtx.Err(), "validation of %s", path)
				return results[i].Err
			default:
			}
			results[i].Context, results[i].Err = p.validateFile(open, path)
			return nil
		})
	}

	if err := errGrp.Wait(); err != nil {
		return results, err
	}

	return results, nil
}

func (p *Pipeline) validateFile(open OpenFunc, path string) (model.Context, error) {
	root, err := open(path)
	if err != nil {
		return model.Context{}, errors.Wrapf(err, "unable to open %s", path)
	}
	vctx, err := p.ContextFor(root)
	if err != nil {
		return model.Context{}, err
	}

	p.logger.Debug("validating file", slog.String("path", path), slog.String("format_version", model.FormatVersion(vctx.FormatVersion())))

	return p.Validate(root, *vctx)
}
