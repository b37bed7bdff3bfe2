package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-kanaval/pkg/container/document"
	"github.com/askiada/go-kanaval/pkg/pipeline"
	"github.com/askiada/go-kanaval/pkg/pipeline/drawer"
	"github.com/askiada/go-kanaval/pkg/pipeline/measure"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

var errGraphSingleFile = errors.New("--graph needs exactly one file")

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate state files",
		Long: `Validate one or more state files written as YAML, JSON or TOML documents.

Each file is validated against the format version it records, unless
--format-version is set; files that record none are validated against the
latest format. The command exits with status 1 when any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return a.validate(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}

	flags := cmd.Flags()
	flags.String("format-version", "", "validate against this format version, e.g. 1.1.0")
	flags.Int("num-genes", 0, "expected number of genes, checked against the inputs")
	flags.StringSlice("steps", nil, "only validate these steps and the steps they depend on")
	flags.Bool("best-effort", false, "keep validating the remaining steps after a failure")
	flags.Int("jobs", runtime.NumCPU(), "number of files validated concurrently")
	flags.String("graph", "", "write the step graph of the run to this DOT file")
	flags.Bool("watch", false, "validate again whenever a file changes")

	return cmd
}

func (a *app) pipelineOptions(numFiles int) ([]pipeline.Option, error) {
	opts := []pipeline.Option{pipeline.WithLogger(a.logger)}

	if s := a.v.GetString("format-version"); s != "" {
		version, err := model.ParseVersion(s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithFormatVersion(version))
	}
	if n := a.v.GetInt("num-genes"); n > 0 {
		opts = append(opts, pipeline.WithContextOptions(model.WithNumGenes(n)))
	}
	if only := a.v.GetStringSlice("steps"); len(only) > 0 {
		opts = append(opts, pipeline.Only(only...))
	}
	if a.v.GetBool("best-effort") {
		opts = append(opts, pipeline.BestEffort())
	}
	if path := a.v.GetString("graph"); path != "" {
		if numFiles != 1 {
			return nil, errGraphSingleFile
		}
		msr := measure.NewDefaultMeasure()
		opts = append(opts, pipeline.WithHooks(
			measure.PipelineMeasure(msr),
			drawer.PipelineDrawer(drawer.NewDOTDrawer(path), msr),
		))
	}

	return opts, nil
}

func (a *app) validate(ctx context.Context, out io.Writer, paths []string) error {
	opts, err := a.pipelineOptions(len(paths))
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(opts...)
	if err != nil {
		return err
	}

	failed, err := a.validateFiles(ctx, out, pipe, paths)
	if err != nil {
		return err
	}
	if a.v.GetBool("watch") {
		return a.watch(ctx, out, pipe, paths)
	}
	if failed > 0 {
		return errValidationFailed
	}

	return nil
}

// validateFiles prints one verdict per file and returns the number of
// failures.
func (a *app) validateFiles(ctx context.Context, out io.Writer, pipe *pipeline.Pipeline, paths []string) (int, error) {
	results, err := pipeline.ValidateFiles(ctx, pipe, document.Open, paths, a.v.GetInt("jobs"))
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(out, "%s fails to validate\n  - %v\n", res.Path, res.Err)
			a.logger.Debug("file failed", slog.String("path", res.Path), slog.String("kind", model.KindOf(res.Err).String()))
			continue
		}
		fmt.Fprintf(out, "%s validates\n", res.Path)
		a.logger.Info("file validated", slog.String("path", res.Path), slog.Any("context", res.Context))
	}

	return failed, nil
}
