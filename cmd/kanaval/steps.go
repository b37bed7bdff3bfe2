package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/askiada/go-kanaval/pkg/pipeline"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

func newStepsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "List the validated steps in order",
		Long: `List the steps in the order they are validated, with the context fields
each one reads and writes and the earlier steps it depends on. With --steps,
only the named steps and their prerequisites are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []pipeline.Option
			if only := a.v.GetStringSlice("steps"); len(only) > 0 {
				opts = append(opts, pipeline.Only(only...))
			}
			pipe, err := pipeline.New(opts...)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tREQUIRES\tPRODUCES\tAFTER")
			for _, step := range pipe.Steps() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", step.Name, fields(step.Requires), fields(step.Produces), list(pipe.Producers(step.Name)))
			}

			return w.Flush()
		},
	}
	cmd.Flags().StringSlice("steps", nil, "only list these steps and the steps they depend on")

	return cmd
}

func fields(f model.Field) string {
	if f == 0 {
		return "-"
	}

	return f.String()
}

func list(names []string) string {
	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, ",")
}
