package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errValidationFailed = errors.New("validation failed")

// app holds what the commands share once flags, environment and config file
// are resolved.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "kanaval",
		Short: "Validate single-cell analysis state files",
		Long: `kanaval checks that a state file written by a single-cell analysis
pipeline holds every group and dataset its steps should have persisted, with
the expected types, dimensions and values.

Settings come from flags, then KANAVAL_* environment variables, then the file
given with --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-file", "", "write logs to a rotated file instead of stderr")

	rootCmd.AddCommand(newValidateCmd(a), newStepsCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "unable to bind flags")
	}
	a.v.SetEnvPrefix("KANAVAL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "unable to read config %s", path)
		}
	}

	logger, closer, err := newLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"), a.v.GetString("log-format"), a.v.GetString("log-file"))
	if err != nil {
		return err
	}
	a.logger, a.closer = logger, closer

	return nil
}

func (a *app) close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}
