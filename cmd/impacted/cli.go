package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mrbonezy/impacted/exitcode"
)

const defaultLogLevel = "warn"

// app holds what the root command resolves before any subcommand runs.
type app struct {
	logLevel string
	noColor  bool
	logger   *log.Logger
}

func newRootCommand(args []string) *cobra.Command {
	a := &app{}
	var showVersion bool
	root := &cobra.Command{
		Use:           "impacted",
		Short:         "Detect and upload the folders impacted by a pull request",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), currentVersion())
				return nil
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Print impacted version and exit")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $"+envLogLevel+" or "+defaultLogLevel)
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output (also $"+envNoColor+")")

	root.AddCommand(
		newDetectCommand(a),
		newUploadCommand(a),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	}
	return root
}

func (a *app) setup(stderr io.Writer) error {
	level := strings.TrimSpace(a.logLevel)
	if level == "" {
		level = logLevelFromEnv()
	}
	if level == "" {
		level = defaultLogLevel
	}
	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return exitcode.WithExitCode(errors.Wrapf(err, "invalid log level %q", level), exitcode.Failure)
	}
	if colorDisabled() {
		a.noColor = true
	}
	a.logger = newLogger(stderr, parsed, a.noColor)
	return nil
}

func newLogger(w io.Writer, level log.Level, plain bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "impacted",
		Level:  level,
	})
	if plain {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// stdio returns the writers a subcommand prints to.
func stdio(cmd *cobra.Command) (io.Writer, io.Writer) {
	return cmd.OutOrStdout(), cmd.ErrOrStderr()
}
