package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrbonezy/impacted/changes"
	"github.com/mrbonezy/impacted/exitcode"
	"github.com/mrbonezy/impacted/targets"
)

type detectOptions struct {
	output       string
	quiet        bool
	checkGitRepo bool
	format       string
	backend      string
	dir          string
}

func newDetectCommand(a *app) *cobra.Command {
	opts := detectOptions{}
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Write the folders touched by uncommitted changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stdout, stderr := stdio(cmd)
			return runDetect(cmd.Context(), a, opts, stdout, stderr)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", targets.DefaultOutput, "Output file for impacted folders")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress console narration")
	cmd.Flags().BoolVar(&opts.checkGitRepo, "check-git-repo", false, "Fail unless the directory is a git repository")
	cmd.Flags().StringVar(&opts.format, "format", string(targets.FormatJSON), "Output format (json or lines)")
	cmd.Flags().StringVar(&opts.backend, "git-backend", changes.BackendExec, "How to read git status (exec or go-git)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "C", ".", "Working copy to inspect")
	return cmd
}

func runDetect(ctx context.Context, a *app, opts detectOptions, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := targets.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	ws, err := changes.OpenWorkspace(opts.backend, opts.dir)
	if err != nil {
		return err
	}

	if opts.checkGitRepo {
		ok, err := ws.IsRepository(ctx)
		if err != nil {
			a.logger.Debug("repository check failed", "dir", opts.dir, "err", err)
		}
		if !ok {
			fmt.Fprintln(stderr, "Error: Not in a git repository")
			return exitcode.Reported(exitcode.Failure)
		}
	}

	rep := targets.NewReporter(stdout, opts.quiet, a.noColor)
	rep.Sayf("Analyzing git status for impacted folders...")

	entries := changes.Collect(ctx, ws, a.logger)
	if len(entries) == 0 {
		rep.Sayf("No modified files found in git status")
	} else {
		rep.Sayf("Found %d modified files", len(entries))
	}

	folders := changes.ExtractFolders(changes.PathsOf(entries)).Sorted()
	if err := targets.Write(opts.output, folders, format); err != nil {
		fmt.Fprintf(stderr, "Error %v\n", err)
		return exitcode.Reported(exitcode.Failure)
	}
	rep.Written(opts.output, folders)
	return nil
}
