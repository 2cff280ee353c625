package main

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mrbonezy/impacted/exitcode"
	"github.com/mrbonezy/impacted/upload"
)

func newUploadCommand(a *app) *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload impacted targets for a pull request",
		Long: "Upload impacted targets for a pull request.\n\n" +
			"Configuration is read from API_TOKEN, REPOSITORY, TARGET_BRANCH, PR_NUMBER,\n" +
			"PR_SHA and IMPACTED_TARGETS_FILE, plus the optional IMPACTS_ALL_DETECTED,\n" +
			"API_URL and ACTOR.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stdout, stderr := stdio(cmd)
			return runUpload(cmd.Context(), a, envFile, stdout, stderr)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load variables from a dotenv file; variables already set win")
	return cmd
}

func runUpload(ctx context.Context, a *app, envFile string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return exitcode.WithExitCode(errors.Wrapf(err, "loading env file %s", envFile), exitcode.Config)
		}
		a.logger.Debug("loaded env file", "path", envFile)
	}

	out := upload.NewUploader(a.logger).Run(ctx, upload.ConfigFromEnv())
	a.logger.Debug("upload finished", "state", out.State, "status", out.HTTPStatus, "exit_code", out.ExitCode)
	out.Print(stdout, stderr)
	return out.Err()
}
