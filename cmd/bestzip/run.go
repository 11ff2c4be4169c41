package main

import (
	"context"
	"fmt"

	"github.com/bestzip/bestzip/internal/builder"
	"github.com/bestzip/bestzip/internal/runner"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Build and publish the archive described by a job file",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "allowed-env",
			Usage: "Environment variables allowed in job configuration (can be repeated)",
		},
	},
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      "job",
			UsageText: "The job file to run, or - for stdin",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		jobFilename := command.StringArg("job")
		if jobFilename == "" {
			return fmt.Errorf("no job file provided")
		}

		injector := getContainer(ctx)
		fs := do.MustInvoke[afero.Fs](injector)

		job, err := loadJob(ctx, fs, jobFilename, command.StringSlice("allowed-env"))
		if err != nil {
			return err
		}

		if job.Spec.Publish != nil && job.Spec.Publish.Stdout != nil && isInteractive(ctx) {
			return fmt.Errorf("refusing to write archive to a terminal, redirect stdout")
		}

		b := do.MustInvoke[*builder.Builder](injector)
		r, err := runner.New(ctx, logger.Named("runner"), b, job, runner.WithFs(fs))
		if err != nil {
			return fmt.Errorf("failed to create runner: %w", err)
		}

		if err := r.Run(ctx); err != nil {
			return fmt.Errorf("failed to run job: %w", err)
		}

		logger.Info("job completed", zap.String("job_name", job.Metadata.Name))
		return nil
	},
}
