package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/bestzip/bestzip/internal/builder"
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/backends"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var backendNames = []string{builder.AutoBackend, backends.NativeBackendKind, backends.StreamingBackendKind}

var backendFlag = &cli.StringFlag{
	Name:  "backend",
	Value: builder.AutoBackend,
	Usage: fmt.Sprintf("Backend used to build the archive %v", backendNames),
	Action: func(ctx context.Context, command *cli.Command, s string) error {
		if !slices.Contains(backendNames, s) {
			return fmt.Errorf("invalid backend %q (available: %v)", s, backendNames)
		}
		return nil
	},
}

func zipAction(ctx context.Context, command *cli.Command) error {
	args := command.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("usage: %s: expected a destination and at least one source, got %d argument(s)", command.UsageText, len(args))
	}

	logger := getLogger(ctx)
	b := do.MustInvoke[*builder.Builder](getContainer(ctx))

	req := engine.Request{
		Destination: args[0],
		Sources:     args[1:],
		WorkingDir:  command.String("cwd"),
		PackageFile: command.String("package"),
		Backend:     command.String("backend"),
	}
	logger.Debug("zip requested",
		zap.String("destination", req.Destination),
		zap.Strings("sources", req.Sources),
	)

	if err := b.Build(ctx, req); err != nil {
		return fmt.Errorf("failed to create %s: %w", req.Destination, err)
	}

	fmt.Fprintf(command.Root().Writer, "zipped %s\n", req.Destination)
	return nil
}
