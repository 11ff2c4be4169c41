package main

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/bestzip/bestzip/internal/builder"
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/backends"
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"
)

var doctorCommand = &cli.Command{
	Name:  "doctor",
	Usage: "Report which backend would build archives on this host",
	Action: func(ctx context.Context, command *cli.Command) error {
		injector := getContainer(ctx)
		prober := do.MustInvoke[*backends.Prober](injector)
		registry := do.MustInvoke[*engine.Registry](injector)
		b := do.MustInvoke[*builder.Builder](injector)

		w := command.Root().Writer
		available := prober.Available(ctx)
		if path, err := exec.LookPath("zip"); err == nil {
			fmt.Fprintf(w, "zip executable: %s\n", path)
		} else {
			fmt.Fprintf(w, "zip executable: not found\n")
		}
		fmt.Fprintf(w, "native zip usable: %t\n", available)
		fmt.Fprintf(w, "registered backends: %v\n", registry.AvailableBackends())

		backend, err := b.SelectBackend(ctx, command.String("backend"))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "selected backend: %s (%s)\n", backend.Kind(), backend.Name())
		return nil
	},
}
