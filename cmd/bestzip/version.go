package main

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/urfave/cli/v3"
)

// Build information populated at init() from debug.ReadBuildInfo().
var (
	Version   = "unknown"
	GoVersion = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
	Modified  bool
)

func init() {
	parseBuildInfo()
}

func parseBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	Version = info.Main.Version
	GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			Commit = setting.Value
		case "vcs.time":
			BuildTime = setting.Value
		case "vcs.modified":
			Modified = setting.Value == "true"
		}
	}
}

func versionString() string {
	commit := ""
	if Commit != "unknown" {
		commit = " " + Commit
		if Modified {
			commit += "-dirty"
		}
	}
	return fmt.Sprintf("%s (%s%s)", Version, GoVersion, commit)
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information",
	Action: func(ctx context.Context, command *cli.Command) error {
		fmt.Fprintf(command.Root().Writer, "bestzip %s\n", versionString())
		if BuildTime != "unknown" {
			fmt.Fprintf(command.Root().Writer, "built: %s\n", BuildTime)
		}
		return nil
	},
}
