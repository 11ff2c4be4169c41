package backends

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/resolver"
	"go.uber.org/zap"
)

const (
	NativeBackendKind = "native"

	defaultNativeProgram = "zip"

	// nativeWaitDelay bounds how long a cancelled build waits for the shell's
	// children to release stdout and stderr.
	nativeWaitDelay = 2 * time.Second
)

type NativeConfig struct {
	// Program is the zip executable. Defaults to "zip".
	Program string
	// Shell runs the command line. Defaults to "sh -c", or "cmd /C" on Windows.
	Shell []string
}

// NativeBackend builds archives with the host's zip tool. Sources are passed
// to it unexpanded: globbing is left to the shell and directory recursion to
// the tool.
type NativeBackend struct {
	logger  *zap.Logger
	program string
	shell   []string
}

func NewNativeBackend(logger *zap.Logger, cfg NativeConfig) *NativeBackend {
	if logger == nil {
		logger = zap.NewNop()
	}

	program := cfg.Program
	if program == "" {
		program = defaultNativeProgram
	}

	shell := cfg.Shell
	if len(shell) == 0 {
		shell = defaultShell()
	}

	return &NativeBackend{
		logger:  logger,
		program: program,
		shell:   shell,
	}
}

func (b *NativeBackend) Name() string {
	return b.program
}

func (b *NativeBackend) Kind() string {
	return NativeBackendKind
}

// CommandLine returns the shell command line used for req.
func (b *NativeBackend) CommandLine(req engine.Request) string {
	parts := []string{b.program, "--quiet", "--recurse-paths", req.Destination}
	parts = append(parts, req.Sources...)
	return strings.Join(parts, " ")
}

func (b *NativeBackend) Build(ctx context.Context, req engine.Request) error {
	command := b.CommandLine(req)

	dir, err := resolver.AbsWorkingDir(req.WorkingDir)
	if err != nil {
		return &engine.BackendError{Backend: NativeBackendKind, ExitCode: -1, Command: command, Dir: req.WorkingDir, Err: err}
	}

	args := append(append([]string{}, b.shell[1:]...), command)
	cmd := exec.CommandContext(ctx, b.shell[0], args...)
	cmd.Dir = dir
	cmd.WaitDelay = nativeWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	b.logger.Debug("invoking native zip",
		zap.String("command", command),
		zap.String("working_dir", dir),
	)
	start := time.Now()
	err = cmd.Run()
	duration := time.Since(start)
	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	b.logger.Debug("native zip finished",
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", duration),
	)

	if err == nil && exitCode == 0 {
		return nil
	}

	backendErr := &engine.BackendError{
		Backend:  NativeBackendKind,
		ExitCode: exitCode,
		Command:  command,
		Dir:      dir,
		Stderr:   strings.TrimSpace(stderr.String()),
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		backendErr.Err = ctxErr
	} else if exitCode == -1 {
		backendErr.Err = err
	}
	return backendErr
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}
