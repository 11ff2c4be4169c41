package backends

import (
	"context"
	"io"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultProbeTimeout = 10 * time.Second

// ProbeFunc runs the probe command. A nil error means the native tool is usable.
type ProbeFunc func(ctx context.Context, command []string) error

// Prober answers whether the native zip tool can be used. The answer is
// computed once, on first use, and never refreshed.
type Prober struct {
	logger  *zap.Logger
	command []string
	run     ProbeFunc
	timeout time.Duration

	once      sync.Once
	available bool
}

type ProberOption func(*Prober)

// WithProbeCommand overrides the command used to probe the native tool.
func WithProbeCommand(command ...string) ProberOption {
	return func(p *Prober) {
		p.command = command
	}
}

// WithProbeFunc overrides how the probe command is run.
func WithProbeFunc(fn ProbeFunc) ProberOption {
	return func(p *Prober) {
		p.run = fn
	}
}

func NewProber(logger *zap.Logger, opts ...ProberOption) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Prober{
		logger:  logger,
		command: []string{defaultNativeProgram, "-?"},
		run:     runProbe,
		timeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether the native tool is usable. Concurrent first
// callers wait for a single probe.
func (p *Prober) Available(ctx context.Context) bool {
	p.once.Do(func() {
		// The cached answer outlives this caller, so its cancellation must not
		// decide it.
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
		defer cancel()

		start := time.Now()
		err := p.run(probeCtx, p.command)
		p.available = err == nil

		fields := []zap.Field{
			zap.Strings("command", p.command),
			zap.Bool("available", p.available),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		p.logger.Debug("probed native zip tool", fields...)
	})
	return p.available
}

func runProbe(ctx context.Context, command []string) error {
	if len(command) == 0 {
		return exec.ErrNotFound
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

var (
	defaultProber     *Prober
	defaultProberOnce sync.Once
)

// DefaultProber returns the process-wide prober.
func DefaultProber() *Prober {
	defaultProberOnce.Do(func() {
		defaultProber = NewProber(zap.L().Named("probe"))
	})
	return defaultProber
}

// HasNativeZip reports whether the native zip tool is available on this host.
func HasNativeZip(ctx context.Context) bool {
	return DefaultProber().Available(ctx)
}
