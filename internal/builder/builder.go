// Package builder picks a backend for each archive request and runs it.
package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/backends"
	"github.com/bestzip/bestzip/internal/engine/manifest"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// AutoBackend selects the native backend when available, else streaming.
const AutoBackend = "auto"

// AvailabilityChecker reports whether the native backend can be used.
type AvailabilityChecker interface {
	Available(ctx context.Context) bool
}

type Builder struct {
	logger   *zap.Logger
	fs       afero.Fs
	prober   AvailabilityChecker
	registry *engine.Registry
}

type Option func(*Builder)

// WithFs sets the filesystem used for manifests and the streaming backend.
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

func WithProber(prober AvailabilityChecker) Option {
	return func(b *Builder) {
		b.prober = prober
	}
}

// WithRegistry replaces the backend registry. The registry must provide the
// native and streaming kinds for automatic selection to work.
func WithRegistry(registry *engine.Registry) Option {
	return func(b *Builder) {
		b.registry = registry
	}
}

func New(logger *zap.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Builder{logger: logger}
	for _, opt := range opts {
		opt(b)
	}

	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.prober == nil {
		b.prober = backends.DefaultProber()
	}
	if b.registry == nil {
		b.registry = engine.NewRegistry(logger)
		backends.Register(b.registry, b.fs)
	}

	return b
}

// SelectBackend returns the backend for name. An empty name or "auto" picks
// the native backend if the prober reports it available and the streaming
// backend otherwise.
func (b *Builder) SelectBackend(ctx context.Context, name string) (engine.Backend, error) {
	kind := name
	if kind == "" || kind == AutoBackend {
		kind = backends.StreamingBackendKind
		if b.prober.Available(ctx) {
			kind = backends.NativeBackendKind
		}
	}

	backend, err := b.registry.CreateBackend(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend: %w", err)
	}
	return backend, nil
}

// Build runs exactly one backend for req. Dependencies from req.PackageFile
// are appended after the request's own sources.
func (b *Builder) Build(ctx context.Context, req engine.Request) error {
	sources := append([]string{}, req.Sources...)

	if req.PackageFile != "" {
		patterns, err := manifest.DependencyPatterns(b.fs, req.PackageFile, req.WorkingDir)
		if err != nil {
			return err
		}
		b.logger.Debug("expanded package dependencies",
			zap.String("package_file", req.PackageFile),
			zap.Strings("patterns", patterns),
		)
		sources = append(sources, patterns...)
	}
	req.Sources = sources
	req.PackageFile = ""

	backend, err := b.SelectBackend(ctx, req.Backend)
	if err != nil {
		return err
	}

	b.logger.Info("building archive",
		zap.String("destination", req.Destination),
		zap.Strings("sources", req.Sources),
		zap.String("working_dir", req.WorkingDir),
		zap.String("backend", backend.Kind()),
	)

	start := time.Now()
	if err := backend.Build(ctx, req); err != nil {
		return err
	}
	b.logger.Info("archive built",
		zap.String("destination", req.Destination),
		zap.String("backend", backend.Kind()),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}
