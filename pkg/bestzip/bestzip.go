// Package bestzip builds zip archives with the host's native zip tool when it
// is installed and an in-process zip writer otherwise.
package bestzip

import (
	"context"

	"github.com/bestzip/bestzip/internal/builder"
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/backends"
	"go.uber.org/zap"
)

// Re-exported error types so callers can use errors.As without importing
// internal packages.
type (
	ResolutionError      = engine.ResolutionError
	BackendError         = engine.BackendError
	ManifestError        = engine.ManifestError
	UnsupportedTypeError = engine.UnsupportedTypeError
)

type Options struct {
	// Source lists files, directories or glob patterns relative to Cwd.
	Source []string
	// Destination is the archive path, relative to Cwd unless absolute.
	Destination string
	// Cwd is the working directory. Empty means the process working directory.
	Cwd string
	// PackageFile optionally names a package.json whose dependencies are
	// added as sources.
	PackageFile string
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

func (o Options) request(backend string) engine.Request {
	return engine.Request{
		Sources:     o.Source,
		Destination: o.Destination,
		WorkingDir:  o.Cwd,
		PackageFile: o.PackageFile,
		Backend:     backend,
	}
}

// Zip builds the archive with the native backend if available, else with the
// streaming backend.
func Zip(ctx context.Context, opts Options) error {
	return builder.New(opts.Logger).Build(ctx, opts.request(builder.AutoBackend))
}

// NativeZip builds the archive with the native zip tool, whether or not it
// was detected.
func NativeZip(ctx context.Context, opts Options) error {
	return builder.New(opts.Logger).Build(ctx, opts.request(backends.NativeBackendKind))
}

// StreamingZip builds the archive in-process.
func StreamingZip(ctx context.Context, opts Options) error {
	return builder.New(opts.Logger).Build(ctx, opts.request(backends.StreamingBackendKind))
}

// HasNativeZip reports whether the native zip tool is installed. The result
// is computed once per process.
func HasNativeZip(ctx context.Context) bool {
	return backends.HasNativeZip(ctx)
}
