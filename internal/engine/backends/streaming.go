package backends

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/resolver"
	"github.com/klauspost/compress/zip"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const StreamingBackendKind = "streaming"

type StreamingConfig struct {
	// Concurrency bounds how many sources are walked and stat'ed at once.
	// Defaults to the number of CPUs.
	Concurrency int
}

// StreamingBackend builds archives in-process with a streaming zip writer.
type StreamingBackend struct {
	logger      *zap.Logger
	fs          afero.Fs
	resolver    *resolver.Resolver
	concurrency int
}

// item is a single archive member with the stats captured before writing.
type item struct {
	entry engine.Entry
	info  os.FileInfo
}

func NewStreamingBackend(logger *zap.Logger, fs afero.Fs, cfg StreamingConfig) *StreamingBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &StreamingBackend{
		logger:      logger,
		fs:          fs,
		resolver:    resolver.New(fs),
		concurrency: concurrency,
	}
}

func (b *StreamingBackend) Name() string {
	return "zip-writer"
}

func (b *StreamingBackend) Kind() string {
	return StreamingBackendKind
}

// Build resolves every source before the destination is created, so a missing
// source leaves the destination untouched. A failure while writing leaves a
// partial destination behind.
func (b *StreamingBackend) Build(ctx context.Context, req engine.Request) error {
	cwd, err := resolver.AbsWorkingDir(req.WorkingDir)
	if err != nil {
		return &engine.BackendError{Backend: StreamingBackendKind, Err: err}
	}

	entries, err := b.resolver.Resolve(ctx, req.Sources, cwd)
	if err != nil {
		return err
	}

	items, err := b.collect(ctx, entries)
	if err != nil {
		return err
	}

	destination := req.Destination
	if !filepath.IsAbs(destination) {
		destination = filepath.Join(cwd, destination)
	}

	b.logger.Debug("writing archive",
		zap.String("destination", destination),
		zap.Int("sources", len(req.Sources)),
		zap.Int("entries", len(items)),
	)
	start := time.Now()
	if err := b.write(ctx, destination, items); err != nil {
		return err
	}
	b.logger.Debug("archive written",
		zap.String("destination", destination),
		zap.Duration("duration", time.Since(start)),
	)

	return nil
}

// collect walks and stats every resolved entry concurrently. Each entry owns
// a slot so the result keeps source order, then walk order.
func (b *StreamingBackend) collect(ctx context.Context, entries []engine.Entry) ([]item, error) {
	slots := make([][]item, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, entry := range entries {
		g.Go(func() error {
			walked, err := b.resolver.Walk(gctx, entry)
			if err != nil {
				return err
			}

			items := make([]item, 0, len(walked))
			for _, e := range walked {
				info, err := b.fs.Stat(e.FullPath)
				if err != nil {
					return &engine.ResolutionError{Path: e.FullPath, Err: err}
				}
				items = append(items, item{entry: e, info: info})
			}
			slots[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return lo.Flatten(slots), nil
}

func (b *StreamingBackend) write(ctx context.Context, destination string, items []item) (err error) {
	f, err := b.fs.Create(destination)
	if err != nil {
		return &engine.BackendError{Backend: StreamingBackendKind, Err: fmt.Errorf("failed to create zip file: %w", err)}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = &engine.BackendError{Backend: StreamingBackendKind, Err: fmt.Errorf("failed to close zip file: %w", closeErr)}
		}
	}()

	zw := zip.NewWriter(f)

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return &engine.BackendError{Backend: StreamingBackendKind, Err: err}
		}

		// An archive left over from a previous run must not end up inside itself.
		if filepath.Clean(it.entry.FullPath) == filepath.Clean(destination) {
			continue
		}

		name := it.entry.ArchivePath
		if it.entry.IsDir() {
			name += "/"
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		if err := b.addItem(zw, name, it); err != nil {
			return &engine.BackendError{Backend: StreamingBackendKind, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return &engine.BackendError{Backend: StreamingBackendKind, Err: fmt.Errorf("failed to finalize archive: %w", err)}
	}

	return nil
}

func (b *StreamingBackend) addItem(zw *zip.Writer, name string, it item) error {
	header, err := zip.FileInfoHeader(it.info)
	if err != nil {
		return fmt.Errorf("failed to create zip header for %s: %w", name, err)
	}
	header.Name = name

	if it.entry.IsDir() {
		header.Method = zip.Store
		if _, err := zw.CreateHeader(header); err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", name, err)
		}
		return nil
	}

	header.Method = zip.Deflate
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry %s: %w", name, err)
	}

	src, err := b.fs.Open(it.entry.FullPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", it.entry.FullPath, err)
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write zip entry %s: %w", name, err)
	}

	return nil
}
