package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	v1 "github.com/bestzip/bestzip/apis/v1"
	"github.com/bestzip/bestzip/internal/builder"
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/resolver"
	"github.com/bestzip/bestzip/internal/engine/sinks"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Runner builds the archive described by an ArchiveJob and publishes it.
type Runner struct {
	logger   *zap.Logger
	job      v1.ArchiveJob
	builder  *builder.Builder
	fs       afero.Fs
	stdout   io.Writer
	uploader sinks.S3Uploader
	sink     engine.Sink
}

type Option func(*Runner)

// WithFs sets the filesystem used to read the archive and publish it to a
// directory. It should match the builder's filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Runner) {
		r.fs = fs
	}
}

// WithStdout sets the writer used by the stdout publish target.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithS3Uploader replaces the S3 client built from the job's publish spec.
func WithS3Uploader(uploader sinks.S3Uploader) Option {
	return func(r *Runner) {
		r.uploader = uploader
	}
}

var (
	defaultValidator = validator.New(validator.WithRequiredStructEnabled())
)

// ParseArchiveJob parses a YAML or JSON job file and validates it. It returns
// a validated ArchiveJob or an error if parsing or validation fails.
func ParseArchiveJob(data []byte) (v1.ArchiveJob, error) {
	var job v1.ArchiveJob
	if err := yaml.Unmarshal(data, &job); err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	if err := defaultValidator.Struct(job); err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to validate job: %w", err)
	}

	if job.Spec.Publish != nil {
		if _, err := ResolvePublishSpec(job.Spec.Publish); err != nil {
			return v1.ArchiveJob{}, fmt.Errorf("failed to validate job: %w", err)
		}
	}

	return job, nil
}

func New(ctx context.Context, logger *zap.Logger, b *builder.Builder, job v1.ArchiveJob, opts ...Option) (*Runner, error) {
	logger.Info("creating runner", zap.String("job_name", job.Metadata.Name))

	r := &Runner{
		logger:  logger,
		job:     job,
		builder: b,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}

	sink, err := r.buildSink(ctx, job.Spec.Publish)
	if err != nil {
		return nil, fmt.Errorf("failed to build sink: %w", err)
	}
	r.sink = sink

	return r, nil
}

func (r *Runner) Request() engine.Request {
	spec := r.job.Spec
	return engine.Request{
		Sources:     spec.Sources,
		Destination: spec.Destination,
		WorkingDir:  spec.WorkingDir,
		PackageFile: spec.PackageFile,
		Backend:     spec.Backend,
	}
}

func (r *Runner) Run(ctx context.Context) (err error) {
	if r.sink != nil {
		defer func() {
			// Use a background context so the sink is closed even if ctx was
			// cancelled.
			if closeErr := r.sink.Close(context.Background()); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to close sink %s: %w", r.sink.Name(), closeErr))
			}
		}()
	}

	req := r.Request()
	if err := r.builder.Build(ctx, req); err != nil {
		return fmt.Errorf("failed to build archive: %w", err)
	}

	if r.sink == nil {
		return nil
	}

	if err := r.publish(ctx, req); err != nil {
		return fmt.Errorf("failed to publish archive: %w", err)
	}

	return nil
}

func (r *Runner) publish(ctx context.Context, req engine.Request) (err error) {
	cwd, err := resolver.AbsWorkingDir(req.WorkingDir)
	if err != nil {
		return err
	}
	archivePath := req.Destination
	if !filepath.IsAbs(archivePath) {
		archivePath = filepath.Join(cwd, archivePath)
	}

	f, err := r.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	name := filepath.Base(archivePath)
	r.logger.Info("publishing archive",
		zap.String("archive", archivePath),
		zap.String("sink", r.sink.Name()),
	)
	return r.sink.Write(ctx, name, f)
}
