package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	v1 "github.com/bestzip/bestzip/apis/v1"
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/sinks"
	"github.com/samber/lo"
)

// buildSink creates the publish sink for the job. It returns a nil sink when
// the job does not publish.
func (r *Runner) buildSink(ctx context.Context, publish *v1.PublishSpec) (engine.Sink, error) {
	resolved, err := ResolvePublishSpec(publish)
	if err != nil {
		return nil, err
	}

	switch resolved.Kind {
	case "":
		return nil, nil
	case sinks.StreamSinkKind:
		return sinks.NewStreamSink(r.stdout), nil
	case sinks.FilesystemSinkKind:
		spec := resolved.Spec.(*v1.FilesystemPublishSpec)
		return sinks.NewFilesystemSinkFromPath(r.fs, spec.Path)
	case sinks.S3SinkKind:
		return r.buildS3Sink(ctx, resolved.Spec.(*v1.S3PublishSpec))
	default:
		return nil, &engine.UnsupportedTypeError{
			Category:  "sink",
			Kind:      resolved.Kind,
			Available: []string{sinks.FilesystemSinkKind, sinks.S3SinkKind, sinks.StreamSinkKind},
		}
	}
}

func (r *Runner) buildS3Sink(ctx context.Context, spec *v1.S3PublishSpec) (engine.Sink, error) {
	prefix := lo.FromPtr(spec.Prefix)
	if r.uploader != nil {
		return sinks.NewS3SinkWithUploader(spec.Bucket, prefix, r.uploader), nil
	}

	cfg := sinks.S3Config{
		Bucket:         spec.Bucket,
		Region:         lo.FromPtr(spec.Region),
		Endpoint:       lo.FromPtr(spec.Endpoint),
		Prefix:         prefix,
		ForcePathStyle: spec.ForcePathStyle,
	}
	if spec.Credentials != nil {
		cfg.AccessKeyID = spec.Credentials.AccessKeyID
		cfg.SecretAccessKey = spec.Credentials.SecretAccessKey
	}

	return sinks.NewS3Sink(ctx, cfg)
}

// BuildVariables creates the variables map for expansion. It includes
// built-in variables and the allowed environment variables, which must all be
// set.
func BuildVariables(job v1.ArchiveJob, allowedEnv []string) (map[string]string, error) {
	date := time.Now().UTC()
	variables := map[string]string{
		"JOB_NAME":         job.Metadata.Name,
		"JOB_DATE_ISO8601": date.Format(engine.ISO8601Basic),
		"JOB_DATE_RFC3339": date.Format(time.RFC3339),
	}

	var errs error
	for _, envName := range allowedEnv {
		val, ok := os.LookupEnv(envName)
		if !ok {
			errs = errors.Join(errs, fmt.Errorf("environment variable %q is not set", envName))
			continue
		}
		variables[envName] = val
	}

	if errs != nil {
		return nil, errs
	}

	return variables, nil
}
