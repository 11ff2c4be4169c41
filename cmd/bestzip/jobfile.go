package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	v1 "github.com/bestzip/bestzip/apis/v1"
	"github.com/bestzip/bestzip/internal/runner"
	"github.com/spf13/afero"
)

// readJobFile reads a job file, or stdin when name is "-". It returns the
// data and the directory relative paths in the job are resolved against.
func readJobFile(fs afero.Fs, name string) ([]byte, string, error) {
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read job from stdin: %w", err)
		}
		return data, "", nil
	}

	data, err := afero.ReadFile(fs, name)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Dir(name), nil
}

// loadJob reads, parses and expands a job file. Relative working directory
// and filesystem publish paths are resolved against the job file's directory.
func loadJob(ctx context.Context, fs afero.Fs, name string, allowedEnv []string) (v1.ArchiveJob, error) {
	data, jobDir, err := readJobFile(fs, name)
	if err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to read job file '%s': %w", name, err)
	}

	job, err := runner.ParseArchiveJob(data)
	if err != nil {
		return v1.ArchiveJob{}, err
	}

	variables, err := runner.BuildVariables(job, allowedEnv)
	if err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to build variables: %w", err)
	}

	if err := runner.ExpandJob(&job, variables); err != nil {
		return v1.ArchiveJob{}, fmt.Errorf("failed to expand variables: %w", err)
	}

	if jobDir != "" {
		job.Spec.WorkingDir = relativeTo(jobDir, job.Spec.WorkingDir)
		if publish := job.Spec.Publish; publish != nil && publish.Filesystem != nil {
			publish.Filesystem.Path = relativeTo(jobDir, publish.Filesystem.Path)
		}
	}

	return job, nil
}

func relativeTo(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
