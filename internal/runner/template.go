package runner

import (
	"errors"
	"fmt"
	"os"

	v1 "github.com/bestzip/bestzip/apis/v1"
)

// ExpandJob expands ${VAR} references in the path-like fields of job in
// place: sources, destination, working directory, package file and publish
// targets. Errors for every field are collected before returning.
func ExpandJob(job *v1.ArchiveJob, variables map[string]string) error {
	if job == nil {
		return nil
	}

	e := expander{variables: variables}
	spec := &job.Spec

	for i := range spec.Sources {
		e.string(&spec.Sources[i])
	}
	e.string(&spec.Destination)
	e.string(&spec.WorkingDir)
	e.string(&spec.PackageFile)

	if publish := spec.Publish; publish != nil {
		if publish.Filesystem != nil {
			e.string(&publish.Filesystem.Path)
		}
		if s3 := publish.S3; s3 != nil {
			e.string(&s3.Bucket)
			e.ptr(s3.Region)
			e.ptr(s3.Endpoint)
			e.ptr(s3.Prefix)
			if s3.Credentials != nil {
				e.string(&s3.Credentials.AccessKeyID)
				e.string(&s3.Credentials.SecretAccessKey)
			}
		}
	}

	return e.errs
}

type expander struct {
	variables map[string]string
	errs      error
}

func (e *expander) string(value *string) {
	expanded, err := Expand(*value, e.variables)
	if err != nil {
		e.errs = errors.Join(e.errs, err)
		return
	}
	*value = expanded
}

func (e *expander) ptr(value *string) {
	if value != nil {
		e.string(value)
	}
}

// Expand replaces ${VAR} references in value using variables. Referencing a
// variable that is not in variables is an error.
func Expand(value string, variables map[string]string) (string, error) {
	var errs error

	result := os.Expand(value, func(key string) string {
		if val, ok := variables[key]; ok {
			return val
		}
		errs = errors.Join(errs, fmt.Errorf("environment variable %q is not in the allowed list", key))
		return ""
	})

	if errs != nil {
		return "", errs
	}

	return result, nil
}
