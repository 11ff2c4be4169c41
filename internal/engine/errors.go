package engine

import (
	"fmt"
	"strings"
)

// ResolutionError is returned when a source cannot be resolved: a literal path
// that does not exist, an invalid pattern, or an unreadable directory.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve source %q: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// BackendError is returned when a backend fails to produce the archive.
// Command, Dir and ExitCode are only set by the native backend; ExitCode is -1
// when the process never ran.
type BackendError struct {
	Backend  string
	ExitCode int
	Command  string
	Dir      string
	Stderr   string
	Err      error
}

func (e *BackendError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("%s backend failed: %v", e.Backend, e.Err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("unexpected exit code from native zip command: %d", e.ExitCode))
	sb.WriteString(fmt.Sprintf("\n executed command '%s'", e.Command))
	sb.WriteString(fmt.Sprintf("\n executed in directory '%s'", e.Dir))
	if e.Stderr != "" {
		sb.WriteString(fmt.Sprintf("\n stderr: %s", e.Stderr))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf("\n cause: %v", e.Err))
	}
	return sb.String()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ManifestError is returned when the package manifest cannot be read or is
// not valid structured data.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("failed to load package manifest %q: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}
