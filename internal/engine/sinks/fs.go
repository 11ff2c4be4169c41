package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bestzip/bestzip/internal/engine"
	"github.com/spf13/afero"
)

const FilesystemSinkKind = "filesystem"

// FilesystemSink copies finished archives into a directory.
type FilesystemSink struct {
	fs  afero.Fs
	dir string
}

// NewFilesystemSink writes relative to the root of fs.
func NewFilesystemSink(fs afero.Fs) engine.Sink {
	return &FilesystemSink{fs: fs}
}

// NewFilesystemSinkFromPath creates dir on fs if needed and writes archives
// below it.
func NewFilesystemSinkFromPath(fs afero.Fs, dir string) (engine.Sink, error) {
	cleanPath := filepath.Clean(dir)

	if err := fs.MkdirAll(cleanPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create publish directory %s: %w", cleanPath, err)
	}

	return &FilesystemSink{fs: afero.NewBasePathFs(fs, cleanPath), dir: cleanPath}, nil
}

func (s *FilesystemSink) Name() string {
	if s.dir != "" {
		return fmt.Sprintf("filesystem(%s)", s.dir)
	}
	return fmt.Sprintf("filesystem(%s)", s.fs.Name())
}

func (s *FilesystemSink) Kind() string {
	return FilesystemSinkKind
}

func (s *FilesystemSink) Write(ctx context.Context, path string, data io.Reader) (err error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err = io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

func (s *FilesystemSink) Close(ctx context.Context) error {
	return nil
}
