// Package resolver expands archive sources (literal files, directories and
// shell-style glob patterns) into entries the streaming backend can write.
package resolver

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bestzip/bestzip/internal/engine"
	"github.com/spf13/afero"
)

type Resolver struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{fs: fs}
}

// Resolve expands sources against cwd. Entries follow the order of sources,
// then glob expansion order. Resolution is all or nothing: if a literal source
// is missing no entries are returned.
func (r *Resolver) Resolve(ctx context.Context, sources []string, cwd string) ([]engine.Entry, error) {
	cwd, err := AbsWorkingDir(cwd)
	if err != nil {
		return nil, err
	}

	var entries []engine.Entry
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !HasMagic(source) {
			entry, ok, err := r.resolveLiteral(source, source, cwd)
			if err != nil {
				return nil, err
			}
			if ok {
				entries = append(entries, entry)
			}
			continue
		}

		matches, err := Glob(r.fs, source, cwd)
		if err != nil {
			return nil, &engine.ResolutionError{Path: source, Err: err}
		}
		for _, match := range matches {
			entry, ok, err := r.resolveLiteral(source, match, cwd)
			if err != nil {
				return nil, err
			}
			if ok {
				entries = append(entries, entry)
			}
		}
	}

	return entries, nil
}

// resolveLiteral stats p, following symlinks. Anything that is neither a
// regular file nor a directory is skipped.
func (r *Resolver) resolveLiteral(source, p, cwd string) (engine.Entry, bool, error) {
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(cwd, filepath.FromSlash(p))
	}

	info, err := r.fs.Stat(full)
	if err != nil {
		return engine.Entry{}, false, &engine.ResolutionError{Path: source, Err: err}
	}

	entry := engine.Entry{
		Source:      source,
		FullPath:    full,
		ArchivePath: ArchivePath(p),
	}
	switch {
	case info.IsDir():
		entry.Kind = engine.KindDirectory
	case info.Mode().IsRegular():
		entry.Kind = engine.KindFile
	default:
		return engine.Entry{}, false, nil
	}
	return entry, true, nil
}

// Walk returns entry followed by all of its descendants when entry is a
// directory, in lexical order. Hidden files are included. Symlinks are
// followed like any other file or directory; a symlinked directory that points
// back at one of its ancestors is recorded but not descended into.
func (r *Resolver) Walk(ctx context.Context, entry engine.Entry) ([]engine.Entry, error) {
	if !entry.IsDir() {
		return []engine.Entry{entry}, nil
	}

	info, err := r.fs.Stat(entry.FullPath)
	if err != nil {
		return nil, &engine.ResolutionError{Path: entry.Source, Err: err}
	}

	var entries []engine.Entry
	if entry.ArchivePath != "." {
		entries = append(entries, entry)
	}

	return r.walkDir(ctx, entry, []os.FileInfo{info}, entries)
}

// walkDir appends the children of dir to entries. ancestors holds the stats of
// dir and every directory above it within the walk.
func (r *Resolver) walkDir(ctx context.Context, dir engine.Entry, ancestors []os.FileInfo, entries []engine.Entry) ([]engine.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children, err := afero.ReadDir(r.fs, dir.FullPath)
	if err != nil {
		return nil, &engine.ResolutionError{Path: dir.FullPath, Err: err}
	}

	for _, child := range children {
		p := filepath.Join(dir.FullPath, child.Name())
		e := engine.Entry{
			Source:      dir.Source,
			FullPath:    p,
			ArchivePath: path.Join(dir.ArchivePath, child.Name()),
		}

		info := child
		if child.Mode()&os.ModeSymlink != 0 {
			// Dangling links are skipped.
			if info, err = r.fs.Stat(p); err != nil {
				continue
			}
		}

		switch {
		case info.IsDir():
			e.Kind = engine.KindDirectory
			entries = append(entries, e)
			if isAncestor(ancestors, info) {
				continue
			}
			entries, err = r.walkDir(ctx, e, append(ancestors, info), entries)
			if err != nil {
				return nil, err
			}
		case info.Mode().IsRegular():
			e.Kind = engine.KindFile
			entries = append(entries, e)
		}
	}

	return entries, nil
}

func isAncestor(ancestors []os.FileInfo, info os.FileInfo) bool {
	for _, a := range ancestors {
		if os.SameFile(a, info) {
			return true
		}
	}
	return false
}

// ArchivePath converts a source path into the path recorded in the archive:
// cleaned, forward slashes, no volume name and no leading "./" or "/".
func ArchivePath(p string) string {
	p = filepath.Clean(filepath.FromSlash(p))
	p = strings.TrimPrefix(p, filepath.VolumeName(p))
	p = filepath.ToSlash(p)
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// AbsWorkingDir returns cwd as an absolute path, defaulting to the process
// working directory.
func AbsWorkingDir(cwd string) (string, error) {
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory %s: %w", cwd, err)
	}
	return abs, nil
}
