package engine

import "context"

type Named interface {
	Name() string
	Kind() string
}

type Closer interface {
	Close(context.Context) error
}

const (
	// ISO8601Basic is a URL-safe timestamp format without colons.
	// This is the recommended format for S3 keys and filesystem paths.
	ISO8601Basic = "20060102T150405Z"
)

// Request describes a single archive build.
type Request struct {
	// Sources are literal paths or glob patterns, relative to WorkingDir.
	// Order is preserved and duplicates are allowed.
	Sources []string

	// Destination is the archive path, relative to WorkingDir unless absolute.
	Destination string

	// WorkingDir is the directory sources are resolved against. Empty means
	// the process working directory.
	WorkingDir string

	// PackageFile is an optional package manifest whose dependencies are
	// appended to Sources before the build.
	PackageFile string

	// Backend forces a backend by name. Empty selects automatically.
	Backend string
}

// EntryKind is the filesystem kind of a resolved entry.
type EntryKind string

const (
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
)

// Entry is a source resolved against the filesystem.
type Entry struct {
	// Source is the source string the entry came from.
	Source string
	// FullPath is the absolute path on disk.
	FullPath string
	// ArchivePath is the relative, forward-slash path inside the archive.
	ArchivePath string
	Kind        EntryKind
}

func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}
