package v1

const ArchiveJobKind = "ArchiveJob"

// ArchiveJob declares an archive build and where to publish the result.
type ArchiveJob struct {
	Kind     string         `yaml:"kind" json:"kind" validate:"required,eq=ArchiveJob"`
	Metadata Metadata       `yaml:"metadata" json:"metadata"`
	Spec     ArchiveJobSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

type ArchiveJobSpec struct {
	// Sources are files, directories or glob patterns relative to WorkingDir.
	Sources []string `yaml:"sources" json:"sources" validate:"required,min=1,dive,required"`

	// Destination is the archive path, relative to WorkingDir unless absolute.
	Destination string `yaml:"destination" json:"destination" validate:"required"`

	// WorkingDir defaults to the directory the command runs in.
	WorkingDir string `yaml:"workingDir,omitempty" json:"workingDir,omitempty"`

	// PackageFile adds the dependencies of a package.json as sources.
	PackageFile string `yaml:"packageFile,omitempty" json:"packageFile,omitempty"`

	// Backend is one of auto, native or streaming (default: auto).
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty" validate:"omitempty,oneof=auto native streaming"`

	// Publish copies the finished archive somewhere else (default: nowhere).
	Publish *PublishSpec `yaml:"publish,omitempty" json:"publish,omitempty"`
}

// PublishSpec configures where the archive is published. At most one field
// should be set.
type PublishSpec struct {
	Filesystem *FilesystemPublishSpec `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	S3         *S3PublishSpec         `yaml:"s3,omitempty" json:"s3,omitempty"`
	Stdout     *StdoutSpec            `yaml:"stdout,omitempty" json:"stdout,omitempty"`
}

// FilesystemPublishSpec copies the archive into a directory.
type FilesystemPublishSpec struct {
	// Path is resolved against the job file's directory when relative, like
	// the working directory.
	Path string `yaml:"path" json:"path" validate:"required"`
}

// S3PublishSpec uploads the archive to S3-compatible object storage.
type S3PublishSpec struct {
	Bucket         string         `yaml:"bucket" json:"bucket" validate:"required"`
	Region         *string        `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint       *string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url"`
	Prefix         *string        `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	ForcePathStyle bool           `yaml:"forcePathStyle,omitempty" json:"forcePathStyle,omitempty"`
	Credentials    *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `yaml:"accessKeyId" json:"accessKeyId" validate:"required"`
	SecretAccessKey string `yaml:"secretAccessKey" json:"secretAccessKey" validate:"required"`
}

// StdoutSpec writes the archive bytes to stdout (no options currently).
type StdoutSpec struct{}
