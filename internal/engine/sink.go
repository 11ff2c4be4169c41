package engine

import (
	"context"
	"io"
)

// Sink receives a finished archive.
type Sink interface {
	Named
	Closer
	Write(ctx context.Context, path string, data io.Reader) error
}
