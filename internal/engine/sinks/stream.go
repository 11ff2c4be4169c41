package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/bestzip/bestzip/internal/engine"
)

const StreamSinkKind = "stream"

// StreamSink copies archive bytes to a writer, typically stdout. The archive
// name is ignored.
type StreamSink struct {
	w io.Writer
}

func NewStreamSink(w io.Writer) engine.Sink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return StreamSinkKind
}

func (s *StreamSink) Write(ctx context.Context, _ string, data io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.Copy(s.w, data); err != nil {
		return fmt.Errorf("failed to copy archive: %w", err)
	}
	return nil
}

func (s *StreamSink) Close(ctx context.Context) error {
	return nil
}
