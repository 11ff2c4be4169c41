package engine

import "context"

// Backend builds a zip archive for a request. Implementations are
// interchangeable: for the same request they must produce the same archive
// membership.
type Backend interface {
	Named
	Build(ctx context.Context, req Request) error
}

// BackendFunc adapts a function into a Backend.
type BackendFunc func(ctx context.Context, req Request) error

type backendFunction struct {
	name string
	kind string
	fn   BackendFunc
}

func (b *backendFunction) Name() string {
	return b.name
}

func (b *backendFunction) Kind() string {
	return b.kind
}

func (b *backendFunction) Build(ctx context.Context, req Request) error {
	return b.fn(ctx, req)
}

func BackendFunction(name string, kind string, fn BackendFunc) Backend {
	return &backendFunction{name: name, kind: kind, fn: fn}
}
