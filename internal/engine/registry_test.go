package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockBackend struct {
	name string
}

func (m *mockBackend) Name() string                         { return m.name }
func (m *mockBackend) Kind() string                         { return m.name }
func (m *mockBackend) Build(context.Context, Request) error { return nil }

func TestRegistry_CreateBackend(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	expected := &mockBackend{name: "streaming"}
	registry.RegisterBackend("streaming", func(_ *zap.Logger) (Backend, error) {
		return expected, nil
	})

	t.Run("registered backend is created", func(t *testing.T) {
		backend, err := registry.CreateBackend("streaming")
		require.NoError(t, err)
		assert.Equal(t, expected, backend)
	})

	t.Run("unknown backend returns UnsupportedTypeError", func(t *testing.T) {
		backend, err := registry.CreateBackend("rar")
		require.Error(t, err)
		assert.Nil(t, backend)

		var unsupported *UnsupportedTypeError
		require.ErrorAs(t, err, &unsupported)
		assert.Equal(t, "backend", unsupported.Category)
		assert.Equal(t, "rar", unsupported.Kind)
		assert.Equal(t, []string{"streaming"}, unsupported.Available)
	})

	t.Run("factory error is returned", func(t *testing.T) {
		registry.RegisterBackend("broken", func(_ *zap.Logger) (Backend, error) {
			return nil, errors.New("boom")
		})
		_, err := registry.CreateBackend("broken")
		assert.EqualError(t, err, "boom")
	})
}

func TestRegistry_AvailableBackends(t *testing.T) {
	registry := NewRegistry(nil)
	assert.Empty(t, registry.AvailableBackends())

	for _, name := range []string{"streaming", "native", "custom"} {
		registry.RegisterBackend(name, func(_ *zap.Logger) (Backend, error) {
			return &mockBackend{name: name}, nil
		})
	}

	assert.Equal(t, []string{"custom", "native", "streaming"}, registry.AvailableBackends())
	assert.True(t, registry.HasBackend("native"))
	assert.False(t, registry.HasBackend("rar"))
}

func TestUnsupportedTypeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UnsupportedTypeError
		want string
	}{
		{
			name: "no backends registered",
			err:  &UnsupportedTypeError{Category: "backend", Kind: "native"},
			want: `unsupported backend type "native": no backends registered`,
		},
		{
			name: "with available backends",
			err:  &UnsupportedTypeError{Category: "backend", Kind: "rar", Available: []string{"native", "streaming"}},
			want: `unsupported backend type "rar" (available: [native streaming])`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestBackendFunction(t *testing.T) {
	var got Request
	backend := BackendFunction("fn", "test", func(_ context.Context, req Request) error {
		got = req
		return nil
	})

	assert.Equal(t, "fn", backend.Name())
	assert.Equal(t, "test", backend.Kind())

	req := Request{Sources: []string{"a.txt"}, Destination: "out.zip"}
	require.NoError(t, backend.Build(t.Context(), req))
	assert.Equal(t, req, got)
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("cause")

	var resolution *ResolutionError
	require.ErrorAs(t, error(&ResolutionError{Path: "a", Err: cause}), &resolution)
	assert.ErrorIs(t, resolution, cause)
	assert.ErrorContains(t, resolution, `"a"`)

	var manifest *ManifestError
	require.ErrorAs(t, error(&ManifestError{Path: "package.json", Err: cause}), &manifest)
	assert.ErrorIs(t, manifest, cause)

	native := &BackendError{Backend: "native", ExitCode: 12, Command: "zip --quiet --recurse-paths out.zip a", Dir: "/tmp/work"}
	assert.Contains(t, native.Error(), "unexpected exit code from native zip command: 12")
	assert.Contains(t, native.Error(), "zip --quiet --recurse-paths out.zip a")
	assert.Contains(t, native.Error(), "/tmp/work")

	streaming := &BackendError{Backend: "streaming", Err: cause}
	assert.Equal(t, "streaming backend failed: cause", streaming.Error())
	assert.ErrorIs(t, streaming, cause)
}
