package backends

import (
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func Register(registry *engine.Registry, fs afero.Fs) {
	registry.RegisterBackend(
		NativeBackendKind,
		func(logger *zap.Logger) (engine.Backend, error) {
			return NewNativeBackend(logger, NativeConfig{}), nil
		},
	)
	registry.RegisterBackend(
		StreamingBackendKind,
		func(logger *zap.Logger) (engine.Backend, error) {
			return NewStreamingBackend(logger, fs, StreamingConfig{}), nil
		},
	)
}
