package runner

import (
	"github.com/bestzip/bestzip/internal/builder"
	"github.com/bestzip/bestzip/internal/engine"
	"github.com/bestzip/bestzip/internal/engine/backends"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// BuildContainer creates a new DI container with all dependencies registered.
// Dependencies are lazily initialized when first requested.
func BuildContainer(logger *zap.Logger, fs afero.Fs) *do.RootScope {
	injector := do.New()

	// Register logger and filesystem (eager - already created)
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, fs)

	// Register prober (lazy - the probe itself only runs on first use)
	do.Provide(injector, func(i do.Injector) (*backends.Prober, error) {
		log := do.MustInvoke[*zap.Logger](i)
		return backends.NewProber(log.Named("probe")), nil
	})

	do.Provide(injector, func(i do.Injector) (*engine.Registry, error) {
		return BuildRegistry(do.MustInvoke[*zap.Logger](i), do.MustInvoke[afero.Fs](i)), nil
	})

	do.Provide(injector, func(i do.Injector) (*builder.Builder, error) {
		log := do.MustInvoke[*zap.Logger](i)
		return builder.New(log.Named("builder"),
			builder.WithFs(do.MustInvoke[afero.Fs](i)),
			builder.WithProber(do.MustInvoke[*backends.Prober](i)),
			builder.WithRegistry(do.MustInvoke[*engine.Registry](i)),
		), nil
	})

	return injector
}

// BuildRegistry creates a new registry with all backends registered.
func BuildRegistry(logger *zap.Logger, fs afero.Fs) *engine.Registry {
	registry := engine.NewRegistry(logger.Named("backends"))
	backends.Register(registry, fs)
	return registry
}
