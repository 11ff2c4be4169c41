package engine

import (
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type BackendFactory func(logger *zap.Logger) (Backend, error)

// UnsupportedTypeError is returned when a backend name is not registered.
type UnsupportedTypeError struct {
	Category  string   // "backend"
	Kind      string   // the requested kind
	Available []string // registered kinds
}

func (e *UnsupportedTypeError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported %s type %q: no %ss registered", e.Category, e.Kind, e.Category)
	}
	return fmt.Sprintf("unsupported %s type %q (available: %v)", e.Category, e.Kind, e.Available)
}

type Registry struct {
	mu       sync.RWMutex
	backends map[string]BackendFactory
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		backends: make(map[string]BackendFactory),
		logger:   logger,
	}
}

func (r *Registry) RegisterBackend(kind string, factory BackendFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[kind] = factory
}

func (r *Registry) HasBackend(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.backends[kind]
	return ok
}

func (r *Registry) CreateBackend(kind string) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.backends[kind]
	available := r.availableBackends()
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedTypeError{Category: "backend", Kind: kind, Available: available}
	}
	return factory(r.logger.Named(kind))
}

func (r *Registry) AvailableBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableBackends()
}

func (r *Registry) availableBackends() []string {
	backends := lo.Keys(r.backends)
	slices.Sort(backends)
	return backends
}
