package strategy

import (
	"iter"
	"slices"
	"sync"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Constructor builds a strategy from resolved parameters.
type Constructor func(params Params) (Strategy, error)

// Metadata is the listing form of a Descriptor.
type Metadata struct {
	DisplayName  string               `json:"display_name" yaml:"display_name"`
	Description  string               `json:"description" yaml:"description"`
	ParamsSchema map[string]ParamSpec `json:"params_schema" yaml:"params_schema"`
}

// Registry maps strategy ids to descriptors and constructors.
type Registry interface {
	// Register adds or replaces the strategy under desc.ID.
	Register(desc Descriptor, constructor Constructor) error
	// Create resolves params against the descriptor and builds the strategy.
	Create(id string, params Params) (Strategy, error)
	// Metadata returns the descriptor of id.
	Metadata(id string) (Descriptor, error)
	// All iterates the registered descriptors in id order.
	All() iter.Seq2[string, Descriptor]
	// ListWithMetadata returns id -> metadata for every registered strategy.
	ListWithMetadata() map[string]Metadata
	// Close drops every registration. Later calls fail.
	Close() error
}

type registryEntry struct {
	descriptor  Descriptor
	constructor Constructor
}

// RegistryV1 is a Registry safe for concurrent readers.
type RegistryV1 struct {
	entries map[string]registryEntry
	closed  bool
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &RegistryV1{
		entries: make(map[string]registryEntry),
		closed:  false,
		mu:      sync.RWMutex{},
	}
}

// NewDefaultRegistry creates a registry holding the built-in strategies.
func NewDefaultRegistry() (Registry, error) {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *RegistryV1) Register(desc Descriptor, constructor Constructor) error {
	if desc.ID == "" {
		return errors.New(errors.ErrCodeStrategyConfigError, "strategy id must not be empty")
	}

	if constructor == nil {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s has no constructor", desc.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errors.New(errors.ErrCodeRegistryClosed, "registry is closed")
	}

	r.entries[desc.ID] = registryEntry{descriptor: desc, constructor: constructor}

	return nil
}

func (r *RegistryV1) lookup(id string) (registryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return registryEntry{}, errors.New(errors.ErrCodeRegistryClosed, "registry is closed")
	}

	entry, ok := r.entries[id]
	if !ok {
		return registryEntry{}, errors.Newf(errors.ErrCodeUnregisteredStrategy, "strategy %s is not registered", id)
	}

	return entry, nil
}

func (r *RegistryV1) Create(id string, params Params) (Strategy, error) {
	entry, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	resolved, err := entry.descriptor.Resolve(params)
	if err != nil {
		return nil, err
	}

	return entry.constructor(resolved)
}

func (r *RegistryV1) Metadata(id string) (Descriptor, error) {
	entry, err := r.lookup(id)
	if err != nil {
		return Descriptor{}, err
	}

	return entry.descriptor, nil
}

// All takes a snapshot of the ids on each iteration.
func (r *RegistryV1) All() iter.Seq2[string, Descriptor] {
	return func(yield func(string, Descriptor) bool) {
		r.mu.RLock()
		ids := make([]string, 0, len(r.entries))
		descs := make(map[string]Descriptor, len(r.entries))

		for id, e := range r.entries {
			ids = append(ids, id)
			descs[id] = e.descriptor
		}
		r.mu.RUnlock()

		slices.Sort(ids)

		for _, id := range ids {
			if !yield(id, descs[id]) {
				return
			}
		}
	}
}

func (r *RegistryV1) ListWithMetadata() map[string]Metadata {
	out := make(map[string]Metadata)

	for id, desc := range r.All() {
		schema := make(map[string]ParamSpec, len(desc.Params))
		for _, p := range desc.Params {
			schema[p.Name] = p
		}

		out[id] = Metadata{
			DisplayName:  desc.DisplayName,
			Description:  desc.Description,
			ParamsSchema: schema,
		}
	}

	return out
}

func (r *RegistryV1) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]registryEntry)
	r.closed = true

	return nil
}
