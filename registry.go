package dotcluster

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Registry is a table of independent Clusterizators addressed by opaque ids.
// The table itself is safe for concurrent use; each Clusterizator it hands
// out must still be used by one goroutine at a time.
type Registry struct {
	mu        sync.RWMutex
	cfg       Config
	opts      []Option
	instances map[uuid.UUID]*Clusterizator
}

// NewRegistry returns an empty registry whose instances start from cfg and
// are built with opts.
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Registry{
		cfg:       cfg,
		opts:      opts,
		instances: make(map[uuid.UUID]*Clusterizator),
	}, nil
}

// Config returns the settings new instances start from.
func (r *Registry) Config() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Create adds an empty Clusterizator and returns its id.
func (r *Registry) Create() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	// cfg was validated when it was stored, so New cannot fail here.
	cz, _ := New(r.cfg, r.opts...)
	id := uuid.New()
	r.instances[id] = cz
	return id
}

// Get returns the Clusterizator registered under id.
func (r *Registry) Get(id uuid.UUID) (*Clusterizator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cz, ok := r.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	return cz, nil
}

// Delete drops the Clusterizator registered under id together with its
// whole hierarchy.
func (r *Registry) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cz, ok := r.instances[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	cz.Clear()
	delete(r.instances, id)
	return nil
}

// DeleteAll drops every registered Clusterizator.
func (r *Registry) DeleteAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cz := range r.instances {
		cz.Clear()
		delete(r.instances, id)
	}
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// IDs returns the registered ids in a stable order.
func (r *Registry) IDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}

// SetRadii changes the radii new instances start from. Live instances keep
// their own settings; change those through Clusterizator.SetRadii. A
// non-ascending set, or a dot radius at or below the current fudge, is
// rejected and nothing changes.
func (r *Registry) SetRadii(dot, l1, l2, l3, l4 float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.cfg
	if err := cfg.SetRadii(dot, l1, l2, l3, l4); err != nil {
		return err
	}
	// Create relies on r.cfg staying valid.
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

// SetFudge changes the fudge tolerance new instances start from. The value is
// checked against the registry's own dot radius only.
func (r *Registry) SetFudge(value float64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg := r.cfg
	if err := cfg.SetFudge(value, enabled); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}
