package provider

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// RegistryInterface is an interface to a Gateway registry.
// See function comments for implementation limitations.
type RegistryInterface interface {
	Get(name string) (Gateway, error)
	Delete(name string)
	Put(name string, gateway Gateway)
	Names() []string
}

type registry struct {
	sync.RWMutex
	items map[string]Gateway
}

var reg = registry{
	items: make(map[string]Gateway),
}

// Registry provides an interface to the single Gateway registry.
func Registry() RegistryInterface {
	return &reg
}

// NewRegistry returns an empty registry that is independent of the
// process-wide one
func NewRegistry() RegistryInterface {
	return &registry{
		items: make(map[string]Gateway),
	}
}

// Get returns the Gateway with the given name from the registry, or an error
// if it does not exist.
func (r *registry) Get(name string) (Gateway, error) {
	r.RLock()
	defer r.RUnlock()

	gateway, ok := r.items[name]
	if !ok {
		return nil, errors.Errorf("provider %q does not exist", name)
	}

	return gateway, nil
}

// Delete deletes the Gateway with the given name from the registry, or noops
// if the Gateway doesn't exist.
func (r *registry) Delete(name string) {
	r.Lock()
	defer r.Unlock()

	delete(r.items, name)
}

// Put puts a Gateway with the given name into the registry. If a Gateway
// already exists with the given name, it will simply be overwritten.
func (r *registry) Put(name string, gateway Gateway) {
	r.Lock()
	defer r.Unlock()

	r.items[name] = gateway
}

// Names returns the sorted names of all registered gateways
func (r *registry) Names() []string {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
