package server

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/mqRPC/rpc/common"
)

// registeredMethod is a registry entry, it remembers which endpoint exposed the method
type registeredMethod struct {
	endpoint string
	handler  HandlerFunc
}

// Registry maps method names to handlers. It is built once at startup, a method
// name can only be exposed by a single endpoint.
type Registry struct {
	mu        sync.RWMutex
	endpoints []IEndpoint
	order     []string
	methods   map[string]registeredMethod
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]registeredMethod),
	}
}

// Register adds the endpoints in order.
// Registration is atomic per endpoint: if one of its methods is invalid or
// already exposed (common.ErrDuplicateMethod) none of them is added.
func (r *Registry) Register(endpoints ...IEndpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range endpoints {
		if err := r.register(e); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the handler exposing method and the name of its endpoint
func (r *Registry) Lookup(method string) (HandlerFunc, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.methods[method]
	if !ok {
		return nil, "", false
	}
	return m.handler, m.endpoint, true
}

// Methods returns all method names in registration order
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Endpoints returns the registered endpoints in registration order
func (r *Registry) Endpoints() []IEndpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	endpoints := make([]IEndpoint, len(r.endpoints))
	copy(endpoints, r.endpoints)
	return endpoints
}

// Len returns the number of registered methods
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// register validates and adds a single endpoint, the caller holds the lock
func (r *Registry) register(e IEndpoint) error {
	methods := e.Methods()

	// Validate first so a failing endpoint leaves the registry untouched
	seen := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		if m.Name == "" {
			return fmt.Errorf("endpoint %s: %w", e.Name(), common.ErrEmptyMethod)
		}
		if m.Handler == nil {
			return fmt.Errorf("endpoint %s: method %s has no handler", e.Name(), m.Name)
		}
		if existing, ok := r.methods[m.Name]; ok {
			return fmt.Errorf("endpoint %s: %w: %s (exposed by %s)", e.Name(), common.ErrDuplicateMethod, m.Name, existing.endpoint)
		}
		if _, ok := seen[m.Name]; ok {
			return fmt.Errorf("endpoint %s: %w: %s", e.Name(), common.ErrDuplicateMethod, m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	for _, m := range methods {
		r.methods[m.Name] = registeredMethod{endpoint: e.Name(), handler: m.Handler}
		r.order = append(r.order, m.Name)
	}
	r.endpoints = append(r.endpoints, e)
	Logger.Debugf("Registered endpoint %s with %d methods", e.Name(), len(methods))
	return nil
}
