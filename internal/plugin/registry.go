package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages template functions and output transforms.
type Registry struct {
	mu         sync.RWMutex
	funcs      map[string]Func
	transforms []Transform
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds a template function. Names are unique.
func (r *Registry) Register(f Func) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("invalid template function: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[f.Name]; exists {
		return fmt.Errorf("template function %s already registered", f.Name)
	}
	r.funcs[f.Name] = f
	return nil
}

// RegisterTransform appends an output transform. Transforms run in registration order.
func (r *Registry) RegisterTransform(t Transform) error {
	if t == nil {
		return fmt.Errorf("cannot register nil transform")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.transforms {
		if existing.Name() == t.Name() {
			return fmt.Errorf("transform %s already registered", t.Name())
		}
	}
	r.transforms = append(r.transforms, t)
	return nil
}

// Has reports whether a function with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.funcs[name]
	if !ok {
		return Func{}, fmt.Errorf("template function %s not found", name)
	}
	return f, nil
}

// List returns every function of kind, or all functions when kind is empty, sorted by name.
func (r *Registry) List(kind Kind) []Func {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Func, 0, len(r.funcs))
	for _, f := range r.funcs {
		if kind == "" || f.Kind == kind {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FuncMap returns a fresh map usable by both text/template and html/template.
func (r *Registry) FuncMap() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(map[string]any, len(r.funcs))
	for name, f := range r.funcs {
		m[name] = f.Fn
	}
	return m
}

// Transforms returns the transforms in registration order.
func (r *Registry) Transforms() []Transform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Transform(nil), r.transforms...)
}
