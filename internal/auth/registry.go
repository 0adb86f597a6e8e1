package auth

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Registry holds the providers a host has configured, keyed by name.
type Registry struct {
	providers *xsync.MapOf[string, Provider]
}

func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: xsync.NewMapOf[string, Provider]()}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(p Provider) error {
	if _, loaded := r.providers.LoadOrStore(p.Name(), p); loaded {
		return fmt.Errorf("provider '%s' is already registered", p.Name())
	}
	return nil
}

func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers.Load(name)
	if !ok {
		return nil, fmt.Errorf("unknown auth provider: %s", name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	var names []string
	r.providers.Range(func(name string, _ Provider) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
