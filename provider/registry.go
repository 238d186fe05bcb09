package provider

import "fmt"

/* Registry holds the configured providers, keyed by name.
 * It is built once at startup and treated as immutable afterwards, so it is
 * safe to share between the ingestion pipeline and the processing workers
 * without locking.
 */
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds a registry from explicit provider configurations,
// applying documented defaults and validating each entry
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		p = p.applyDefaults()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("validating provider config: %w", err)
		}
		if _, exists := r.providers[p.Name]; exists {
			return nil, fmt.Errorf("duplicate provider name: %s", p.Name)
		}
		r.providers[p.Name] = p
	}
	return r, nil
}

// Get returns the provider configuration for a name
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
