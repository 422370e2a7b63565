package remotefs

import (
	"fmt"
	"net/url"
	"sort"
)

// AdapterMux allows you to dynamically look up a registered adapter for a
// given URL. Additional adapters can be registered given an implementation of
// AdapterProvider.
// AdapterMux is itself an AdapterProvider, which provides the superset of all
// registered adapters.
type AdapterMux map[string]func(*url.URL) (Adapter, error)

var _ AdapterProvider = (AdapterMux)(nil)

// NewMux returns an AdapterMux ready for use.
func NewMux() AdapterMux {
	return AdapterMux(map[string]func(*url.URL) (Adapter, error){})
}

// Add registers the given adapter provider for its supported URL schemes. If
// any of its schemes are already registered, they will be overridden.
func (m AdapterMux) Add(p AdapterProvider) {
	for _, scheme := range p.Schemes() {
		m[scheme] = p.New
	}
}

// Lookup returns an appropriate adapter for the given URL. Use Add to
// register providers.
func (m AdapterMux) Lookup(u string) (Adapter, error) {
	base, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	return m.New(base)
}

// Schemes - implements AdapterProvider
func (m AdapterMux) Schemes() []string {
	schemes := make([]string, 0, len(m))
	for scheme := range m {
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)

	return schemes
}

// New - implements AdapterProvider
func (m AdapterMux) New(u *url.URL) (Adapter, error) {
	f, ok := m[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for scheme %q", u.Scheme)
	}

	return f(u)
}

// AdapterProvider provides an adapter for a set of defined schemes
type AdapterProvider interface {
	// Schemes returns the valid URL schemes for this adapter
	Schemes() []string

	// New returns an adapter rooted at the given URL
	New(u *url.URL) (Adapter, error)
}

// AdapterProviderFunc -
func AdapterProviderFunc(f func(*url.URL) (Adapter, error), schemes ...string) AdapterProvider {
	return ap{f, schemes}
}

type ap struct {
	newFunc func(*url.URL) (Adapter, error)
	schemes []string
}

func (p ap) Schemes() []string {
	return p.schemes
}

func (p ap) New(u *url.URL) (Adapter, error) {
	return p.newFunc(u)
}
