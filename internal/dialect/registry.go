package dialect

import (
	"fmt"
	"sort"

	"github.com/koustreak/dbscribe/internal/catalog"
	"github.com/koustreak/dbscribe/internal/convert"
	"github.com/koustreak/dbscribe/internal/errs"
)

// Profile is everything backend-specific: how to spell things, how to ask
// the catalog, and how to convert values.
type Profile struct {
	Dialect    *Dialect
	Queries    *catalog.QuerySet
	Converters *convert.Registry
}

// Name returns the backend name.
func (p *Profile) Name() string {
	return p.Dialect.Name
}

// Registry maps backend names to profiles. It is filled once by
// NewRegistry and only read afterwards.
type Registry struct {
	profiles map[string]*Profile
}

// NewRegistry builds a registry from profiles. A later profile with the same
// name replaces an earlier one.
func NewRegistry(profiles ...*Profile) *Registry {
	m := make(map[string]*Profile, len(profiles))
	for _, p := range profiles {
		m[p.Name()] = p
	}
	return &Registry{profiles: m}
}

// DefaultRegistry returns a registry with the PostgreSQL, MySQL and SQLite
// profiles.
func DefaultRegistry() *Registry {
	return NewRegistry(
		&Profile{Dialect: Postgres(), Queries: catalog.Postgres(), Converters: convert.Postgres()},
		&Profile{Dialect: MySQL(), Queries: catalog.MySQL(), Converters: convert.MySQL()},
		&Profile{Dialect: SQLite(), Queries: catalog.SQLite(), Converters: convert.SQLite()},
	)
}

// Lookup returns the profile for a backend name.
func (r *Registry) Lookup(name string) (*Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown backend %q", name))
	}
	return p, nil
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
