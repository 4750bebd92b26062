// Package convert maps canonical column types to backend parameter types and
// the converters that move values across the driver boundary.
//
// A Registry is built once from a static table and never mutated, so one
// instance can be shared by every CRUD builder in the process.
package convert

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// ParamType identifies the backend parameter type. OID is only set for
// PostgreSQL.
type ParamType struct {
	Name string
	OID  uint32
}

// Converter translates between canonical values (what callers pass in and
// get back) and backend-native values (what the driver sends and scans).
// Both directions pass nil through.
type Converter struct {
	ToDB   func(any) (any, error)
	FromDB func(any) (any, error)
}

// Entry is the mapping for one canonical type name.
type Entry struct {
	ParamType ParamType
	Converter Converter

	// Sized entries get a parameter size fitted to the value's length.
	Sized bool
}

// Registry maps canonical type names to entries for one backend.
type Registry struct {
	backend string
	entries map[string]Entry
}

// NewRegistry copies entries into a new Registry. Keys are matched
// case-insensitively.
func NewRegistry(backend string, entries map[string]Entry) *Registry {
	m := make(map[string]Entry, len(entries))
	for name, e := range entries {
		m[strings.ToLower(name)] = e
	}
	return &Registry{backend: backend, entries: m}
}

// Backend returns the backend name the table was built for.
func (r *Registry) Backend() string {
	return r.backend
}

// Lookup returns the entry for typeName.
func (r *Registry) Lookup(typeName string) (Entry, bool) {
	e, ok := r.entries[strings.ToLower(typeName)]
	return e, ok
}

// TypeNames returns the registered type names, sorted.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the parameter size for a sized value: the rune count of a
// string or the length of a byte slice, nil for anything else.
func Size(v any) *int {
	var n int
	switch x := v.(type) {
	case string:
		n = utf8.RuneCountInString(x)
	case []byte:
		n = len(x)
	default:
		return nil
	}
	return &n
}
