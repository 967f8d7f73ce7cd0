// Package registry holds the type registry and conversion table that the
// dispatch compiler is compiled against: an ordered list of named runtime
// type tests, an ordered list of user conversions, and a set of ignored
// type names.
package registry

import (
	"fmt"
	"reflect"
	"strings"
)

// AnyTypeName is the reserved wildcard type name. It never needs (and may
// not have) a registry Entry: any Param may reference it directly.
const AnyTypeName = "any"

// ObjectTypeName is the permissive catch-all entry name. TypeOf defers
// testing it until every other entry has been tried (spec.md §4.7), no
// matter where it sits in the registry order.
const ObjectTypeName = "Object"

// Entry is a named runtime type test.
type Entry struct {
	Name string
	Test func(v any) bool
}

// Conversion lets an argument of type From satisfy a parameter typed To.
type Conversion struct {
	From    string
	To      string
	Convert func(v any) (any, error)
}

// Registry is an ordered list of type Entries plus an ordered list of
// Conversions and a set of ignored type names. Order is semantically
// significant: it drives Param/Signature tie-breaking (spec.md §4.2, §4.3)
// and typeOf's first-match-wins scan (spec.md §4.7).
type Registry struct {
	entries     []Entry
	byName      map[string]int
	conversions []Conversion
	ignored     map[string]struct{}
}

// New returns a Registry seeded with the default Go-native type entries:
// number, string, boolean, Function, Array, Map, null, Object — the
// idiomatic-Go substitutes for typed-function's JS defaults (see
// DESIGN.md). Object is always last among the defaults so typeOf's
// explicit deferral is redundant for the defaults but still correct for
// any Object entry a caller reorders or re-adds.
func New() *Registry {
	r := &Registry{byName: make(map[string]int), ignored: make(map[string]struct{})}
	for _, e := range defaultEntries() {
		_ = r.AddType(e)
	}
	return r
}

func defaultEntries() []Entry {
	isInt := func(v any) bool {
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	}
	return []Entry{
		{Name: "number", Test: isInt},
		{Name: "string", Test: func(v any) bool { _, ok := v.(string); return ok }},
		{Name: "boolean", Test: func(v any) bool { _, ok := v.(bool); return ok }},
		{Name: "Function", Test: func(v any) bool {
			return v != nil && reflect.ValueOf(v).Kind() == reflect.Func
		}},
		{Name: "Array", Test: func(v any) bool {
			if v == nil {
				return false
			}
			k := reflect.ValueOf(v).Kind()
			return k == reflect.Slice || k == reflect.Array
		}},
		{Name: "Map", Test: func(v any) bool {
			return v != nil && reflect.ValueOf(v).Kind() == reflect.Map
		}},
		{Name: "null", Test: func(v any) bool {
			if v == nil {
				return true
			}
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
				return rv.IsNil()
			}
			return false
		}},
		{Name: ObjectTypeName, Test: func(v any) bool { return true }},
	}
}

// AddType validates and appends a new Entry. Duplicate names (exact match)
// are rejected.
func (r *Registry) AddType(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("registry: type entry must have a name")
	}
	if e.Name == AnyTypeName {
		return fmt.Errorf("registry: %q is reserved and may not be registered", AnyTypeName)
	}
	if e.Test == nil {
		return fmt.Errorf("registry: type entry %q must have a test function", e.Name)
	}
	if _, exists := r.byName[e.Name]; exists {
		return fmt.Errorf("registry: duplicate type name %q", e.Name)
	}
	r.byName[e.Name] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

// AddConversion validates and appends a new Conversion. Both From and To
// must name registered types (or be "any" for To is not permitted — a
// conversion's target must be concrete).
func (r *Registry) AddConversion(c Conversion) error {
	if c.From == "" || c.To == "" {
		return fmt.Errorf("registry: conversion needs both from and to")
	}
	if c.Convert == nil {
		return fmt.Errorf("registry: conversion %s->%s needs a convert function", c.From, c.To)
	}
	if _, ok := r.byName[c.From]; !ok {
		return r.unknownTypeError(c.From)
	}
	if _, ok := r.byName[c.To]; !ok {
		return r.unknownTypeError(c.To)
	}
	if c.From == c.To {
		return fmt.Errorf("registry: conversion from %q to itself is not allowed", c.From)
	}
	r.conversions = append(r.conversions, c)
	return nil
}

// Ignore marks a type name so any Signature mentioning it is dropped
// silently at parse time (spec.md §4.4a).
func (r *Registry) Ignore(name string) {
	r.ignored[name] = struct{}{}
}

// IsIgnored reports whether name is on the ignore list.
func (r *Registry) IsIgnored(name string) bool {
	_, ok := r.ignored[name]
	return ok
}

// Find returns the Entry for name and whether it exists.
func (r *Registry) Find(name string) (Entry, bool) {
	if i, ok := r.byName[name]; ok {
		return r.entries[i], true
	}
	return Entry{}, false
}

// IndexOf returns name's position in registry order, or -1 if name is not
// registered (unregistered names sort after all registered ones per
// SPEC_FULL.md's resolution of the §9 open question).
func (r *Registry) IndexOf(name string) int {
	if i, ok := r.byName[name]; ok {
		return i
	}
	return -1
}

// SuggestName returns a case-insensitive match for name, for "did you
// mean?" hints on unknown-type errors.
func (r *Registry) SuggestName(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, e := range r.entries {
		if strings.ToLower(e.Name) == lower {
			return e.Name, true
		}
	}
	return "", false
}

func (r *Registry) unknownTypeError(name string) error {
	if suggestion, ok := r.SuggestName(name); ok {
		return fmt.Errorf("registry: unknown type %q (did you mean %q?)", name, suggestion)
	}
	return fmt.Errorf("registry: unknown type %q", name)
}

// RequireKnown validates that name is either "any" or a registered type,
// returning an unknown-type error (with a did-you-mean hint) otherwise.
func (r *Registry) RequireKnown(name string) error {
	if name == AnyTypeName {
		return nil
	}
	if _, ok := r.byName[name]; !ok {
		return r.unknownTypeError(name)
	}
	return nil
}

// ConversionRef pairs a Conversion with its position in the registry's
// conversion list, so callers (Param/Signature ordering) can compare
// conversions by "which came first" without re-scanning the list.
type ConversionRef struct {
	Conversion
	Index int
}

// ConversionsTo returns, in registry order, every Conversion whose To is
// to, each tagged with its position in the conversion list.
func (r *Registry) ConversionsTo(to string) []ConversionRef {
	var out []ConversionRef
	for i, c := range r.conversions {
		if c.To == to {
			out = append(out, ConversionRef{Conversion: c, Index: i})
		}
	}
	return out
}

// ConversionIndex returns the position of the first conversion matching
// (from, to) in the conversion list, or -1.
func (r *Registry) ConversionIndex(from, to string) int {
	for i, c := range r.conversions {
		if c.From == from && c.To == to {
			return i
		}
	}
	return -1
}

// TypeOf classifies v against the registry: the name of the first Entry
// (in registry order) whose Test accepts v, except that the Object entry
// is deferred until every other entry has been tried (spec.md §4.7).
// Returns "unknown" if nothing matches.
func (r *Registry) TypeOf(v any) string {
	var objectEntry *Entry
	for i := range r.entries {
		e := &r.entries[i]
		if e.Name == ObjectTypeName {
			objectEntry = e
			continue
		}
		if e.Test(v) {
			return e.Name
		}
	}
	if objectEntry != nil && objectEntry.Test(v) {
		return objectEntry.Name
	}
	return "unknown"
}

// Snapshot returns an immutable copy of the registry's current state,
// suitable for embedding in a compiled dispatcher so later mutations of r
// are not observed by already-compiled dispatchers (spec.md §5).
func (r *Registry) Snapshot() *Registry {
	s := &Registry{
		entries:     append([]Entry(nil), r.entries...),
		byName:      make(map[string]int, len(r.byName)),
		conversions: append([]Conversion(nil), r.conversions...),
		ignored:     make(map[string]struct{}, len(r.ignored)),
	}
	for k, v := range r.byName {
		s.byName[k] = v
	}
	for k := range r.ignored {
		s.ignored[k] = struct{}{}
	}
	return s
}

// Entries returns the registry's Entries in order. The returned slice must
// not be mutated.
func (r *Registry) Entries() []Entry { return r.entries }

// Conversions returns the registry's Conversions in order. The returned
// slice must not be mutated.
func (r *Registry) Conversions() []Conversion { return r.conversions }
