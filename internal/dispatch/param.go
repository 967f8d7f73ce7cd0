package dispatch

import (
	"fmt"
	"strings"

	"github.com/typedfn/typedfn/internal/config"
	"github.com/typedfn/typedfn/internal/registry"
)

// Param is a single parameter slot: an ordered list of accepted type
// names, a parallel list of optional conversions (one per type, same
// index), and a variadic flag (spec.md §3).
type Param struct {
	Types       []string
	Conversions []*registry.ConversionRef
	VarArgs     bool
}

// ParseParam builds a Param from a delimited raw spec such as
// "...number|string". Empty text yields a single "any" type. Whitespace
// around alternatives is trimmed.
func ParseParam(raw string) (*Param, error) {
	varArgs := false
	if strings.HasPrefix(raw, config.VariadicPrefix) {
		varArgs = true
		raw = raw[len(config.VariadicPrefix):]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return &Param{Types: []string{config.AnyTypeName}, Conversions: []*registry.ConversionRef{nil}, VarArgs: varArgs}, nil
	}
	parts := strings.Split(raw, config.TypeSeparator)
	types := make([]string, 0, len(parts))
	seenAny := false
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, fmt.Errorf("dispatch: empty type name in parameter %q", raw)
		}
		if name == config.AnyTypeName {
			if seenAny {
				return nil, fmt.Errorf("dispatch: parameter %q names %q more than once", raw, config.AnyTypeName)
			}
			seenAny = true
		}
		types = append(types, name)
	}
	return &Param{Types: types, Conversions: make([]*registry.ConversionRef, len(types)), VarArgs: varArgs}, nil
}

// NewParamFromTypes builds a Param directly from an already-split list of
// type names (the "already-constructed list" construction path of
// spec.md §4.1).
func NewParamFromTypes(types []string, varArgs bool) (*Param, error) {
	if len(types) == 0 {
		types = []string{config.AnyTypeName}
	}
	return &Param{Types: append([]string(nil), types...), Conversions: make([]*registry.ConversionRef, len(types)), VarArgs: varArgs}, nil
}

// Clone returns a deep copy of p's Types and Conversions.
func (p *Param) Clone() *Param {
	c := &Param{
		Types:       append([]string(nil), p.Types...),
		Conversions: append([]*registry.ConversionRef(nil), p.Conversions...),
		VarArgs:     p.VarArgs,
	}
	return c
}

// AnyType reports whether p accepts the "any" wildcard.
func (p *Param) AnyType() bool {
	for _, t := range p.Types {
		if t == config.AnyTypeName {
			return true
		}
	}
	return false
}

// HasConversions reports whether any slot of p carries a conversion.
func (p *Param) HasConversions() bool {
	for _, c := range p.Conversions {
		if c != nil {
			return true
		}
	}
	return false
}

// typeSet returns p's Types as a set, for overlap testing.
func (p *Param) typeSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Types))
	for _, t := range p.Types {
		set[t] = struct{}{}
	}
	return set
}

// Overlapping reports whether p and other share at least one type name.
func (p *Param) Overlapping(other *Param) bool {
	small, big := p, other
	if len(small.Types) > len(big.Types) {
		small, big = big, small
	}
	set := big.typeSet()
	for _, t := range small.Types {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// Matches reports whether p can match other at dispatch time: true iff
// either is any-typed or they overlap (spec.md §4.1).
func (p *Param) Matches(other *Param) bool {
	if p.AnyType() || other.AnyType() {
		return true
	}
	return p.Overlapping(other)
}

// Contains reports whether p accepts any of the names in set.
func (p *Param) Contains(set map[string]struct{}) bool {
	for _, t := range p.Types {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}

// String renders p as signature text: the "..." prefix if variadic,
// followed by its types joined with "|". If showTarget is true, a type
// with a recorded conversion is replaced by the conversion's To; this can
// introduce duplicates, which are elided preserving first occurrence.
func (p *Param) String(showTarget ...bool) string {
	show := len(showTarget) > 0 && showTarget[0]
	var names []string
	seen := make(map[string]struct{}, len(p.Types))
	for i, t := range p.Types {
		name := t
		if show && p.Conversions[i] != nil {
			name = p.Conversions[i].To
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	s := strings.Join(names, config.TypeSeparator)
	if p.VarArgs {
		s = config.VariadicPrefix + s
	}
	return s
}
