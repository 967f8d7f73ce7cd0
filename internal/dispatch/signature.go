package dispatch

import (
	"fmt"
	"strings"

	"github.com/typedfn/typedfn/internal/config"
	"github.com/typedfn/typedfn/internal/registry"
)

// Signature is a sequence of Params bound to an implementation (spec.md
// §3). Fn holds the user-supplied implementation — any Go func value.
type Signature struct {
	Params []*Param
	Fn     any
}

// ParseSignatureText parses a comma-delimited signature spec such as
// "number, ...string". Empty text is the arity-0 signature: this is the
// open question in spec.md §9 resolved explicitly — an empty Signature
// has zero Params, distinct from a Param built from empty text (which is
// a single "any" Param).
func ParseSignatureText(text string, fn any) (*Signature, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &Signature{Fn: fn}, nil
	}
	rawParams := strings.Split(text, config.ParamSeparator)
	params := make([]*Param, 0, len(rawParams))
	for _, raw := range rawParams {
		p, err := ParseParam(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return NewSignature(params, fn)
}

// NewSignature builds a Signature from an already-constructed Param list.
// A variadic Param in any position other than last is a syntax error.
func NewSignature(params []*Param, fn any) (*Signature, error) {
	for i, p := range params {
		if p.VarArgs && i != len(params)-1 {
			return nil, fmt.Errorf("dispatch: variadic parameter must be last, found at position %d of %d", i, len(params))
		}
	}
	return &Signature{Params: append([]*Param(nil), params...), Fn: fn}, nil
}

// AnyType reports whether any Param of s is any-typed.
func (s *Signature) AnyType() bool {
	for _, p := range s.Params {
		if p.AnyType() {
			return true
		}
	}
	return false
}

// VarArgs reports whether the last Param of s is variadic.
func (s *Signature) VarArgs() bool {
	return len(s.Params) > 0 && s.Params[len(s.Params)-1].VarArgs
}

// HasConversions reports whether any Param of s carries a conversion.
func (s *Signature) HasConversions() bool {
	for _, p := range s.Params {
		if p.HasConversions() {
			return true
		}
	}
	return false
}

// conversionCount returns how many Params of s carry at least one
// conversion — used by the Signature comparator's rule 2.
func (s *Signature) conversionCount() int {
	n := 0
	for _, p := range s.Params {
		if p.HasConversions() {
			n++
		}
	}
	return n
}

// RequireKnownTypes validates that every type named by s's Params is
// either "any" or registered on reg, returning an unknown-type error
// (with a did-you-mean hint) for the first one that isn't.
func (s *Signature) RequireKnownTypes(reg *registry.Registry) error {
	for _, p := range s.Params {
		for _, t := range p.Types {
			if err := reg.RequireKnown(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// Ignore reports whether any Param of s names a type on reg's ignore
// list.
func (s *Signature) Ignore(reg *registry.Registry) bool {
	for _, p := range s.Params {
		for _, t := range p.Types {
			if reg.IsIgnored(t) {
				return true
			}
		}
	}
	return false
}

// Key is the canonical, conversion-sensitive key used to detect
// collisions after expansion: Params joined by ",", each rendered with
// its variadic marker.
func (s *Signature) Key() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String()
	}
	return strings.Join(parts, config.ParamSeparator)
}

// ConversionFreeKey is Key() but with every conversion-bearing Param
// rendered by its target type instead of its source type — the
// "conversion-free, expanded" key the facade's Find and dispatcher-merge
// path use to identify a signature independent of which conversion a
// particular expansion used (spec.md §4.4 step b, §6).
func (s *Signature) ConversionFreeKey() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.String(true)
	}
	return strings.Join(parts, config.ParamSeparator)
}

// ParamsStartWith asks whether s could still match the given path prefix
// of Params — i.e. for every position i < len(path), s's Param at i (or,
// past s's own arity, s's trailing variadic Param repeated) matches
// path[i]. Used to filter which any-typed signatures remain relevant
// fall-through candidates at a given tree depth (spec.md §4.4 step f).
func (s *Signature) ParamsStartWith(path []*Param) bool {
	for i, pathParam := range path {
		var sp *Param
		switch {
		case i < len(s.Params):
			sp = s.Params[i]
		case s.VarArgs():
			sp = s.Params[len(s.Params)-1]
		default:
			return false
		}
		if !sp.Matches(pathParam) {
			return false
		}
	}
	return true
}

// CompareSignatures implements the total order of spec.md §4.3: shorter
// Params list first, then fewer conversion-bearing Params, then
// lexicographic by Param comparator.
func CompareSignatures(a, b *Signature, reg *registry.Registry) int {
	if len(a.Params) != len(b.Params) {
		if len(a.Params) < len(b.Params) {
			return -1
		}
		return 1
	}
	ac, bc := a.conversionCount(), b.conversionCount()
	if ac != bc {
		if ac < bc {
			return -1
		}
		return 1
	}
	for i := range a.Params {
		if c := CompareParams(a.Params[i], b.Params[i], reg); c != 0 {
			return c
		}
	}
	return 0
}

// Expand splits unions and injects conversions, producing one or more
// Signatures whose non-variadic Params each carry exactly one accepted
// type (spec.md §4.3).
func (s *Signature) Expand(reg *registry.Registry) []*Signature {
	n := len(s.Params)
	if n == 0 {
		return []*Signature{{Fn: s.Fn}}
	}

	variadic := s.VarArgs()
	fixedCount := n
	if variadic {
		fixedCount--
	}

	branches := make([][]*Param, fixedCount)
	for i := 0; i < fixedCount; i++ {
		branches[i] = expandParam(s.Params[i], reg)
	}

	var variadicParam *Param
	if variadic {
		variadicParam = expandVariadicParam(s.Params[n-1], reg)
	}

	var results []*Signature
	acc := make([]*Param, fixedCount)
	var walk func(i int)
	walk = func(i int) {
		if i == fixedCount {
			params := append([]*Param(nil), acc...)
			if variadicParam != nil {
				params = append(params, variadicParam)
			}
			results = append(results, &Signature{Params: params, Fn: s.Fn})
			return
		}
		for _, p := range branches[i] {
			acc[i] = p
			walk(i + 1)
		}
	}
	walk(0)
	return results
}

// expandParam returns one single-type Param per literal type in p, plus
// one single-type Param (carrying a conversion) per registered conversion
// whose To is among p's types but whose From is not.
func expandParam(p *Param, reg *registry.Registry) []*Param {
	set := p.typeSet()
	out := make([]*Param, 0, len(p.Types))
	for i, t := range p.Types {
		out = append(out, &Param{Types: []string{t}, Conversions: []*registry.ConversionRef{p.Conversions[i]}})
	}
	for _, t := range p.Types {
		for _, ref := range reg.ConversionsTo(t) {
			if _, ok := set[ref.From]; ok {
				continue
			}
			r := ref
			out = append(out, &Param{Types: []string{r.From}, Conversions: []*registry.ConversionRef{&r}})
		}
	}
	return out
}

// expandVariadicParam clones p and extends its Types/Conversions with one
// entry per applicable conversion, without splitting — a variadic Param
// stays a single Param that accepts a union of types (spec.md §4.3).
func expandVariadicParam(p *Param, reg *registry.Registry) *Param {
	set := p.typeSet()
	clone := p.Clone()
	for _, t := range p.Types {
		for _, ref := range reg.ConversionsTo(t) {
			if _, ok := set[ref.From]; ok {
				continue
			}
			r := ref
			clone.Types = append(clone.Types, r.From)
			clone.Conversions = append(clone.Conversions, &r)
		}
	}
	return clone
}
