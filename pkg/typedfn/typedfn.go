// Package typedfn is the public facade: build a registry of types and
// conversions, then compose ordered signature/implementation bindings
// into a callable, multiply-dispatched Dispatcher.
package typedfn

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/typedfn/typedfn/internal/dispatch"
	"github.com/typedfn/typedfn/internal/registry"
)

// Binding pairs a signature text (e.g. "number, ...string") with its
// implementation. Fn must be a Go func value.
type Binding struct {
	Signature string
	Fn        any
}

// Bindings is an explicit, insertion-ordered list of Binding — the Go
// analogue of the ordered "signature text -> implementation" mapping a
// plain map cannot represent without losing iteration order.
type Bindings []Binding

// System owns one Type Registry: the set of named runtime type tests and
// user conversions that every Dispatcher composed from it is checked
// against and snapshotted from.
type System struct {
	reg *registry.Registry
}

// New returns a System seeded with the default types (number, string,
// boolean, Function, Array, Map, null, Object).
func New() *System {
	return &System{reg: registry.New()}
}

// Create returns a brand new, independent System — it shares nothing
// with the receiver's registry. Use it when an application needs two
// unrelated type universes (e.g. one per plugin), mirroring the
// teacher's pattern of handing out a fresh, isolated evaluator per
// embedding rather than a shared global one.
func (s *System) Create() *System {
	return New()
}

// AddType registers a new named runtime type test.
func (s *System) AddType(name string, test func(any) bool) error {
	return s.reg.AddType(registry.Entry{Name: name, Test: test})
}

// AddConversion registers a conversion letting a from-typed argument
// satisfy a to-typed parameter.
func (s *System) AddConversion(from, to string, convert func(any) (any, error)) error {
	return s.reg.AddConversion(registry.Conversion{From: from, To: to, Convert: convert})
}

// Ignore marks a type name so any composed Binding mentioning it is
// silently dropped instead of compiled.
func (s *System) Ignore(typeName string) {
	s.reg.Ignore(typeName)
}

// TypeOf classifies a value against s's registry, returning "unknown" if
// nothing matches.
func (s *System) TypeOf(v any) string {
	return s.reg.TypeOf(v)
}

// Convert runs the single registered conversion (if any) from v's
// runtime type to toType. It does not chain conversions across
// intermediate types — only a direct, one-hop conversion is attempted,
// matching spec.md's conversion model.
func (s *System) Convert(v any, toType string) (any, error) {
	from := s.reg.TypeOf(v)
	for _, c := range s.reg.Conversions() {
		if c.From == from && c.To == toType {
			return c.Convert(v)
		}
	}
	return nil, fmt.Errorf("typedfn: no conversion from %q to %q", from, toType)
}

// Compose compiles bindings into a named Dispatcher against s's current
// registry state. The registry is snapshotted at this point; later
// AddType/AddConversion calls on s do not affect an already-composed
// Dispatcher.
func (s *System) Compose(name string, bindings Bindings) (*Dispatcher, error) {
	raw := make([]dispatch.Binding, len(bindings))
	for i, b := range bindings {
		raw[i] = dispatch.Binding{Text: b.Signature, Fn: b.Fn}
	}
	compiled, err := dispatch.Compile(name, raw, s.reg)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{inner: compiled}, nil
}

// ComposeNamed is Compose with the signature/implementation pairs given
// as a flat map keyed by a caller-chosen, already-ordered slice of keys
// — a convenience for callers assembling bindings from, e.g., a
// reflect-discovered set of functions where insertion order is tracked
// separately (see yamlconfig.go).
func (s *System) ComposeNamed(name string, order []string, impls map[string]any) (*Dispatcher, error) {
	bindings := make(Bindings, 0, len(order))
	for _, sig := range order {
		fn, ok := impls[sig]
		if !ok {
			return nil, fmt.Errorf("typedfn: no implementation registered for signature %q", sig)
		}
		bindings = append(bindings, Binding{Signature: sig, Fn: fn})
	}
	return s.Compose(name, bindings)
}

// Dispatcher is a compiled, callable multiple-dispatch function.
type Dispatcher struct {
	inner *dispatch.Dispatcher
}

// Call dispatches args to the matching implementation, converting
// arguments as the matched signature requires.
func (d *Dispatcher) Call(args ...any) (any, error) {
	return d.inner.Call(args...)
}

// Find returns the implementation bound to an exact signature text
// without performing dispatch.
func (d *Dispatcher) Find(signatureText string) (any, bool) {
	return d.inner.Find(signatureText)
}

// Signatures returns the canonical signature texts this Dispatcher can
// resolve to, in dispatch priority order.
func (d *Dispatcher) Signatures() []string {
	return d.inner.Signatures()
}

// Explain renders the compiled discrimination tree as a human-readable
// trace of guards and terminal calls.
func (d *Dispatcher) Explain() string {
	return d.inner.Explain()
}

// ID returns a stable identifier for this compiled Dispatcher instance.
func (d *Dispatcher) ID() uuid.UUID {
	return d.inner.ID()
}

// Merge composes a new Dispatcher from the union of d's and other's
// signatures (spec.md §4.8's dispatcher-merge operation): identical
// implementations at the same signature collapse silently, a differing
// implementation at the same signature is a hard error.
func (d *Dispatcher) Merge(name string, other *Dispatcher) (*Dispatcher, error) {
	merged, err := d.inner.Merge(name, other.inner)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{inner: merged}, nil
}

// ComposeDispatchers is the `compose(...dispatchers)` facade entry point of
// spec.md §4.8: it merges any number of already-composed Dispatchers into
// one, named name. A signature shared by two of them with identical
// implementations collapses silently; a shared signature with differing
// implementations is a hard error.
func ComposeDispatchers(name string, dispatchers ...*Dispatcher) (*Dispatcher, error) {
	inner := make([]*dispatch.Dispatcher, len(dispatchers))
	for i, d := range dispatchers {
		inner[i] = d.inner
	}
	merged, err := dispatch.MergeAll(name, inner...)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{inner: merged}, nil
}
