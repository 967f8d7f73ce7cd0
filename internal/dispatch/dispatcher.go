package dispatch

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/typedfn/typedfn/internal/dispatchlog"
	"github.com/typedfn/typedfn/internal/registry"
)

// Dispatcher is a compiled, callable multiple-dispatch function: the
// materialized result of Compile (spec.md §5). It is safe for concurrent
// use — Call only reads its root tree and registry snapshot.
type Dispatcher struct {
	name      string
	registry  *registry.Registry
	root      *Node
	maxArity  int
	bySigKey  map[string]*Signature
	signature []*Signature
	id        uuid.UUID
}

// Name returns the Dispatcher's declared name, used as the Fn prefix on
// ArgumentsError messages.
func (d *Dispatcher) Name() string { return d.name }

// ID returns a stable identifier for this compiled Dispatcher instance,
// generated once at compile time — useful for correlating Explain output
// or cache entries across a process that holds several Dispatchers with
// the same Name.
func (d *Dispatcher) ID() uuid.UUID {
	return d.id
}

// Call dispatches args against d's discrimination tree, converts them
// per the matched Signature, and invokes its implementation.
func (d *Dispatcher) Call(args ...any) (any, error) {
	sig, err := find(d.root, args, 0, d.registry, d.name)
	if err != nil {
		if nm, ok := err.(*noMatch); ok {
			return nil, nm.err
		}
		return nil, err
	}
	return invokeSignature(d.registry, d.name, sig, args)
}

// Find returns the implementation registered for an exact, conversion-free
// signature text (e.g. "number, string"), without performing dispatch.
func (d *Dispatcher) Find(signatureText string) (any, bool) {
	sig, err := ParseSignatureText(signatureText, nil)
	if err != nil {
		return nil, false
	}
	s, ok := d.bySigKey[sig.Key()]
	if !ok {
		return nil, false
	}
	return s.Fn, true
}

// Signatures returns the canonical, conversion-free signature texts
// d.Call can resolve to, in dispatch priority order.
func (d *Dispatcher) Signatures() []string {
	out := make([]string, len(d.signature))
	for i, s := range d.signature {
		out[i] = s.ConversionFreeKey()
	}
	return out
}

// Explain renders d's discrimination tree as an indented trace of guards
// and terminals, for debugging and the typedfngen/typedfn CLI tooling.
func (d *Dispatcher) Explain() string {
	pool := NewPool()
	var b strings.Builder
	fmt.Fprintf(&b, "dispatcher %s (id %s, %d signature(s), max arity %d)\n", d.name, d.id, len(d.signature), d.maxArity)
	explainNode(&b, d.root, pool, 0)
	return b.String()
}

func explainNode(b *strings.Builder, n *Node, pool *Pool, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.Param != nil {
		fmt.Fprintf(b, "%sparam %s\n", indent, n.Param.String())
	}
	if n.Signature != nil {
		handle := pool.Add("impl", n.Signature.Fn)
		fmt.Fprintf(b, "%s-> call %s %s\n", indent, handle, n.Signature.Key())
	}
	if n.FallThrough {
		fmt.Fprintf(b, "%s(fall-through)\n", indent)
	}
	for _, c := range n.Children {
		explainNode(b, c, pool, depth+1)
	}
}

// Merge combines d and other into a new Dispatcher carrying the union of
// both signature sets, recompiled so the merged tree still enforces a
// single total order (spec.md §8 — typedfn's Dispatcher.Merge). d's registry is used
// as the merge's snapshot basis; other's Bindings are reparsed against
// it, so a type or conversion unique to other's original registry must
// already be registered on d's.
func (d *Dispatcher) Merge(name string, other *Dispatcher) (*Dispatcher, error) {
	bindings := make([]Binding, 0, len(d.signature)+len(other.signature))
	for _, s := range d.signature {
		bindings = append(bindings, Binding{Text: s.ConversionFreeKey(), Fn: s.Fn})
	}
	for _, s := range other.signature {
		bindings = append(bindings, Binding{Text: s.ConversionFreeKey(), Fn: s.Fn})
	}
	merged, err := Compile(name, bindings, d.registry)
	if err != nil {
		return nil, fmt.Errorf("dispatch: merging %q and %q: %w", d.name, other.name, err)
	}
	dispatchlog.Debugf("merged %s (%d sigs) + %s (%d sigs) -> %s (%d sigs)",
		d.name, len(d.signature), other.name, len(other.signature), merged.name, len(merged.signature))
	return merged, nil
}

// MergeAll composes a new Dispatcher from the union of every dispatcher's
// signatures (spec.md §4.8's `compose(...dispatchers)` facade entry point):
// a key shared by two dispatchers with identical implementations collapses
// silently, a shared key with differing implementations is a hard error.
// The first dispatcher's registry snapshot is the merge's basis.
func MergeAll(name string, dispatchers ...*Dispatcher) (*Dispatcher, error) {
	if len(dispatchers) == 0 {
		return nil, fmt.Errorf("dispatch: merging %q: no dispatchers given", name)
	}
	base := dispatchers[0]
	var bindings []Binding
	for _, d := range dispatchers {
		for _, s := range d.signature {
			bindings = append(bindings, Binding{Text: s.ConversionFreeKey(), Fn: s.Fn})
		}
	}
	merged, err := Compile(name, bindings, base.registry)
	if err != nil {
		return nil, fmt.Errorf("dispatch: merging %d dispatchers into %q: %w", len(dispatchers), name, err)
	}
	return merged, nil
}
