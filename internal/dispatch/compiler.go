package dispatch

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/typedfn/typedfn/internal/dispatchlog"
	"github.com/typedfn/typedfn/internal/registry"
)

// Binding pairs a signature text with its implementation, the compiler's
// unit of input (spec.md §4.4 step a). Order matters only as a tie-break
// source via each type's and conversion's registry position, never as an
// implicit priority between Bindings themselves.
type Binding struct {
	Text string
	Fn   any
}

// Compile runs the full compilation pipeline of spec.md §4.4 over
// bindings against reg's current state, producing a Dispatcher named
// name. reg is snapshotted so later registry mutations don't affect an
// already-compiled Dispatcher.
func Compile(name string, bindings []Binding, reg *registry.Registry) (*Dispatcher, error) {
	snap := reg.Snapshot()

	parsed := make([]*Signature, 0, len(bindings))
	for _, b := range bindings {
		sig, err := ParseSignatureText(b.Text, b.Fn)
		if err != nil {
			return nil, fmt.Errorf("dispatch: signature %q: %w", b.Text, err)
		}
		if sig.Ignore(snap) {
			dispatchlog.Debugf("compile %s: dropping ignored signature %q", name, b.Text)
			continue
		}
		if err := sig.RequireKnownTypes(snap); err != nil {
			return nil, fmt.Errorf("dispatch: signature %q: %w", b.Text, err)
		}
		parsed = append(parsed, sig)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("dispatch: compiling %q: empty signature set", name)
	}

	expanded, err := expandAndDedupe(parsed, snap)
	if err != nil {
		return nil, fmt.Errorf("dispatch: compiling %q: %w", name, err)
	}

	sortSignatures(expanded, snap)
	pruneRedundantVariadicConversions(expanded)

	var anySigs []*Signature
	for _, s := range expanded {
		if s.AnyType() {
			anySigs = append(anySigs, s)
		}
	}

	root, err := buildTree(expanded, anySigs, snap)
	if err != nil {
		return nil, fmt.Errorf("dispatch: compiling %q: %w", name, err)
	}

	maxArity := 0
	bySig := make(map[string]*Signature, len(expanded))
	for _, s := range expanded {
		if len(s.Params) > maxArity {
			maxArity = len(s.Params)
		}
		bySig[s.ConversionFreeKey()] = s
	}

	return &Dispatcher{
		name:      name,
		registry:  snap,
		root:      root,
		maxArity:  maxArity,
		bySigKey:  bySig,
		signature: expanded,
		id:        uuid.New(),
	}, nil
}

// expandAndDedupe runs spec.md §4.4 step b: each parsed Signature is
// expanded into its single-type-per-position forms (direct and
// conversion-bearing), then collisions
// on Key() are resolved — identical implementations collapse silently,
// otherwise the lexicographically smaller Signature wins and an exact
// tie is a hard "defined twice" error.
func expandAndDedupe(parsed []*Signature, reg *registry.Registry) ([]*Signature, error) {
	byKey := make(map[string]*Signature)
	var order []string
	for _, sig := range parsed {
		for _, exp := range sig.Expand(reg) {
			key := exp.Key()
			existing, ok := byKey[key]
			if !ok {
				byKey[key] = exp
				order = append(order, key)
				continue
			}
			if sameImplementation(existing.Fn, exp.Fn) {
				continue
			}
			switch c := CompareSignatures(exp, existing, reg); {
			case c < 0:
				byKey[key] = exp
			case c > 0:
				// existing already wins, keep it.
			default:
				return nil, fmt.Errorf("signature %q is defined twice with different implementations", key)
			}
		}
	}
	out := make([]*Signature, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out, nil
}

func sameImplementation(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() != reflect.Func || bv.Kind() != reflect.Func {
		return false
	}
	return av.Pointer() == bv.Pointer()
}

func sortSignatures(sigs []*Signature, reg *registry.Registry) {
	for i := 1; i < len(sigs); i++ {
		for j := i; j > 0 && CompareSignatures(sigs[j], sigs[j-1], reg) < 0; j-- {
			sigs[j], sigs[j-1] = sigs[j-1], sigs[j]
		}
	}
}

// pruneRedundantVariadicConversions drops a variadic Param's conversion
// entries that are preempted at runtime by a sibling signature's direct
// (conversion-free) type at the same position — without this, the two
// would spuriously "conflict" as overlapping tree entries even though
// the direct match always wins (spec.md §4.4 step d).
func pruneRedundantVariadicConversions(sigs []*Signature) {
	for _, s := range sigs {
		if !s.VarArgs() {
			continue
		}
		idx := len(s.Params) - 1
		vp := s.Params[idx]

		var keepTypes []string
		var keepConvs []*registry.ConversionRef
		for i, t := range vp.Types {
			conv := vp.Conversions[i]
			if conv == nil || !redundantAgainstSiblings(sigs, s, idx, conv.From) {
				keepTypes = append(keepTypes, t)
				keepConvs = append(keepConvs, conv)
			}
		}
		vp.Types = keepTypes
		vp.Conversions = keepConvs
	}
}

func redundantAgainstSiblings(sigs []*Signature, self *Signature, idx int, from string) bool {
	for _, other := range sigs {
		if other == self || idx >= len(other.Params) {
			continue
		}
		op := other.Params[idx]
		if op.VarArgs {
			continue
		}
		for j, t := range op.Types {
			if t == from && op.Conversions[j] == nil {
				return true
			}
		}
	}
	return false
}
