package dispatch

import (
	"fmt"

	"github.com/typedfn/typedfn/internal/dispatchlog"
	"github.com/typedfn/typedfn/internal/registry"
)

// Node is one level of the discrimination tree: the edge reaching it is a
// Param matched against the argument at its depth (spec.md §3, §4.5).
type Node struct {
	Path        []*Param
	Param       *Param // nil at the root
	Signature   *Signature
	Children    []*Node
	FallThrough bool
}

// buildTree constructs the root Node from the sorted, pruned signature set
// and its any-typed subset (spec.md §4.4 step f).
func buildTree(sigs, anySigs []*Signature, reg *registry.Registry) (*Node, error) {
	return buildNode(nil, sigs, anySigs, reg)
}

func buildNode(path []*Param, sigs, anySigs []*Signature, reg *registry.Registry) (*Node, error) {
	depth := len(path)
	node := &Node{Path: append([]*Param(nil), path...)}
	if depth > 0 {
		node.Param = path[depth-1]
	}

	// A variadic Param consumes every remaining position in one shot at
	// call time (spec.md §4.5); it is always a leaf of the tree.
	if node.Param != nil && node.Param.VarArgs {
		if len(sigs) == 0 {
			return nil, fmt.Errorf("dispatch: internal error: variadic node at depth %d has no signature", depth)
		}
		node.Signature = sigs[0]
		return node, nil
	}

	var terminal *Signature
	rest := make([]*Signature, 0, len(sigs))
	for _, s := range sigs {
		if terminal == nil && len(s.Params) == depth {
			terminal = s
			continue
		}
		rest = append(rest, s)
	}
	node.Signature = terminal

	entries, err := partitionEntries(rest, depth)
	if err != nil {
		return nil, err
	}
	sortEntries(entries, reg)

	matchingAnys := filterStartWith(anySigs, path)
	node.FallThrough = hasUnrepresentedAny(matchingAnys, sigs)

	for _, e := range entries {
		childPath := append(append([]*Param(nil), path...), e.param)
		child, err := buildNode(childPath, e.sigs, matchingAnys, reg)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	dispatchlog.Debugf("node depth=%d terminal=%v children=%d fallThrough=%v", depth, terminal != nil, len(node.Children), node.FallThrough)
	return node, nil
}

// treeEntry groups signatures that share a non-overlapping Param at a
// given depth (spec.md §4.4 step f: "two signatures share an entry iff
// their Params at position d overlap").
type treeEntry struct {
	param *Param
	sigs  []*Signature
}

func partitionEntries(sigs []*Signature, depth int) ([]*treeEntry, error) {
	var entries []*treeEntry
	for _, s := range sigs {
		p := paramAt(s, depth)
		if p == nil {
			return nil, fmt.Errorf("dispatch: signature %q has no parameter at position %d", s.Key(), depth)
		}
		placed := false
		for _, e := range entries {
			if !e.param.Overlapping(p) {
				continue
			}
			if e.param.VarArgs || p.VarArgs {
				return nil, fmt.Errorf("dispatch: conflicting parameters at position %d: %q is both variadic and non-variadic", depth, e.param.String())
			}
			e.sigs = append(e.sigs, s)
			placed = true
			break
		}
		if !placed {
			entries = append(entries, &treeEntry{param: p, sigs: []*Signature{s}})
		}
	}
	return entries, nil
}

func paramAt(s *Signature, depth int) *Param {
	switch {
	case depth < len(s.Params):
		return s.Params[depth]
	case s.VarArgs():
		return s.Params[len(s.Params)-1]
	default:
		return nil
	}
}

func sortEntries(entries []*treeEntry, reg *registry.Registry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && CompareParams(entries[j].param, entries[j-1].param, reg) < 0; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

func filterStartWith(anySigs []*Signature, path []*Param) []*Signature {
	var out []*Signature
	for _, s := range anySigs {
		if s.ParamsStartWith(path) {
			out = append(out, s)
		}
	}
	return out
}

// hasUnrepresentedAny reports whether some signature in matchingAnys is
// not among sigs — i.e. an any-typed signature that lives elsewhere in
// the tree could still match the current path (spec.md §4.4 step f).
func hasUnrepresentedAny(matchingAnys, sigs []*Signature) bool {
	present := make(map[*Signature]struct{}, len(sigs))
	for _, s := range sigs {
		present[s] = struct{}{}
	}
	for _, s := range matchingAnys {
		if _, ok := present[s]; !ok {
			return true
		}
	}
	return false
}

// noMatch is an internal sentinel distinguishing "this subtree found
// nothing, but an ancestor's fall-through sibling might" from a genuine,
// final ArgumentsError. It never escapes Dispatcher.Call.
type noMatch struct{ err *ArgumentsError }

func (n *noMatch) Error() string { return n.err.Error() }

// find walks the tree looking for the Signature that args match,
// returning either a matched Signature, a genuine *ArgumentsError (no
// fall-through was available), or a *noMatch sentinel that the caller
// (an ancestor entry loop) should treat as "try the next sibling".
func find(n *Node, args []any, depth int, reg *registry.Registry, fnName string) (*Signature, error) {
	argc := len(args)

	if n.Signature != nil && argc == depth {
		return n.Signature, nil
	}

	for _, child := range n.Children {
		if child.Param.VarArgs {
			switch {
			case argc == depth:
				return child.Signature, nil
			case argc > depth && testVariadicFirst(reg, child.Param, args[depth]):
				return child.Signature, nil
			}
			continue
		}
		if argc > depth && testParamRuntime(reg, child.Param, args[depth]) {
			sig, err := find(child, args, depth+1, reg, fnName)
			if err == nil {
				return sig, nil
			}
			if _, ok := err.(*noMatch); ok {
				continue
			}
			return nil, err
		}
	}

	mustRaise := !n.FallThrough || (n.Param != nil && n.Param.AnyType())
	expected := directChildTypes(n.Children)
	var argErr *ArgumentsError
	switch {
	case len(n.Children) == 0 && argc > depth:
		argErr = newTooManyError(fnName, depth, argc)
	case argc > depth:
		argErr = newUnexpectedTypeError(fnName, depth, args[depth], expected)
	default:
		argErr = newTooFewError(fnName, depth, argc, expected)
	}
	if mustRaise {
		return nil, argErr
	}
	return nil, &noMatch{err: argErr}
}

// testParamRuntime tests a single-type, non-variadic Param against a
// runtime argument: true if the Param is "any", or the argument passes
// the registered test for the Param's (possibly conversion-source) type.
func testParamRuntime(reg *registry.Registry, p *Param, arg any) bool {
	if p.AnyType() {
		return true
	}
	entry, ok := reg.Find(p.Types[0])
	return ok && entry.Test(arg)
}

// testVariadicFirst tests whether a variadic Param's first trailing
// argument can be accepted at all (spec.md §4.5 "Variadic, concrete"):
// any direct type first, then any conversion source type.
func testVariadicFirst(reg *registry.Registry, p *Param, arg any) bool {
	if p.AnyType() {
		return true
	}
	for i, t := range p.Types {
		if p.Conversions[i] != nil {
			continue
		}
		if entry, ok := reg.Find(t); ok && entry.Test(arg) {
			return true
		}
	}
	for i, t := range p.Types {
		if p.Conversions[i] == nil {
			continue
		}
		if entry, ok := reg.Find(t); ok && entry.Test(arg) {
			return true
		}
	}
	return false
}

// directTypes returns a Param's literal (conversion-free) type names, in
// order, deduplicated.
func directTypes(p *Param) []string {
	var out []string
	seen := make(map[string]struct{})
	for i, t := range p.Types {
		if p.Conversions[i] != nil {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// directChildTypes unions the direct types of a node's children, for the
// "expected" list of a terminal mismatch error (spec.md §4.5).
func directChildTypes(children []*Node) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, c := range children {
		for _, t := range directTypes(c.Param) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
