package dispatch

import "github.com/typedfn/typedfn/internal/registry"

// CompareParams implements the total order of spec.md §4.2. Earlier rules
// win; a tie on rules 1-3 falls through to the next rule. Rule 4 (both
// Params carry conversions) is final, so rule 5 is only reached when
// neither Param has conversions. Returns 0 if no rule decides.
func CompareParams(a, b *Param, reg *registry.Registry) int {
	// Rule 1: any-typed sorts last.
	if a.AnyType() != b.AnyType() {
		if a.AnyType() {
			return 1
		}
		return -1
	}

	// Rule 2: Object sorts second-to-last.
	aObj, bObj := containsObject(a), containsObject(b)
	if aObj != bObj {
		if aObj {
			return 1
		}
		return -1
	}

	// Rule 3: the Param without conversions is smaller.
	aConv, bConv := a.HasConversions(), b.HasConversions()
	if aConv != bConv {
		if aConv {
			return 1
		}
		return -1
	}

	// Rule 4: both have conversions — compare by conversion-list index of
	// each Param's first defined conversion.
	if aConv && bConv {
		ai, bi := firstConversionIndex(a), firstConversionIndex(b)
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
		return 0
	}

	// Rule 5: compare by registry index of types[0]. An unregistered
	// first type sorts after every registered one (SPEC_FULL.md §9.2).
	ai, bi := registryIndex(reg, a.Types[0]), registryIndex(reg, b.Types[0])
	if ai == bi {
		return 0
	}
	if ai < bi {
		return -1
	}
	return 1
}

func containsObject(p *Param) bool {
	for _, t := range p.Types {
		if t == registry.ObjectTypeName {
			return true
		}
	}
	return false
}

func firstConversionIndex(p *Param) int {
	for _, c := range p.Conversions {
		if c != nil {
			return c.Index
		}
	}
	return -1
}

// registryIndex treats an unregistered (and non-"any") name as sorting
// after every registered name.
func registryIndex(reg *registry.Registry, name string) int {
	i := reg.IndexOf(name)
	if i < 0 {
		return len(reg.Entries())
	}
	return i
}
