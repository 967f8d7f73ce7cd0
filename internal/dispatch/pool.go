package dispatch

import (
	"fmt"
	"reflect"
)

// Pool assigns stable, human-readable handles to the runtime values a
// compiled Dispatcher closes over (implementations, predicates,
// conversions) so Dispatcher.Explain can render a trace without dumping
// raw pointers (spec.md §4.6, grounded in internal/prettyprinter's
// handle-table approach to printing cyclic/opaque values).
type Pool struct {
	handles map[string][]uintptr
	names   map[string]map[uintptr]string
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{handles: make(map[string][]uintptr), names: make(map[string]map[uintptr]string)}
}

// Add registers value under category and returns its handle, reusing the
// same handle if an identical (by pointer identity) value was already
// added under that category.
func (p *Pool) Add(category string, value any) string {
	ptr := identity(value)
	if name, ok := p.names[category][ptr]; ptr != 0 && ok {
		return name
	}
	idx := len(p.handles[category])
	p.handles[category] = append(p.handles[category], ptr)
	name := fmt.Sprintf("%s%d", category, idx)
	if ptr != 0 {
		if p.names[category] == nil {
			p.names[category] = make(map[uintptr]string)
		}
		p.names[category][ptr] = name
	}
	return name
}

// identity extracts a stable pointer-sized key for a func or pointer
// value, used only to de-duplicate pool entries. Non-pointer values
// (e.g. a plain string type name) get 0, meaning "always add anew" —
// harmless since such values are never looked up twice with the same key.
func identity(v any) uintptr {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan:
		return rv.Pointer()
	default:
		return 0
	}
}
