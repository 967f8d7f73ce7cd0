package dispatch

import (
	"fmt"
	"reflect"

	"github.com/typedfn/typedfn/internal/registry"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invokeSignature applies sig's per-position conversions to args and
// calls its implementation. It is the single point where a matched
// Signature (found by find, in node.go) turns into a Go call: tree
// traversal only decides WHICH Signature matched, never what to pass it.
func invokeSignature(reg *registry.Registry, fnName string, sig *Signature, args []any) (any, error) {
	fixedCount := len(sig.Params)
	variadic := sig.VarArgs()
	if variadic {
		fixedCount--
	}

	converted := make([]any, 0, len(args))
	for i := 0; i < fixedCount; i++ {
		v, err := convertOne(reg, fnName, sig.Params[i], args[i], i)
		if err != nil {
			return nil, err
		}
		converted = append(converted, v)
	}

	if !variadic {
		return callFn(sig.Fn, converted, sig.Key())
	}

	vp := sig.Params[len(sig.Params)-1]
	for i := fixedCount; i < len(args); i++ {
		v, err := convertOne(reg, fnName, vp, args[i], i)
		if err != nil {
			return nil, err
		}
		converted = append(converted, v)
	}
	return callFn(sig.Fn, converted, sig.Key())
}

// convertOne applies p's matching conversion (if any) to v: direct types
// pass through unchanged, a conversion-bearing type is run through its
// Convert function, and a value matching neither raises an
// unexpected-type mismatch at index i.
func convertOne(reg *registry.Registry, fnName string, p *Param, v any, i int) (any, error) {
	if p.AnyType() {
		return v, nil
	}
	for j, t := range p.Types {
		if p.Conversions[j] != nil {
			continue
		}
		if entry, ok := reg.Find(t); ok && entry.Test(v) {
			return v, nil
		}
	}
	for j, t := range p.Types {
		ref := p.Conversions[j]
		if ref == nil {
			continue
		}
		if entry, ok := reg.Find(t); ok && entry.Test(v) {
			return ref.Convert(v)
		}
	}
	return nil, newUnexpectedTypeError(fnName, i, v, directTypes(p))
}

// callFn is the interpreted equivalent of spec.md §4.3's "tail emission":
// given already-converted arguments, it invokes the implementation via
// reflection (grounded in internal/evaluator/apply.go's HostObject case,
// which already invokes arbitrary Go functions found by
// reflect.ValueOf(fn.Value)).
func callFn(fn any, args []any, fnKey string) (any, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func {
		return nil, fmt.Errorf("dispatch: implementation for %q is not a callable function", fnKey)
	}
	fnType := fnVal.Type()
	in := make([]reflect.Value, len(args))
	for i, v := range args {
		in[i] = argToReflectValue(v, fnType, i)
	}
	out := fnVal.Call(in)
	return unpackResults(out)
}

func argToReflectValue(v any, fnType reflect.Type, i int) reflect.Value {
	var paramType reflect.Type
	switch {
	case fnType.IsVariadic() && i >= fnType.NumIn()-1:
		paramType = fnType.In(fnType.NumIn() - 1).Elem()
	case i < fnType.NumIn():
		paramType = fnType.In(i)
	default:
		return reflect.ValueOf(v)
	}
	if v == nil {
		return reflect.Zero(paramType)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(paramType) {
		return rv
	}
	if rv.Type().ConvertibleTo(paramType) {
		return rv.Convert(paramType)
	}
	return rv
}

// unpackResults adapts an implementation's return values to (any, error):
// zero results -> (nil, nil); one result -> that value, unless it is
// itself an error; a trailing error result is split out and returned
// separately; more than two results come back as a []any.
func unpackResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type().Implements(errorType) {
			if out[0].IsNil() {
				return nil, nil
			}
			return nil, out[0].Interface().(error)
		}
		return out[0].Interface(), nil
	case 2:
		if out[1].Type().Implements(errorType) {
			var err error
			if !out[1].IsNil() {
				err = out[1].Interface().(error)
			}
			return out[0].Interface(), err
		}
		fallthrough
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals, nil
	}
}
