package dispatch

import (
	"fmt"
	"strings"
)

// MismatchKind classifies the single dispatch-error family the generated
// dispatcher itself can raise (spec.md §4.7, §7).
type MismatchKind int

const (
	// MismatchTooFew means fewer arguments were supplied than the
	// shortest matching signature requires.
	MismatchTooFew MismatchKind = iota
	// MismatchTooMany means more arguments were supplied than any
	// signature accepts.
	MismatchTooMany
	// MismatchUnexpectedType means an argument at Index did not match
	// any accepted type (directly or via conversion).
	MismatchUnexpectedType
)

// ArgumentsError is the structured error the compiled dispatcher raises
// on a failed match (spec.md §4.7, §7). It carries the fields a caller
// needs for programmatic recovery: Fn, Index, Actual, Expected.
type ArgumentsError struct {
	Fn       string
	Index    int
	Kind     MismatchKind
	Actual   any
	Expected []string

	// actualCount backs argc() for the MismatchTooFew case, where Actual
	// holds the offending value (or is unset) rather than a count.
	actualCount int
}

func (e *ArgumentsError) Error() string {
	switch e.Kind {
	case MismatchTooMany:
		return fmt.Sprintf("%sToo many arguments (expected %d, got %d)", e.fnPrefix(), e.Index, e.argc())
	case MismatchTooFew:
		return fmt.Sprintf("%sToo few arguments: index %d expected one of [%s], got %d argument(s)",
			e.fnPrefix(), e.Index, strings.Join(e.Expected, ", "), e.argc())
	default:
		return fmt.Sprintf("%sUnexpected type of argument at index %d: expected one of [%s], got %s",
			e.fnPrefix(), e.Index, strings.Join(e.Expected, ", "), describe(e.Actual))
	}
}

func (e *ArgumentsError) fnPrefix() string {
	if e.Fn == "" {
		return ""
	}
	return fmt.Sprintf("%s: ", e.Fn)
}

// argc recovers the argument count this error was raised against: for
// MismatchTooMany, Actual holds argc directly (spec.md §4.7: "expected =
// index, actual = argc"); otherwise it's encoded by the caller via the
// actualCount field on construction.
func (e *ArgumentsError) argc() int {
	if n, ok := e.Actual.(int); ok && e.Kind == MismatchTooMany {
		return n
	}
	return e.actualCount
}

func describe(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%v (%T)", v, v)
}

func newTooManyError(fn string, index, argc int) *ArgumentsError {
	return &ArgumentsError{Fn: fn, Index: index, Kind: MismatchTooMany, Actual: argc}
}

func newTooFewError(fn string, index, argc int, expected []string) *ArgumentsError {
	return &ArgumentsError{Fn: fn, Index: index, Kind: MismatchTooFew, Expected: expected, actualCount: argc}
}

func newUnexpectedTypeError(fn string, index int, actual any, expected []string) *ArgumentsError {
	return &ArgumentsError{Fn: fn, Index: index, Kind: MismatchUnexpectedType, Actual: actual, Expected: expected}
}
