package dispatch

import (
	"strings"
	"testing"

	"github.com/typedfn/typedfn/internal/registry"
)

func compileOrFail(t *testing.T, name string, reg *registry.Registry, bindings ...Binding) *Dispatcher {
	t.Helper()
	d, err := Compile(name, bindings, reg)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", name, err)
	}
	return d
}

func TestDispatchBasicOverload(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "greet", reg,
		Binding{Text: "number", Fn: func(n int) string { return "num" }},
		Binding{Text: "string", Fn: func(s string) string { return "str" }},
	)
	got, err := d.Call(3)
	if err != nil || got != "num" {
		t.Errorf("Call(3) = (%v, %v), want (num, nil)", got, err)
	}
	got, err = d.Call("hi")
	if err != nil || got != "str" {
		t.Errorf("Call(\"hi\") = (%v, %v), want (str, nil)", got, err)
	}
}

func TestDispatchUnionExpands(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "f", reg,
		Binding{Text: "number|string", Fn: func(v any) any { return v }},
	)
	if _, err := d.Call(3); err != nil {
		t.Errorf("Call(3): %v", err)
	}
	if _, err := d.Call("x"); err != nil {
		t.Errorf("Call(\"x\"): %v", err)
	}
	if _, err := d.Call(true); err == nil {
		t.Error("expected Call(true) to fail (bool not in the union)")
	}
}

func TestDispatchVariadicAcceptsZeroAndMany(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "sum", reg,
		Binding{Text: "...number", Fn: func(ns ...int) int {
			total := 0
			for _, n := range ns {
				total += n
			}
			return total
		}},
	)
	got, err := d.Call()
	if err != nil || got != 0 {
		t.Errorf("Call() = (%v, %v), want (0, nil)", got, err)
	}
	got, err = d.Call(1, 2, 3)
	if err != nil || got != 6 {
		t.Errorf("Call(1,2,3) = (%v, %v), want (6, nil)", got, err)
	}
}

func TestDispatchAppliesConversionWhenNoDirectMatch(t *testing.T) {
	reg := registry.New()
	_ = reg.AddConversion(registry.Conversion{
		From: "string", To: "number",
		Convert: func(v any) (any, error) { return len(v.(string)), nil },
	})
	d := compileOrFail(t, "double", reg,
		Binding{Text: "number", Fn: func(n int) int { return n * 2 }},
	)
	got, err := d.Call("abc")
	if err != nil || got != 6 {
		t.Errorf("Call(\"abc\") = (%v, %v), want (6, nil) via len-based conversion", got, err)
	}
}

func TestDispatchAnyFallsThroughSiblingBranch(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "f", reg,
		Binding{Text: "number, number", Fn: func(a, b int) string { return "nn" }},
		Binding{Text: "any, any", Fn: func(a, b any) string { return "any" }},
	)
	got, err := d.Call(1, 2)
	if err != nil || got != "nn" {
		t.Errorf("Call(1,2) = (%v, %v), want (nn, nil)", got, err)
	}
	got, err = d.Call(1, "x")
	if err != nil || got != "any" {
		t.Errorf("Call(1,\"x\") = (%v, %v), want (any, nil) via fall-through", got, err)
	}
}

func TestDispatchTooFewTooManyAndUnexpectedType(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "f", reg,
		Binding{Text: "number, string", Fn: func(a int, b string) string { return "ok" }},
	)
	if _, err := d.Call(1); err == nil {
		t.Error("expected too-few-arguments error")
	}
	if _, err := d.Call(1, "x", 2); err == nil {
		t.Error("expected too-many-arguments error")
	}
	_, err := d.Call(1, 2)
	if err == nil || !strings.Contains(err.Error(), "Unexpected type") {
		t.Errorf("expected an unexpected-type error, got %v", err)
	}
}

func TestDispatcherFindAndSignatures(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "f", reg,
		Binding{Text: "number", Fn: func(n int) int { return n }},
	)
	if _, ok := d.Find("number"); !ok {
		t.Error("expected Find(\"number\") to succeed")
	}
	if sigs := d.Signatures(); len(sigs) != 1 || sigs[0] != "number" {
		t.Errorf("Signatures() = %v, want [number]", sigs)
	}
}

func TestDispatcherMergeUnionsAndRejectsConflict(t *testing.T) {
	reg := registry.New()
	a := compileOrFail(t, "a", reg, Binding{Text: "number", Fn: func(n int) int { return n }})
	b := compileOrFail(t, "b", reg, Binding{Text: "string", Fn: func(s string) string { return s }})
	merged, err := a.Merge("ab", b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if _, err := merged.Call(1); err != nil {
		t.Errorf("merged.Call(1): %v", err)
	}
	if _, err := merged.Call("x"); err != nil {
		t.Errorf("merged.Call(\"x\"): %v", err)
	}

	c := compileOrFail(t, "c", reg, Binding{Text: "number", Fn: func(n int) int { return n + 1 }})
	if _, err := a.Merge("ac", c); err == nil {
		t.Error("expected a conflicting signature with a different implementation to fail")
	}
}

func TestMergeAllUnionsThreeDispatchers(t *testing.T) {
	reg := registry.New()
	a := compileOrFail(t, "a", reg, Binding{Text: "number", Fn: func(n int) string { return "num" }})
	b := compileOrFail(t, "b", reg, Binding{Text: "string", Fn: func(s string) string { return "str" }})
	c := compileOrFail(t, "c", reg, Binding{Text: "boolean", Fn: func(v bool) string { return "bool" }})

	merged, err := MergeAll("abc", a, b, c)
	if err != nil {
		t.Fatalf("MergeAll: %v", err)
	}
	for _, tc := range []struct {
		arg  any
		want string
	}{{1, "num"}, {"x", "str"}, {true, "bool"}} {
		got, err := merged.Call(tc.arg)
		if err != nil || got != tc.want {
			t.Errorf("merged.Call(%v) = (%v, %v), want (%s, nil)", tc.arg, got, err, tc.want)
		}
	}
}

func TestMergeAllRejectsConflictingImplementation(t *testing.T) {
	reg := registry.New()
	a := compileOrFail(t, "a", reg, Binding{Text: "number", Fn: func(n int) int { return n }})
	b := compileOrFail(t, "b", reg, Binding{Text: "number", Fn: func(n int) int { return n + 1 }})
	if _, err := MergeAll("ab", a, b); err == nil {
		t.Error("expected a conflicting signature with a different implementation to fail")
	}
}

func TestDispatcherExplainMentionsEverySignature(t *testing.T) {
	reg := registry.New()
	d := compileOrFail(t, "f", reg,
		Binding{Text: "number", Fn: func(n int) int { return n }},
		Binding{Text: "string", Fn: func(s string) string { return s }},
	)
	explain := d.Explain()
	if !strings.Contains(explain, "number") || !strings.Contains(explain, "string") {
		t.Errorf("Explain() missing a signature: %s", explain)
	}
}

func TestCompileRejectsDuplicateSignatureDifferentImpl(t *testing.T) {
	reg := registry.New()
	_, err := Compile("f", []Binding{
		{Text: "number", Fn: func(n int) int { return n }},
		{Text: "number", Fn: func(n int) int { return n + 1 }},
	}, reg)
	if err == nil {
		t.Error("expected defining the same signature twice with different implementations to fail")
	}
}
